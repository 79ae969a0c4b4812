package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translateError(fmt.Errorf("query: %w", gorm.ErrRecordNotFound)), ErrNotFound)

	dup := translateError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_suppliers_tax_id"})
	assert.ErrorIs(t, dup, ErrDuplicate)
	assert.Contains(t, dup.Error(), "idx_suppliers_tax_id")
	assert.True(t, IsConstraintViolation(dup))

	fk := translateError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}))
	assert.ErrorIs(t, fk, ErrForeignKey)
	assert.True(t, IsConstraintViolation(fk))

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
	assert.False(t, IsConstraintViolation(other))
	assert.Equal(t, "42P01", translateError(&pgconn.PgError{Code: "42P01"}).(*pgconn.PgError).Code)
}
