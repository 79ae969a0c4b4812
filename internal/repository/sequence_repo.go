package repository

import (
	"context"
	"errors"
	"time"

	"go-procurement-ws/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository hands out monotonically increasing numbers per document kind.
type SequenceRepository interface {
	// Next locks the sequence row, advances it past max(current, floor) and returns
	// the new value. It must run inside a transaction.
	Next(ctx context.Context, name string, floor int64) (int64, error)
	// Advance locks the sequence row and moves it up to value if it is behind.
	// It must run inside a transaction.
	Advance(ctx context.Context, name string, value int64) error
	// Current returns the last value handed out, 0 if none.
	Current(ctx context.Context, name string) (int64, error)
}

type sequenceRepo struct {
	db *gorm.DB
}

func NewSequenceRepo(db *gorm.DB) SequenceRepository {
	return &sequenceRepo{db}
}

// lock creates the row if absent and selects it FOR UPDATE.
func (r *sequenceRepo) lock(db *gorm.DB, name string) (*model.DocumentSequence, error) {
	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.DocumentSequence{Name: name}).Error
	if err != nil {
		return nil, err
	}

	var seq model.DocumentSequence
	err = db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "name = ?", name).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &seq, nil
}

func (r *sequenceRepo) store(db *gorm.DB, name string, value int64) error {
	return db.Model(&model.DocumentSequence{}).
		Where("name = ?", name).
		Updates(map[string]interface{}{
			"last_value": value,
			"updated_at": time.Now(),
		}).Error
}

func (r *sequenceRepo) Next(ctx context.Context, name string, floor int64) (int64, error) {
	db := conn(ctx, r.db)
	seq, err := r.lock(db, name)
	if err != nil {
		return 0, err
	}

	next := max(seq.LastValue, floor) + 1
	if err := r.store(db, name, next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *sequenceRepo) Advance(ctx context.Context, name string, value int64) error {
	db := conn(ctx, r.db)
	seq, err := r.lock(db, name)
	if err != nil {
		return err
	}
	if seq.LastValue >= value {
		return nil
	}
	return r.store(db, name, value)
}

func (r *sequenceRepo) Current(ctx context.Context, name string) (int64, error) {
	var seq model.DocumentSequence
	err := conn(ctx, r.db).First(&seq, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}
