package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PO_NUMBER_PREFIX", "")
	t.Setenv("PO_NUMBER_PAD_WIDTH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "PO", cfg.PONumberPrefix)
	assert.Equal(t, 4, cfg.PONumberPadWidth)
	assert.Contains(t, cfg.DatabaseDSN, "host=db")
	assert.True(t, cfg.UsesDefaultSecret())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/x")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("PO_NUMBER_PREFIX", "RPO")
	t.Setenv("PO_NUMBER_PAD_WIDTH", "6")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@localhost/x", cfg.DatabaseDSN)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "RPO", cfg.PONumberPrefix)
	assert.Equal(t, 6, cfg.PONumberPadWidth)
	assert.True(t, cfg.LogDevelopment)
	assert.False(t, cfg.UsesDefaultSecret())
}

func TestLoad_RejectsBadNumbering(t *testing.T) {
	t.Setenv("PO_NUMBER_PREFIX", "P-O")
	_, err := Load()
	assert.Error(t, err)

	for _, prefix := range []string{"P_O", "P%", "P O", "PO."} {
		t.Setenv("PO_NUMBER_PREFIX", prefix)
		_, err = Load()
		assert.Error(t, err, prefix)
	}

	t.Setenv("PO_NUMBER_PREFIX", "PO")
	t.Setenv("PO_NUMBER_PAD_WIDTH", "0")
	_, err = Load()
	assert.Error(t, err)
}
