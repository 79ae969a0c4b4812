package numerator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	cfg := DefaultConfig("PO")

	assert.Equal(t, "PO-0001", cfg.Next())
	assert.Equal(t, "PO-0003", cfg.Next("PO-0001", "PO-0002"))
	assert.Equal(t, "PO-0003", cfg.Next("PO-0002", "PO-0001"))
	// gaps are not refilled
	assert.Equal(t, "PO-0011", cfg.Next("PO-0001", "PO-0010"))
	// foreign numbers are ignored
	assert.Equal(t, "PO-0002", cfg.Next("PO-0001", "INV-0099", "garbage"))
}

func TestFormat_Overflow(t *testing.T) {
	cfg := DefaultConfig("PO")

	assert.Equal(t, "PO-9999", cfg.Format(9999))
	assert.Equal(t, "PO-10000", cfg.Format(10000))
	assert.Equal(t, "PO-10001", cfg.Next("PO-10000", "PO-9999"))
}

func TestParse(t *testing.T) {
	cfg := Config{Prefix: "PO", PadWidth: 6}

	tests := []struct {
		in   string
		want int64
	}{
		{"PO-000042", 42},
		{" PO-7 ", 7},
		{"PO-", -1},
		{"PO-12a", -1},
		{"PO--3", -1},
		{"PO-+7", -1},
		{"RO-0001", -1},
		{"", -1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Parse(tt.in))
		})
	}
}

func TestParseCanonical(t *testing.T) {
	cfg := DefaultConfig("PO")

	n, ok := cfg.ParseCanonical("PO-0007")
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	n, ok = cfg.ParseCanonical("PO-12345")
	assert.True(t, ok)
	assert.Equal(t, int64(12345), n)

	for _, in := range []string{"PO-7", "PO-00007", "PO-+007", " PO-0007", "PO-0000", "PO-012345"} {
		_, ok := cfg.ParseCanonical(in)
		assert.False(t, ok, in)
	}
}
