// Package numerator formats and parses sequential document numbers such as
// PO-0001. Reservation of the next value is the caller's job; this package only
// knows how numbers look.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
)

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "PO")
	Prefix string

	// PadWidth is the minimum number width (default 4)
	PadWidth int
}

// DefaultConfig returns the purchase order numbering used when nothing is configured.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		PadWidth: 4,
	}
}

// Format creates the final number string, e.g. PO-0003.
func (c Config) Format(num int64) string {
	padWidth := c.PadWidth
	if padWidth <= 0 {
		padWidth = 4
	}
	return fmt.Sprintf("%s-%0*d", c.Prefix, padWidth, num)
}

// Parse extracts the numeric part of a number carrying this config's prefix.
// Returns -1 if the value is not one of ours.
func (c Config) Parse(formatted string) int64 {
	rest, ok := strings.CutPrefix(strings.TrimSpace(formatted), c.Prefix+"-")
	if !ok || rest == "" || strings.Trim(rest, "0123456789") != "" {
		return -1
	}
	num, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || num < 0 {
		return -1
	}
	return num
}

// ParseCanonical is Parse restricted to numbers exactly as Format writes them,
// so PO-1 and PO-00001 are rejected where PO-0001 is expected.
func (c Config) ParseCanonical(formatted string) (int64, bool) {
	num := c.Parse(formatted)
	if num <= 0 || c.Format(num) != formatted {
		return -1, false
	}
	return num, true
}

// Highest returns the largest numeric part among existing, or 0 when none parse.
func (c Config) Highest(existing ...string) int64 {
	var highest int64
	for _, s := range existing {
		if n := c.Parse(s); n > highest {
			highest = n
		}
	}
	return highest
}

// Next returns the number following the highest of existing.
func (c Config) Next(existing ...string) string {
	return c.Format(c.Highest(existing...) + 1)
}
