package extraction

import (
	"strings"
	"time"
)

// manifestDateLayout is the source document's planned-delivery-date format.
const manifestDateLayout = "02/01/2006"

// ParseManifestDate parses a DD/MM/YYYY date string. Unparsable input
// returns nil rather than an error: a bad date never fails the write.
func ParseManifestDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(manifestDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// NormalizeClock normalizes an HH:MM clock value to include a seconds
// component. HH:MM:SS input passes through; empty or unparsable input
// returns nil.
func NormalizeClock(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if t, err := time.Parse("15:04", s); err == nil {
		v := t.Format("15:04:05")
		return &v
	}
	if t, err := time.Parse("15:04:05", s); err == nil {
		v := t.Format("15:04:05")
		return &v
	}
	return nil
}
