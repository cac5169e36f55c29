package store

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp wraps time.Time to accept both RFC3339 and the record store's
// space-separated datetime format when decoding.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999Z07:00",
}

// UnmarshalJSON decodes a store datetime. Empty strings decode to the zero time.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("store: unrecognized datetime %q", s)
}

// MarshalJSON encodes the timestamp as RFC3339 UTC.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Time.UTC().Format(time.RFC3339) + `"`), nil
}
