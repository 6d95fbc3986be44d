package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// localLayout is the zone-less form the backend uses for LocalDateTime.
const localLayout = "2006-01-02T15:04:05"

// zonelessLayouts are tried, in order, after RFC 3339 fails. Values parsed
// with them are interpreted in the local time zone.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	localLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a time.Time that tolerates the backend's zone-less dates.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// ParseTimestamp parses RFC 3339 or one of the zone-less layouts.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range zonelessLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Valid reports whether t is non-nil and set. Safe on a nil receiver.
func (t *Timestamp) Valid() bool {
	return t != nil && !t.IsZero()
}

// UnmarshalJSON accepts a JSON string in any supported layout. null and
// the empty string decode to the zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding timestamp: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON writes the zone-less local form the backend expects, or
// null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Local().Format(localLayout))
}

// MarshalYAML renders the timestamp as RFC 3339 for exports.
func (t Timestamp) MarshalYAML() (interface{}, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Format(time.RFC3339), nil
}
