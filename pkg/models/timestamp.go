package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FlexTime is a point in time that tolerates the three encodings the backend
// is known to emit: an RFC 3339 string, an epoch number (seconds or
// milliseconds), or a JSON null. Unparseable input falls back to the time of
// decoding so the rest of the notification is not lost.
type FlexTime struct {
	t time.Time
}

// Now returns a FlexTime for the current instant.
func Now() FlexTime {
	return FlexTime{t: time.Now()}
}

// At wraps an existing time.Time.
func At(t time.Time) FlexTime {
	return FlexTime{t: t}
}

// Time returns the canonical in-memory time value.
func (f FlexTime) Time() time.Time {
	return f.t
}

// IsZero reports whether the value is unset.
func (f FlexTime) IsZero() bool {
	return f.t.IsZero()
}

// Before reports whether f is before other.
func (f FlexTime) Before(other FlexTime) bool {
	return f.t.Before(other.t)
}

// MarshalJSON encodes the time as RFC 3339.
func (f FlexTime) MarshalJSON() ([]byte, error) {
	if f.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.t.Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts RFC 3339 strings, epoch seconds or milliseconds, and
// null. Anything else yields the current time rather than an error.
func (f *FlexTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		f.t = time.Time{}
		return nil
	}

	// Epoch number, seconds or milliseconds
	if num, err := strconv.ParseFloat(s, 64); err == nil {
		f.t = fromEpoch(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		f.t = time.Now()
		return nil
	}

	f.t = parseTimeString(str)
	return nil
}

// fromEpoch interprets values above 1e12 as milliseconds. The cutover is safe
// until the year 33658 in seconds and was already past for millis in 2001.
func fromEpoch(num float64) time.Time {
	if num > 1e12 {
		return time.UnixMilli(int64(num))
	}
	return time.Unix(int64(num), 0)
}

func parseTimeString(s string) time.Time {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	// Epoch encoded as a string
	if num, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(num)
	}
	return time.Now()
}
