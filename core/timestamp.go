package core

import (
	"bytes"
	"time"

	"github.com/pkg/errors"
)

// layout emitted to the backend (matches what browsers produce with Date.toISOString).
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999", // no zone: local time
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp is a time.Time that tolerates the date formats the backend emits.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		var t time.Time
		var err error
		if layout == time.RFC3339 || layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, errors.Errorf("invalid timestamp %q", s)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + ts.UTC().Format(isoLayout) + `"`), nil
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*ts = Timestamp{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.Errorf("invalid timestamp %s", data)
	}
	parsed, err := ParseTimestamp(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// ISO formats ts the way it is sent to the backend, or "" when zero.
func (ts Timestamp) ISO() string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(isoLayout)
}

func (ts Timestamp) String() string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(time.RFC3339)
}
