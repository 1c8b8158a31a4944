package journal

import (
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Event is a single journal line. Journal events are open-ended: beyond the
// "event" discriminant and "timestamp" every field is type-specific and
// optional, so fields are extracted lazily via gjson instead of per-event
// structs.
type Event struct {
	raw string
}

// ParseLine parses one journal line into an Event. It returns false for
// anything that is not a JSON object; callers skip such lines and move on.
func ParseLine(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" || !gjson.Valid(line) {
		return Event{}, false
	}
	if !gjson.Parse(line).IsObject() {
		return Event{}, false
	}
	return Event{raw: line}, true
}

// Type returns the event discriminant, or "Unknown" when absent.
func (e Event) Type() string {
	if t := gjson.Get(e.raw, "event"); t.Exists() && t.Str != "" {
		return t.Str
	}
	return "Unknown"
}

// Timestamp returns the event's own timestamp string with any trailing UTC
// marker stripped, or "Unknown Timestamp" when absent.
func (e Event) Timestamp() string {
	ts := gjson.Get(e.raw, "timestamp").Str
	if ts == "" {
		return "Unknown Timestamp"
	}
	return strings.TrimSuffix(ts, "Z")
}

// Date returns the calendar date (YYYY-MM-DD) the event belongs to, derived
// from its own timestamp. Events without a parseable timestamp return false
// and are excluded from daily bucketing.
func (e Event) Date() (string, bool) {
	ts := gjson.Get(e.raw, "timestamp").Str
	if ts == "" {
		return "", false
	}
	ts = strings.TrimSuffix(ts, "Z")
	t, err := time.Parse("2006-01-02T15:04:05", ts)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// Str returns a string field, or "Unknown" when missing or empty.
func (e Event) Str(field string) string {
	if v := gjson.Get(e.raw, field); v.Exists() && v.Str != "" {
		return v.Str
	}
	return "Unknown"
}

// Int returns an integer field, or 0 when missing.
func (e Event) Int(field string) int64 {
	return gjson.Get(e.raw, field).Int()
}

// Num returns a numeric field rendered compactly (no trailing zeros), or
// "Unknown" when the field is missing.
func (e Event) Num(field string) string {
	v := gjson.Get(e.raw, field)
	if !v.Exists() || v.Type != gjson.Number {
		return "Unknown"
	}
	return strconv.FormatFloat(v.Num, 'f', -1, 64)
}

// Count returns the number of elements of an array field.
func (e Event) Count(field string) int {
	return int(gjson.Get(e.raw, field+".#").Int())
}

// Raw returns the original JSON line.
func (e Event) Raw() string {
	return e.raw
}

// Commander returns the commander name carried by login-style events, if any.
func (e Event) Commander() (string, bool) {
	if v := gjson.Get(e.raw, "Commander"); v.Exists() && v.Str != "" {
		return v.Str, true
	}
	return "", false
}
