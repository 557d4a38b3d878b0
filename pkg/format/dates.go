package format

import (
	"math"
	"strings"
	"time"
)

// Placeholder is displayed in place of a missing or unreadable date.
const Placeholder = "—"

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z0700",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		time.DateOnly,
		"Jan 2, 2006",
	}
)

// Formatter renders dates in a fixed display location.
type Formatter struct {
	loc *time.Location
}

// NewFormatter builds a formatter that renders dates in loc. A nil location
// selects India Standard Time.
func NewFormatter(loc *time.Location) Formatter {
	if loc == nil {
		loc = IndiaLocation()
	}
	return Formatter{loc: loc}
}

// IndiaLocation returns Asia/Kolkata, or a fixed +05:30 zone when the tz
// database is unavailable.
func IndiaLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*60*60+30*60)
}

// Location reports the display location.
func (f Formatter) Location() *time.Location {
	if f.loc == nil {
		return IndiaLocation()
	}
	return f.loc
}

// Date renders v as DD/MM/YYYY.
func (f Formatter) Date(v any) string {
	t, ok := f.Parse(v)
	if !ok {
		return Placeholder
	}
	return t.Format(dateLayout)
}

// DateTime renders v as DD/MM/YYYY HH:MM using a 24-hour clock.
func (f Formatter) DateTime(v any) string {
	t, ok := f.Parse(v)
	if !ok {
		return Placeholder
	}
	return t.Format(dateTimeLayout)
}

// Parse converts a time.Time, date string or Unix millisecond timestamp into
// the display location. Strings without an offset are read as wall-clock time
// in that location. A zero timestamp counts as missing.
func (f Formatter) Parse(v any) (time.Time, bool) {
	loc := f.Location()
	if ms, ok := unixMillis(v); ok {
		if ms == 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).In(loc), true
	}
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return val.In(loc), true
	case *time.Time:
		if val == nil || val.IsZero() {
			return time.Time{}, false
		}
		return val.In(loc), true
	case string:
		raw := strings.TrimSpace(val)
		if raw == "" {
			return time.Time{}, false
		}
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.In(loc), true
			}
		}
		for _, layout := range localLayouts {
			if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// maxMillis bounds timestamps to the ±8.64e15 ms range a browser Date accepts.
const maxMillis = 8.64e15

func unixMillis(v any) (int64, bool) {
	var f float64
	switch val := v.(type) {
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint64:
		f = float64(val)
	case float32:
		f = float64(val)
	case float64:
		f = val
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.Abs(f) > maxMillis {
		return 0, false
	}
	return int64(f), true
}

var defaultFormatter = NewFormatter(nil)

// FormatDateIndian renders v as DD/MM/YYYY in India Standard Time.
func FormatDateIndian(v any) string {
	return defaultFormatter.Date(v)
}

// FormatDateTimeIndian renders v as DD/MM/YYYY HH:MM in India Standard Time.
func FormatDateTimeIndian(v any) string {
	return defaultFormatter.DateTime(v)
}
