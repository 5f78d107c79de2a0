package calendar

import (
	"strings"
	"time"
)

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 timestamps, local datetimes and date-only values.
// Values without an offset are read in loc.
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if loc == nil {
		loc = time.Local
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), true
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
