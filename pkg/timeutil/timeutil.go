// Package timeutil is the single home for transaction timestamp handling.
// Transactions store epoch milliseconds from creation; anything read back
// from durable storage or CSV goes through ParseLenient so a malformed
// value can never crash a report.
package timeutil

import (
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"
)

// EpochMillis returns t as epoch milliseconds.
func EpochMillis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// FromMillis converts epoch milliseconds back to a time in loc.
func FromMillis(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond)).In(loc)
}

// SameCalendarDay reports whether a and b fall on the same calendar day
// in loc. Comparison is by date components, never a rolling 24h window.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// ParseLenient parses a stored timestamp string of unknown format. On
// failure it logs and returns the current moment as a best-effort default
// so "is this today" style reports keep working.
func ParseLenient(value string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t, err := dateparse.ParseIn(value, loc)
	if err != nil {
		zap.L().Warn("unparseable stored timestamp, using current time",
			zap.String("value", value), zap.Error(err))
		return time.Now().In(loc)
	}
	return t
}

// Stamp formats t the way exports and the API present times.
func Stamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02 15:04:05")
}

// DayTag returns the yyyy-mm-dd tag used in export filenames.
func DayTag(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02")
}
