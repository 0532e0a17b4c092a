package ehr

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
)

const (
	// Layout of every date field in the extracts, e.g. 1947-12-28 02:45:40.547000.
	// Parsing accepts any number of fractional digits after the seconds.
	TimestampLayout = "2006-01-02 15:04:05.000000"

	timestampParseLayout = "2006-01-02 15:04:05"

	DaysPerYear = 365.25
)

// ParseTimestamp reads a date field. Values that don't follow TimestampLayout
// are handed to dateparse before giving up. All times are UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	t, err := time.ParseInLocation(timestampParseLayout, value, time.UTC)
	if err == nil {
		return t, nil
	}

	t, fallback_err := dateparse.ParseIn(value, time.UTC)
	if fallback_err != nil {
		return time.Time{}, errors.Wrapf(err, "Invalid timestamp %q", value)
	}
	return t, nil
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

const secondsPerDay = 24 * 60 * 60

// ElapsedDays counts whole days from `from` to `to`, rounding towards negative
// infinity so that a span of minus half a day counts as -1. Works on unix
// seconds since time.Duration saturates after about 292 years.
func ElapsedDays(from, to time.Time) int {
	secs := to.Unix() - from.Unix()
	if to.Nanosecond() < from.Nanosecond() {
		secs--
	}
	days := secs / secondsPerDay
	if secs%secondsPerDay < 0 {
		days--
	}
	return int(days)
}

// YearsBetween approximates the number of years between two instants as
// whole elapsed days over 365.25. It is not calendar aware.
func YearsBetween(from, to time.Time) float64 {
	return float64(ElapsedDays(from, to)) / DaysPerYear
}
