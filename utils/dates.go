package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar date at UTC midnight.
// For RFC3339 input the date is taken in the offset the caller sent.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", raw)
	}
	return DateOf(t), nil
}

// DateOf drops the time of day, keeping t's calendar date as a UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NightsBetween is the number of nights in [checkIn, checkOut), rounded up.
func NightsBetween(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}
