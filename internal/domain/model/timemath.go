package model

import (
	"math"
	"time"
)

// Day math used across enrichment and reconciliation. All functions take an
// explicit notion of "now" so callers can inject a clock in tests.

// RemainingDays returns the whole days left until end, rounded up and floored
// at zero. A subscription expiring later today still reports one day left.
func RemainingDays(now, end time.Time) int {
	d := end.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// DaysSince returns the whole days elapsed since start, rounded down and
// floored at zero.
func DaysSince(now, start time.Time) int {
	d := now.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// IsExpired reports whether end lies strictly in the past.
func IsExpired(now, end time.Time) bool {
	return now.After(end)
}
