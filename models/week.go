package models

import "time"

// MondayOf normalizes a date to the Monday of its week, truncating any
// time-of-day component. Idempotent: MondayOf(MondayOf(d)) == MondayOf(d).
func MondayOf(d time.Time) time.Time {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	// time.Weekday puts Sunday at 0; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
