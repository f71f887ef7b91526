package timehelper

import "time"

// HorizonYears is how far ahead an event may be scheduled.
const HorizonYears = 5

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// Horizon returns the latest acceptable event time for the given now.
func Horizon(now time.Time) time.Time {
	return now.AddDate(HorizonYears, 0, 0)
}

// CalendarDateTime formats a Unix timestamp as RFC3339 in loc, the shape the
// Google Calendar API expects for EventDateTime.DateTime.
func CalendarDateTime(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format(time.RFC3339)
}
