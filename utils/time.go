// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowAdd returns the current UTC time plus the given duration
func UTCNowAdd(d time.Duration) time.Time {
	return UTCNow().Add(d)
}

// IsExpired checks if the given time is in the past (expired)
func IsExpired(t time.Time) bool {
	return UTCNow().After(t)
}

// IsExpiredPtr checks if the given time pointer is in the past (expired)
func IsExpiredPtr(t *time.Time) bool {
	if t == nil {
		return false
	}
	return IsExpired(*t)
}

// TimeToUTC converts a time to UTC if it's not already
func TimeToUTC(t time.Time) time.Time {
	return t.UTC()
}

// TruncateToDate drops the clock portion of t in the given location
func TruncateToDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SameDate reports whether a and b fall on the same calendar date in loc
func SameDate(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
