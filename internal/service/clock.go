package service

import "time"

// Clock supplies the current time. Services take a Clock instead of calling
// time.Now directly so that deadline-relative behavior is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
