package core

import "time"

// Clock is the injectable time source. All TTL math in the tiers flows
// through a Clock so tests can control expiry deterministically.
//
// Implementations must return timezone-aware times (time.Time carries its
// location); SystemClock returns UTC.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
