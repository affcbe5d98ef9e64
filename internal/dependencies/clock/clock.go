package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock.
// Activity is stored as whole seconds, so readings are truncated to match.
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time truncated to the second
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
