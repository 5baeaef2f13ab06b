package clock

import "time"

// Clock abstracts time.Now so deadline math is testable.
type Clock interface {
	Now() time.Time
}

// New returns a Clock backed by the system time.
func New() Clock {
	return &DefaultClock{}
}

// DefaultClock implements the Clock interface using the system clock
type DefaultClock struct{}

// Now returns the current time
func (c *DefaultClock) Now() time.Time {
	return time.Now()
}

// FixedClock returns a preset time, for tests.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time
func (c *FixedClock) Now() time.Time {
	return c.T
}
