package types

import "time"

// Clock supplies the current time to the ledger engines. Every mutation
// captures one timestamp from the Clock and uses it for all state it
// touches, so a single call never observes two different "now" values.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock backed by time.Now, in UTC.
type SystemClock struct{}

// Now returns the current wall-clock time in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapts a function to the Clock interface. Tests use this to
// drive engines with a controlled timeline.
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time { return f() }
