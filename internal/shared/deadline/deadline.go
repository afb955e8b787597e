// Package deadline sizes blocking waits against an optional deadline.
package deadline

import "time"

// Remaining returns the time left until deadline, clamped at zero. A nil
// deadline yields nil, meaning the caller may block indefinitely.
func Remaining(deadline *time.Time, now time.Time) *time.Duration {
	if deadline == nil {
		return nil
	}
	d := deadline.Sub(now)
	if d < 0 {
		d = 0
	}
	return &d
}

// Timer arms a timer for an optional timeout. A nil timeout returns a nil
// channel, which blocks forever in a select. The returned stop function must
// be called once the wait is over.
func Timer(timeout *time.Duration) (<-chan time.Time, func() bool) {
	if timeout == nil {
		return nil, func() bool { return false }
	}
	t := time.NewTimer(*timeout)
	return t.C, t.Stop
}
