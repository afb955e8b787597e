package process

import "fmt"

// Signal is the kind of termination request delivered to a process.
type Signal int

const (
	// Graceful asks the process to exit and may be handled or ignored.
	Graceful Signal = iota
	// Forceful cannot be caught or ignored.
	Forceful
)

func (s Signal) String() string {
	switch s {
	case Graceful:
		return "graceful"
	case Forceful:
		return "forceful"
	default:
		return "unknown"
	}
}

// Signaler delivers termination signals to single pids.
type Signaler interface {
	Signal(pid int, sig Signal) error
}

// SignalDeliveryError reports that one pid could not be signaled, typically
// because it exited after the tree was enumerated.
type SignalDeliveryError struct {
	Pid    int
	Signal Signal
	Err    error
}

func (e *SignalDeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver %s signal to pid %d: %v", e.Signal, e.Pid, e.Err)
}

func (e *SignalDeliveryError) Unwrap() error { return e.Err }

// OSSignaler delivers real signals.
type OSSignaler struct{}

// Signal implements Signaler.
func (OSSignaler) Signal(pid int, sig Signal) error {
	if err := sendSignal(pid, sig); err != nil {
		return &SignalDeliveryError{Pid: pid, Signal: sig, Err: err}
	}
	return nil
}
