// Package dispatch turns remote-control codes into synthetic inputs.
//
// The dispatcher is a pure function of (state, code, now) apart from the
// mutation of the State it is handed. It performs no I/O: volume changes are
// reported in the Result and inputs are returned for the caller to deliver.
//
// Multi-tap text entry types the current candidate and selects it with
// Shift+Left, so pressing the same button again overwrites it with the next
// candidate. When no press arrives before the release deadline the caller
// injects remote.Release, which collapses the selection (Right).
package dispatch

import (
	"slices"
	"strconv"
	"time"

	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/input"
	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/remote"
)

// DefaultReleaseDelay is how long a multi-tap candidate stays selected.
const DefaultReleaseDelay = time.Second

// MaxMouseStep caps the pointer acceleration applied to held buttons.
const MaxMouseStep = 10

// Volume is a request for the mixer.
type Volume int

const (
	VolumeNone Volume = iota
	VolumeUp
	VolumeDown
	VolumeMute
)

// State is the per-session multi-tap state. The zero value is ready to use.
type State struct {
	releaseDeadline *time.Time
	repeatKeys      []string
	repeatIndex     int
}

// ReleaseDeadline returns when the pending candidate should be committed, or
// nil when nothing is pending.
func (s *State) ReleaseDeadline() *time.Time {
	return s.releaseDeadline
}

// ReleaseDue reports whether a pending release has reached its deadline.
func (s *State) ReleaseDue(now time.Time) bool {
	return s.releaseDeadline != nil && !now.Before(*s.releaseDeadline)
}

// Result is the outcome of dispatching one code.
type Result struct {
	// Inputs are delivered in order; nil when the code produces none.
	Inputs []input.Input
	// Volume is a mixer request, VolumeNone otherwise.
	Volume Volume
	// Exiting is set by EXIT.
	Exiting bool
}

// Dispatcher maps codes to inputs.
type Dispatcher struct {
	// ReleaseDelay defaults to DefaultReleaseDelay.
	ReleaseDelay time.Duration
	// CloseKeys are typed by EXIT before the session ends. Empty sends
	// nothing and leaves closing the browser to the shutdown signals.
	CloseKeys []string
}

// New creates a dispatcher with the given release delay; zero selects the
// default. EXIT closes the window with input.CloseWindow.
func New(releaseDelay time.Duration) *Dispatcher {
	if releaseDelay <= 0 {
		releaseDelay = DefaultReleaseDelay
	}
	return &Dispatcher{
		ReleaseDelay: releaseDelay,
		CloseKeys:    slices.Clone(input.CloseWindow.Keys),
	}
}

// Dispatch applies code to state at time now.
func (d *Dispatcher) Dispatch(state *State, code remote.Code, now time.Time) (Result, error) {
	switch code.Command {
	case remote.CommandVolumeUp:
		return Result{Volume: VolumeUp}, nil
	case remote.CommandVolumeDown:
		return Result{Volume: VolumeDown}, nil
	case remote.CommandMute:
		return Result{Volume: VolumeMute}, nil
	case remote.CommandMultitap:
		return d.multitap(state, code, now)
	case remote.CommandKey:
		inputs := state.release(nil)
		if len(code.Args) > 0 {
			inputs = append(inputs, input.Keys{Keys: slices.Clone(code.Args), ClearModifiers: true})
		}
		return Result{Inputs: inputs}, nil
	case remote.CommandClick:
		return Result{Inputs: state.release(nil, input.LeftClick)}, nil
	case remote.CommandMouse:
		move, err := mouse(code)
		if err != nil {
			return Result{}, err
		}
		return Result{Inputs: []input.Input{move}}, nil
	case remote.CommandExit:
		if len(d.CloseKeys) == 0 {
			return Result{Exiting: true}, nil
		}
		return Result{Inputs: []input.Input{input.Keys{Keys: slices.Clone(d.CloseKeys)}}, Exiting: true}, nil
	case remote.CommandRelease:
		return Result{Inputs: state.release(nil)}, nil
	default:
		return Result{}, &UnrecognizedCommandError{Name: code.Name}
	}
}

func (d *Dispatcher) multitap(state *State, code remote.Code, now time.Time) (Result, error) {
	keys := code.Args
	if len(keys) == 0 {
		return Result{}, &ArgumentError{Command: code.Name, Args: keys, Reason: "expected at least one key"}
	}

	var inputs []input.Input
	// A group whose deadline has passed is over even if RELEASE has not
	// been dispatched yet.
	if state.releaseDeadline != nil && !state.ReleaseDue(now) && slices.Equal(state.repeatKeys, keys) {
		state.repeatIndex = (state.repeatIndex + 1) % len(keys)
	} else {
		inputs = state.release(nil)
		state.repeatKeys = slices.Clone(keys)
		state.repeatIndex = 0
	}

	deadline := now.Add(d.ReleaseDelay)
	state.releaseDeadline = &deadline

	current := keys[state.repeatIndex%len(keys)]
	inputs = append(inputs, input.Keys{
		Keys:           []string{current, input.SelectForOverride},
		ClearModifiers: true,
	})
	return Result{Inputs: inputs}, nil
}

// release clears a pending candidate, prepending a deselect when one was
// pending, then appends extra.
func (s *State) release(inputs []input.Input, extra ...input.Input) []input.Input {
	if s.releaseDeadline != nil {
		s.releaseDeadline = nil
		inputs = append(inputs, input.Deselect)
	}
	return append(inputs, extra...)
}

// MouseStep returns the acceleration factor for a held button. The pointer
// moves by the raw step plus the raw step times this factor, so a tap moves
// by the raw step alone.
func MouseStep(repeat int) int {
	step := min(repeat, MaxMouseStep)
	return step * step
}

func mouse(code remote.Code) (input.Move, error) {
	if len(code.Args) != 2 {
		return input.Move{}, &ArgumentError{Command: code.Name, Args: code.Args, Reason: "expected horizontal and vertical steps"}
	}
	dx, err := strconv.Atoi(code.Args[0])
	if err != nil {
		return input.Move{}, &ArgumentError{Command: code.Name, Args: code.Args, Reason: err.Error()}
	}
	dy, err := strconv.Atoi(code.Args[1])
	if err != nil {
		return input.Move{}, &ArgumentError{Command: code.Name, Args: code.Args, Reason: err.Error()}
	}
	step := MouseStep(code.Repeat)
	return input.Move{DX: dx + dx*step, DY: dy + dy*step}, nil
}
