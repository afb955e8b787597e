package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/dispatch"
	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/input"
	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/remote"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RemoteBrowser/internal/providers/mixer"
	"github.com/GriffinCanCode/RemoteBrowser/internal/providers/process"
	"github.com/GriffinCanCode/RemoteBrowser/internal/providers/window"
	"github.com/GriffinCanCode/RemoteBrowser/internal/shared/deadline"
)

// Outcome is why a session ended.
type Outcome int

const (
	// OutcomeFailed means the browser could not start or the loop hit a
	// fatal error.
	OutcomeFailed Outcome = iota
	// OutcomeExitCommand means an EXIT code was dispatched.
	OutcomeExitCommand
	// OutcomeBrowserExited means the browser quit on its own.
	OutcomeBrowserExited
	// OutcomeAborted means the session context was cancelled.
	OutcomeAborted
	// OutcomeParentGone means the parent liveness channel closed.
	OutcomeParentGone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExitCommand:
		return "exit_command"
	case OutcomeBrowserExited:
		return "browser_exited"
	case OutcomeAborted:
		return "aborted"
	case OutcomeParentGone:
		return "parent_gone"
	default:
		return "failed"
	}
}

// Launcher starts and tears down the browser. *process.Supervisor
// implements it.
type Launcher interface {
	Start(argv []string) (process.Tracked, error)
	Shutdown(p process.Tracked) process.Report
}

// Raiser starts the window raise task. *window.Raiser implements it.
type Raiser interface {
	Raise(pid int) *window.Task
}

// Metrics receives session events. *monitoring.Metrics implements it.
type Metrics interface {
	SessionStarted()
	SessionEnded(outcome string, duration time.Duration)
	CodeDispatched(command string)
	ForcedKill()
}

type nopMetrics struct{}

func (nopMetrics) SessionStarted()                    {}
func (nopMetrics) SessionEnded(string, time.Duration) {}
func (nopMetrics) CodeDispatched(string)              {}
func (nopMetrics) ForcedKill()                        {}

// Options wires a Runner. Launcher and Raiser are required; the rest fall
// back to inert implementations.
type Options struct {
	Launcher   Launcher
	Raiser     Raiser
	Sender     input.Sender
	Mixer      mixer.Mixer
	Source     remote.Source
	Dispatcher *dispatch.Dispatcher
	Metrics    Metrics
	Logger     *logging.Logger
	// Now replaces the clock in tests.
	Now func() time.Time
}

// Runner launches sessions. It holds no per-session state, but the remote
// source it reads from can only serve one session at a time.
type Runner struct {
	launcher   Launcher
	raiser     Raiser
	sender     input.Sender
	mixer      mixer.Mixer
	source     remote.Source
	dispatcher *dispatch.Dispatcher
	metrics    Metrics
	logger     *logging.Logger
	now        func() time.Time
}

// NewRunner creates a runner from opts.
func NewRunner(opts Options) *Runner {
	r := &Runner{
		launcher:   opts.Launcher,
		raiser:     opts.Raiser,
		sender:     opts.Sender,
		mixer:      opts.Mixer,
		source:     opts.Source,
		dispatcher: opts.Dispatcher,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if r.sender == nil {
		r.sender = input.Discard{}
	}
	if r.mixer == nil {
		r.mixer = mixer.Nop{}
	}
	if r.source == nil {
		r.source = remote.NopSource{}
	}
	if r.dispatcher == nil {
		r.dispatcher = dispatch.New(0)
	}
	if r.metrics == nil {
		r.metrics = nopMetrics{}
	}
	if r.logger == nil {
		r.logger = logging.Nop()
	}
	r.logger = r.logger.Named("session")
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Launch runs one browser session and blocks until it has been torn down.
// Cancelling ctx aborts the session; a close of parent ends it as well, and
// a nil parent never fires. A spawn failure is returned before anything
// else happens. Any other error still tears the browser down first.
func (r *Runner) Launch(ctx context.Context, argv []string, parent <-chan struct{}) (Outcome, error) {
	proc, err := r.launcher.Start(argv)
	if err != nil {
		return OutcomeFailed, err
	}
	started := r.now()
	r.metrics.SessionStarted()
	logger := r.logger.With(zap.Int("pid", proc.Pid()))

	task := r.raiser.Raise(proc.Pid())

	outcome, loopErr := r.loop(ctx, proc, parent, logger)

	task.Cancel()
	if outcome == OutcomeBrowserExited {
		proc.Wait()
	} else {
		report := r.launcher.Shutdown(proc)
		if report.Forced {
			r.metrics.ForcedKill()
		}
	}

	if loopErr != nil {
		outcome = OutcomeFailed
		logger.Error("Session failed", zap.Error(loopErr))
	}
	r.metrics.SessionEnded(outcome.String(), r.now().Sub(started))
	logger.Info("Session ended", zap.Stringer("outcome", outcome))
	return outcome, loopErr
}

// loop drives the dispatcher until the session has to end.
func (r *Runner) loop(ctx context.Context, proc process.Tracked, parent <-chan struct{}, logger *logging.Logger) (Outcome, error) {
	var state dispatch.State
	batches := r.source.Batches()

	for {
		if outcome, done := terminated(ctx, proc, parent, logger); done {
			return outcome, nil
		}

		timer, stop := deadline.Timer(deadline.Remaining(state.ReleaseDeadline(), r.now()))
		var batch remote.Batch
		select {
		case <-proc.Done():
		case <-ctx.Done():
		case <-parent:
		case b, ok := <-batches:
			if !ok {
				batches = nil
			}
			batch = b
		case <-timer:
		}
		stop()

		if outcome, done := terminated(ctx, proc, parent, logger); done {
			return outcome, nil
		}
		if batch.Err != nil {
			return OutcomeFailed, batch.Err
		}

		// An expired candidate is committed before newer codes see it.
		codes := batch.Codes
		if state.ReleaseDue(r.now()) {
			codes = append([]remote.Code{remote.Release}, codes...)
		}

		exiting, err := r.run(ctx, &state, codes, logger)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Exiting because the session was aborted")
				return OutcomeAborted, nil
			}
			return OutcomeFailed, err
		}
		if exiting {
			logger.Info("Exiting because of an exit command")
			return OutcomeExitCommand, nil
		}
	}
}

// terminated checks the end conditions in priority order without blocking.
func terminated(ctx context.Context, proc process.Tracked, parent <-chan struct{}, logger *logging.Logger) (Outcome, bool) {
	select {
	case <-proc.Done():
		logger.Info("Exiting because the browser stopped prematurely")
		return OutcomeBrowserExited, true
	default:
	}
	select {
	case <-ctx.Done():
		logger.Info("Exiting because the session was aborted")
		return OutcomeAborted, true
	default:
	}
	select {
	case <-parent:
		logger.Info("Exiting because the parent has disappeared")
		return OutcomeParentGone, true
	default:
	}
	return 0, false
}

// run dispatches codes in order and delivers their inputs. It stops after
// an EXIT code.
func (r *Runner) run(ctx context.Context, state *dispatch.State, codes []remote.Code, logger *logging.Logger) (bool, error) {
	for _, code := range codes {
		logger.Debug("Received remote code", zap.Stringer("code", code), zap.Int("repeat", code.Repeat))

		result, err := r.dispatcher.Dispatch(state, code, r.now())
		if err != nil {
			return false, err
		}
		r.metrics.CodeDispatched(code.Command.String())

		r.adjustVolume(ctx, result.Volume, logger)
		for _, in := range result.Inputs {
			if err := r.sender.Send(ctx, in); err != nil {
				return false, err
			}
		}
		if result.Exiting {
			return true, nil
		}
	}
	return false, nil
}

func (r *Runner) adjustVolume(ctx context.Context, volume dispatch.Volume, logger *logging.Logger) {
	var err error
	switch volume {
	case dispatch.VolumeUp:
		err = r.mixer.Increment(ctx)
	case dispatch.VolumeDown:
		err = r.mixer.Decrement(ctx)
	case dispatch.VolumeMute:
		err = r.mixer.ToggleMute(ctx)
	default:
		return
	}
	if err != nil {
		logger.Warn("Failed to change the volume", zap.Error(err))
	}
}
