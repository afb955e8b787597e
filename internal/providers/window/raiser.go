// Package window brings the browser's windows to the front as they appear.
package window

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
)

// Searcher streams the ids of visible windows owned by a pid. It blocks until
// the search finishes or ctx is cancelled.
type Searcher interface {
	SearchWindows(ctx context.Context, pid int, found func(id string)) error
}

// Activator raises and focuses one window.
type Activator interface {
	ActivateWindow(ctx context.Context, id string) error
}

// SearchError reports that the window search itself failed. Failures to
// activate individual windows are only logged.
type SearchError struct {
	Pid int
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("window search for pid %d failed: %v", e.Pid, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// Observer is told about activations and search failures.
type Observer interface {
	WindowActivated()
	WindowSearchFailed()
}

type nopObserver struct{}

func (nopObserver) WindowActivated()    {}
func (nopObserver) WindowSearchFailed() {}

// Raiser starts raise tasks.
type Raiser struct {
	searcher  Searcher
	activator Activator
	observer  Observer
	logger    *logging.Logger
}

// NewRaiser creates a raiser. observer may be nil.
func NewRaiser(searcher Searcher, activator Activator, observer Observer, logger *logging.Logger) *Raiser {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Raiser{
		searcher:  searcher,
		activator: activator,
		observer:  observer,
		logger:    logger.Named("window"),
	}
}

// Raise starts a background task that activates every window of pid as the
// search reports it. The task must be finished with Cancel.
func (r *Raiser) Raise(pid int) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{
		pid:    pid,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	t.wg.Add(1)
	go r.run(ctx, t)
	return t
}

func (r *Raiser) run(ctx context.Context, t *Task) {
	defer t.wg.Done()
	defer close(t.done)

	err := r.searcher.SearchWindows(ctx, t.pid, func(id string) {
		if t.cancelled.Load() {
			return
		}
		if err := r.activator.ActivateWindow(ctx, id); err != nil {
			if ctx.Err() == nil {
				r.logger.Debug("Window activation failed", zap.String("window", id), zap.Error(err))
			}
			return
		}
		r.observer.WindowActivated()
		r.logger.Debug("Activated window", zap.String("window", id), zap.Int("pid", t.pid))
	})

	if err != nil && !t.cancelled.Load() && ctx.Err() == nil {
		t.err = &SearchError{Pid: t.pid, Err: err}
		r.observer.WindowSearchFailed()
		r.logger.Warn("Window search failed", zap.Int("pid", t.pid), zap.Error(err))
	}
}

// Task is one running raise.
type Task struct {
	pid       int
	cancelled atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	wg        sync.WaitGroup
	err       error
}

// Cancel stops the search, ends any in-flight activation and waits for the
// task to finish. No activation starts after Cancel returns. It is safe to
// call more than once.
func (t *Task) Cancel() {
	t.cancelled.Store(true)
	t.cancel()
	t.wg.Wait()
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the search failure, if any, once Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}
