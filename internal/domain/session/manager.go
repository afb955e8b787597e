package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RemoteBrowser/internal/shared/id"
)

// ErrBusy is returned by Manager.Launch while a session is running.
var ErrBusy = errors.New("a browser session is already running")

// Driver runs one session to completion. *Runner implements it.
type Driver interface {
	Launch(ctx context.Context, argv []string, parent <-chan struct{}) (Outcome, error)
}

// ArgvFunc builds the browser command line for a URL.
type ArgvFunc func(url string) ([]string, error)

// Info describes a running session.
type Info struct {
	ID        id.SessionID `json:"id"`
	URL       string       `json:"url"`
	StartedAt time.Time    `json:"started_at"`
}

// Manager runs at most one session at a time in the background. Sessions
// are bound to the manager's context, so cancelling it aborts the running
// one.
type Manager struct {
	ctx     context.Context
	runner  Driver
	argv    ArgvFunc
	logger  *logging.Logger
	onBusy  func()
	mu      sync.Mutex
	active  *Info
	running sync.WaitGroup
}

// NewManager creates a manager whose sessions live no longer than ctx.
func NewManager(ctx context.Context, runner Driver, argv ArgvFunc, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		ctx:    ctx,
		runner: runner,
		argv:   argv,
		logger: logger.Named("manager"),
		onBusy: func() {},
	}
}

// OnBusy sets a hook called whenever a launch is rejected with ErrBusy.
func (m *Manager) OnBusy(hook func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onBusy = hook
}

// Launch starts a session for url and returns without waiting for it. It
// fails with ErrBusy while another session runs and with the argv error when
// the command line cannot be built.
func (m *Manager) Launch(url string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		m.onBusy()
		return Info{}, ErrBusy
	}
	if err := m.ctx.Err(); err != nil {
		return Info{}, err
	}
	argv, err := m.argv(url)
	if err != nil {
		return Info{}, err
	}

	info := Info{ID: id.NewSessionID(), URL: url, StartedAt: time.Now()}
	m.active = &info
	m.running.Add(1)
	go m.run(info, argv)

	m.logger.Info("Launching session", zap.String("session", info.ID.String()), zap.String("url", url))
	return info, nil
}

func (m *Manager) run(info Info, argv []string) {
	defer m.running.Done()
	defer func() {
		m.mu.Lock()
		m.active = nil
		m.mu.Unlock()
	}()

	outcome, err := m.runner.Launch(m.ctx, argv, nil)
	fields := []zap.Field{
		zap.String("session", info.ID.String()),
		zap.Stringer("outcome", outcome),
		zap.Duration("duration", time.Since(info.StartedAt)),
	}
	if err != nil {
		m.logger.Error("Session failed", append(fields, zap.Error(err))...)
		return
	}
	m.logger.Info("Session finished", fields...)
}

// Active returns the running session, if any.
func (m *Manager) Active() (Info, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Info{}, false
	}
	return *m.active, true
}

// Wait blocks until the running session, if any, has been torn down.
func (m *Manager) Wait() {
	m.running.Wait()
}
