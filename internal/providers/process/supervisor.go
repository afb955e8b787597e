package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
)

// DefaultGracePeriod is how long a terminated browser may take to exit
// before it is killed.
const DefaultGracePeriod = 3 * time.Second

// SpawnError reports that the browser executable could not be started. No
// process exists when it is returned.
type SpawnError struct {
	Argv []string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", strings.Join(e.Argv, " "), e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Tracked is a supervised process as seen by Shutdown.
type Tracked interface {
	Pid() int
	// Done is closed once the process has exited and been reaped.
	Done() <-chan struct{}
	// Wait blocks until Done is closed and the exit watcher has returned.
	Wait()
}

// Child is a spawned process with its exit watcher.
type Child struct {
	pid     int
	cmd     *exec.Cmd
	done    chan struct{}
	watcher sync.WaitGroup
	err     error
}

// Pid returns the operating system process id.
func (c *Child) Pid() int { return c.pid }

// Done is closed exactly once, after the process exits for any reason.
func (c *Child) Done() <-chan struct{} { return c.done }

// Wait blocks until the process has exited and its watcher has returned.
// Any number of callers may wait.
func (c *Child) Wait() { c.watcher.Wait() }

// Err returns the exit error once Done is closed, nil before that.
func (c *Child) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

func (c *Child) watch() {
	defer c.watcher.Done()
	c.err = c.cmd.Wait()
	close(c.done)
}

// Report describes what Shutdown had to do.
type Report struct {
	// AlreadyExited is set when the process was gone before Shutdown began.
	AlreadyExited bool
	// Terminated lists pids that accepted the graceful signal.
	Terminated []int
	// Forced is set when the grace period elapsed before exit.
	Forced bool
	// Killed lists pids that accepted the forceful signal.
	Killed []int
}

// Supervisor launches the browser and tears it down.
type Supervisor struct {
	tracker  Tracker
	signaler Signaler
	grace    time.Duration
	logger   *logging.Logger
}

// NewSupervisor creates a supervisor. A nil tracker degrades to RootTracker,
// a nil signaler uses OSSignaler and a non-positive grace uses
// DefaultGracePeriod.
func NewSupervisor(tracker Tracker, signaler Signaler, grace time.Duration, logger *logging.Logger) *Supervisor {
	if tracker == nil {
		tracker = RootTracker{}
	}
	if signaler == nil {
		signaler = OSSignaler{}
	}
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Supervisor{
		tracker:  tracker,
		signaler: signaler,
		grace:    grace,
		logger:   logger.Named("supervisor"),
	}
}

// GracePeriod returns the configured grace period.
func (s *Supervisor) GracePeriod() time.Duration { return s.grace }

// Spawn starts argv and a watcher that closes Done when it exits. The
// browser gets no stdin; stdout and stderr are inherited.
func (s *Supervisor) Spawn(argv []string) (*Child, error) {
	if len(argv) == 0 {
		return nil, &SpawnError{Argv: argv, Err: errors.New("empty command")}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	s.logger.Info("Launching browser", zap.Strings("argv", argv))
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Argv: argv, Err: err}
	}

	c := &Child{
		pid:  cmd.Process.Pid,
		cmd:  cmd,
		done: make(chan struct{}),
	}
	c.watcher.Add(1)
	go c.watch()

	s.logger.Debug("Browser started", zap.Int("pid", c.pid))
	return c, nil
}

// Shutdown terminates p and everything it spawned. It asks every pid in the
// tree to exit, waits up to the grace period, then kills whatever tree
// remains and waits for the exit to be confirmed. It returns after the
// exit watcher has been joined. Call it once per process.
func (s *Supervisor) Shutdown(p Tracked) Report {
	var report Report
	defer p.Wait()

	select {
	case <-p.Done():
		s.logger.Debug("Browser already exited", zap.Int("pid", p.Pid()))
		report.AlreadyExited = true
		return report
	default:
	}

	s.logger.Debug("Terminating the browser", zap.Int("pid", p.Pid()))
	report.Terminated = s.signalTree(p.Pid(), Graceful)

	deadline := time.NewTimer(s.grace)
	select {
	case <-p.Done():
		deadline.Stop()
		s.logger.Debug("Waited for the browser to quit", zap.Int("pid", p.Pid()))
	case <-deadline.C:
		s.logger.Info("Forcibly killing the browser at the deadline",
			zap.Int("pid", p.Pid()),
			zap.Duration("grace", s.grace),
		)
		report.Forced = true
		report.Killed = s.signalTree(p.Pid(), Forceful)
		<-p.Done()
		s.logger.Debug("Waited for the browser to die", zap.Int("pid", p.Pid()))
	}
	return report
}

// signalTree signals root and its current descendants, skipping pids that
// are already gone.
func (s *Supervisor) signalTree(root int, sig Signal) []int {
	pids := s.tracker.Descendants(root)
	delivered := make([]int, 0, len(pids))
	for _, pid := range pids {
		if err := s.signaler.Signal(pid, sig); err != nil {
			s.logger.Debug("Signal not delivered", zap.Error(err))
			continue
		}
		delivered = append(delivered, pid)
	}
	return delivered
}

// Start is Spawn returning the Tracked view used by session runners.
func (s *Supervisor) Start(argv []string) (Tracked, error) {
	child, err := s.Spawn(argv)
	if err != nil {
		return nil, err
	}
	return child, nil
}
