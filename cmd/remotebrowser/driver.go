package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/dispatch"
	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/remote"
	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/session"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/command"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/config"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/RemoteBrowser/internal/providers/display"
	"github.com/GriffinCanCode/RemoteBrowser/internal/providers/lirc"
	"github.com/GriffinCanCode/RemoteBrowser/internal/providers/mixer"
	"github.com/GriffinCanCode/RemoteBrowser/internal/providers/process"
	"github.com/GriffinCanCode/RemoteBrowser/internal/providers/window"
	"github.com/GriffinCanCode/RemoteBrowser/internal/providers/xdotool"
)

// cleanupTimeout bounds restoring the mixer and screen after a session.
const cleanupTimeout = 5 * time.Second

// sessionDriver sets up the per-session environment (remote control
// connection, mixer, screen blanking) around a session.Runner.
type sessionDriver struct {
	cfg        *config.Config
	runner     command.Runner
	xdotool    *xdotool.Client
	raiser     *window.Raiser
	supervisor *process.Supervisor
	dpms       *display.DPMS
	metrics    *monitoring.Metrics
	logger     *logging.Logger
}

// newSessionDriver wires the collaborators shared by every session. metrics
// may be nil.
func newSessionDriver(cfg *config.Config, metrics *monitoring.Metrics, logger *logging.Logger) *sessionDriver {
	runner := command.Exec{}
	xdo := xdotool.New(cfg.Browser.XdotoolPath, runner, logger)

	var observer window.Observer
	if metrics != nil {
		observer = metrics
	}

	return &sessionDriver{
		cfg:        cfg,
		runner:     runner,
		xdotool:    xdo,
		raiser:     window.NewRaiser(xdo, xdo, observer, logger),
		supervisor: process.NewSupervisor(process.NewTreeTracker(), nil, cfg.Browser.GracePeriod, logger),
		dpms:       display.NewDPMS(runner, logger),
		metrics:    metrics,
		logger:     logger,
	}
}

// Launch runs one session. It implements session.Driver.
func (d *sessionDriver) Launch(ctx context.Context, argv []string, parent <-chan struct{}) (session.Outcome, error) {
	if d.cfg.Browser.InhibitDPMS {
		defer d.inhibitDPMS(ctx)()
	}

	source, closeSource, err := d.openRemote(ctx)
	if err != nil {
		return session.OutcomeFailed, err
	}
	defer closeSource()

	mix, err := mixer.Open(ctx, d.cfg.Mixer, d.cfg.Kodi, d.runner, d.logger)
	if err != nil {
		d.logger.Warn("Volume control unavailable", zap.String("mixer", d.cfg.Mixer.Backend), zap.Error(err))
		mix = mixer.Nop{}
	}
	defer func() {
		closeCtx, cancel := cleanupContext(ctx)
		defer cancel()
		if err := mix.Close(closeCtx); err != nil {
			d.logger.Warn("Failed to restore volume", zap.Error(err))
		}
	}()

	opts := session.Options{
		Launcher:   d.supervisor,
		Raiser:     d.raiser,
		Sender:     d.xdotool,
		Mixer:      mix,
		Source:     source,
		Dispatcher: d.dispatcher(),
		Logger:     d.logger,
	}
	if d.metrics != nil {
		opts.Metrics = d.metrics
	}
	return session.NewRunner(opts).Launch(ctx, argv, parent)
}

// dispatcher applies the multi-tap delay and the keys EXIT types.
func (d *sessionDriver) dispatcher() *dispatch.Dispatcher {
	disp := dispatch.New(d.cfg.Browser.ReleaseDelay)
	disp.CloseKeys = strings.Fields(d.cfg.Browser.CloseKeys)
	return disp
}

// openRemote connects to lircd for the length of one session, so presses
// made between sessions are not replayed into the next browser. A missing
// daemon only disables the remote; a broken keymap is an error.
func (d *sessionDriver) openRemote(ctx context.Context) (remote.Source, func(), error) {
	nop := func() {}
	if !d.cfg.Lirc.Enabled {
		return remote.NopSource{}, nop, nil
	}

	path := d.cfg.Lirc.Keymap
	if path == "" {
		path = defaultKeymapPath()
	}
	keymap, err := lirc.LoadKeymap(path, d.cfg.Lirc.Program)
	if err != nil {
		return nil, nop, err
	}

	client, err := lirc.Dial(ctx, d.cfg.Lirc.Socket, keymap, d.logger)
	if err != nil {
		d.logger.Warn("Remote control unavailable", zap.Error(err))
		return remote.NopSource{}, nop, nil
	}
	return client, func() { _ = client.Close() }, nil
}

// inhibitDPMS keeps the screen on for the session and returns the function
// that restores display power management.
func (d *sessionDriver) inhibitDPMS(ctx context.Context) func() {
	restore, err := d.dpms.Inhibit(ctx)
	if err != nil {
		d.logger.Warn("Failed to inhibit DPMS", zap.Error(err))
		return func() {}
	}
	return func() {
		restoreCtx, cancel := cleanupContext(ctx)
		defer cancel()
		if err := restore(restoreCtx); err != nil {
			d.logger.Warn("Failed to re-enable DPMS", zap.Error(err))
		}
	}
}

// cleanupContext outlives cancellation of ctx, which is usually why the
// session ended.
func cleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}

func defaultKeymapPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lircrc"
	}
	return filepath.Join(home, ".lircrc")
}
