// Package display keeps the X display awake while the browser is driven by
// remote control, since remote input does not count as user activity.
package display

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/command"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
)

// DPMS toggles display power management through xset.
type DPMS struct {
	runner command.Runner
	logger *logging.Logger
}

// NewDPMS creates a DPMS controller. A nil runner runs real processes.
func NewDPMS(runner command.Runner, logger *logging.Logger) *DPMS {
	if runner == nil {
		runner = command.Exec{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &DPMS{runner: runner, logger: logger.Named("dpms")}
}

// Enabled reports whether power management is currently on.
func (d *DPMS) Enabled(ctx context.Context) (bool, error) {
	out, err := d.runner.Output(ctx, "xset", "-q")
	if err != nil {
		return false, err
	}
	return strings.Contains(string(out), "DPMS is Enabled"), nil
}

// Inhibit disables power management if it is on and returns a function that
// turns it back on. When it was already off, restore does nothing.
func (d *DPMS) Inhibit(ctx context.Context) (restore func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	enabled, err := d.Enabled(ctx)
	if err != nil {
		return noop, err
	}
	if !enabled {
		d.logger.Debug("DPMS already disabled")
		return noop, nil
	}

	d.logger.Info("Disabling DPMS")
	if _, err := d.runner.Output(ctx, "xset", "-dpms"); err != nil {
		return noop, err
	}
	return func(ctx context.Context) error {
		d.logger.Info("Enabling DPMS")
		_, err := d.runner.Output(ctx, "xset", "+dpms")
		if err != nil {
			d.logger.Warn("Failed to re-enable DPMS", zap.Error(err))
		}
		return err
	}, nil
}
