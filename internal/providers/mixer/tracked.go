package mixer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
)

// Tracked keeps its own volume and writes it to a device after every change.
// It works without a device, in which case it only tracks.
type Tracked struct {
	device Device
	step   int
	logger *logging.Logger

	mu    sync.Mutex
	level level
}

// NewTracked reads the device's current level and starts tracking from it.
// A device that cannot be read is dropped and the default volume is used.
func NewTracked(ctx context.Context, device Device, step int, logger *logging.Logger) *Tracked {
	if step <= 0 {
		step = DefaultStep
	}
	if logger == nil {
		logger = logging.Nop()
	}
	t := &Tracked{device: device, step: step, logger: logger.Named("mixer")}

	volume := DefaultVolume
	if device != nil {
		v, err := device.Volume(ctx)
		if err != nil {
			t.logger.Info("Failed to read the mixer level", zap.Error(err))
			t.device = nil
		} else {
			t.logger.Debug("Detected initial volume", zap.Int("volume", v))
			volume = v
		}
	}
	t.level = initialLevel(volume)
	return t
}

// Increment implements Mixer. It also unmutes.
func (t *Tracked) Increment(ctx context.Context) error {
	return t.update(ctx, func(l *level) { l.up(t.step) })
}

// Decrement implements Mixer.
func (t *Tracked) Decrement(ctx context.Context) error {
	return t.update(ctx, func(l *level) { l.down(t.step) })
}

// ToggleMute implements Mixer.
func (t *Tracked) ToggleMute(ctx context.Context) error {
	return t.update(ctx, (*level).toggle)
}

// Close implements Mixer.
func (t *Tracked) Close(context.Context) error { return nil }

// Level returns the tracked volume and mute flag.
func (t *Tracked) Level() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.level.volume, t.level.muted
}

func (t *Tracked) update(ctx context.Context, change func(*level)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	change(&t.level)
	if t.device == nil {
		return nil
	}
	t.logger.Debug("Setting volume", zap.Int("volume", t.level.effective()))
	return t.device.SetVolume(ctx, t.level.effective())
}
