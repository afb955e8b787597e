package mixer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
)

// Caller performs one JSON-RPC call. *RPC implements it.
type Caller interface {
	Call(ctx context.Context, method string, params, result any) error
}

type appProperties struct {
	Muted  bool `json:"muted"`
	Volume int  `json:"volume"`
}

// Kodi drives the media center's own volume so that its on-screen level
// stays in sync, and copies the result onto a local device when one is
// given. When the RPC fails the change is tracked locally instead.
type Kodi struct {
	rpc    Caller
	mirror Device
	step   int
	logger *logging.Logger

	mu       sync.Mutex
	level    level
	original *int
}

// NewKodi reads Kodi's current volume, remembers the mirror device's level
// for Close and matches the device to Kodi. mirror may be nil.
func NewKodi(ctx context.Context, rpc Caller, mirror Device, step int, logger *logging.Logger) (*Kodi, error) {
	if step <= 0 {
		step = DefaultStep
	}
	if logger == nil {
		logger = logging.Nop()
	}
	k := &Kodi{rpc: rpc, mirror: mirror, step: step, logger: logger.Named("kodi-mixer")}

	var props appProperties
	err := rpc.Call(ctx, "Application.GetProperties", map[string][]string{"properties": {"muted", "volume"}}, &props)
	if err != nil {
		k.logger.Info("Could not retrieve current volume", zap.Error(err))
		k.level = level{volume: VolumeMax}
	} else {
		k.level = level{volume: clamp(props.Volume), muted: props.Muted}
	}

	if mirror == nil {
		return k, nil
	}
	original, err := mirror.Volume(ctx)
	if err != nil {
		return nil, err
	}
	k.original = &original
	if err := mirror.SetVolume(ctx, k.level.effective()); err != nil {
		return nil, err
	}
	return k, nil
}

// Increment implements Mixer. It also unmutes.
func (k *Kodi) Increment(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.level.muted = false
	var volume int
	if err := k.rpc.Call(ctx, "Application.SetVolume", map[string]string{"volume": "increment"}, &volume); err != nil {
		k.logger.Info("Could not increase volume", zap.Error(err))
		k.level.up(k.step)
	} else {
		k.level.volume = clamp(volume)
	}
	return k.realize(ctx)
}

// Decrement implements Mixer.
func (k *Kodi) Decrement(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var volume int
	if err := k.rpc.Call(ctx, "Application.SetVolume", map[string]string{"volume": "decrement"}, &volume); err != nil {
		k.logger.Info("Could not decrease volume", zap.Error(err))
		k.level.down(k.step)
	} else {
		k.level.volume = clamp(volume)
	}
	return k.realize(ctx)
}

// ToggleMute implements Mixer.
func (k *Kodi) ToggleMute(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var muted bool
	if err := k.rpc.Call(ctx, "Application.SetMute", map[string]string{"mute": "toggle"}, &muted); err != nil {
		k.logger.Info("Could not toggle mute", zap.Error(err))
		k.level.toggle()
	} else {
		k.level.muted = muted
	}
	return k.realize(ctx)
}

// Close restores the mirror device to the level it had before NewKodi.
func (k *Kodi) Close(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.mirror == nil || k.original == nil {
		return nil
	}
	return k.mirror.SetVolume(ctx, *k.original)
}

// Level returns the tracked volume and mute flag.
func (k *Kodi) Level() (int, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.level.volume, k.level.muted
}

func (k *Kodi) realize(ctx context.Context) error {
	if k.mirror == nil {
		return nil
	}
	return k.mirror.SetVolume(ctx, k.level.effective())
}
