package mixer

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/command"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/config"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
)

// Open builds the mixer selected by cfg.Backend.
func Open(ctx context.Context, cfg config.MixerConfig, kodi config.KodiConfig, runner command.Runner, logger *logging.Logger) (Mixer, error) {
	switch cfg.Backend {
	case "", config.MixerNone:
		return Nop{}, nil
	case config.MixerALSA:
		return NewTracked(ctx, NewAlsa(cfg.AlsaControl, runner), cfg.Step, logger), nil
	case config.MixerPulse:
		return NewTracked(ctx, NewPulse(cfg.PulseSink, runner), cfg.Step, logger), nil
	case config.MixerKodi:
		var mirror Device
		if cfg.KodiMirrorTo != "" {
			mirror = NewAlsa(cfg.KodiMirrorTo, runner)
		}
		rpc := NewRPC(RPCConfig{
			URL:      kodi.URL,
			User:     kodi.User,
			Password: kodi.Password,
			Timeout:  kodi.Timeout,
		})
		return NewKodi(ctx, rpc, mirror, cfg.Step, logger)
	default:
		return nil, fmt.Errorf("unknown mixer backend %q", cfg.Backend)
	}
}
