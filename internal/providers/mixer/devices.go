package mixer

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/command"
)

var percentPattern = regexp.MustCompile(`(\d+)%`)

// parsePercent returns the first "NN%" figure in helper output.
func parsePercent(out []byte) (int, error) {
	m := percentPattern.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("no volume level in %q", out)
	}
	return strconv.Atoi(string(m[1]))
}

// Alsa controls a simple ALSA mixer control through amixer.
type Alsa struct {
	Control string
	Runner  command.Runner
}

// NewAlsa creates an ALSA device. An empty control means "Master".
func NewAlsa(control string, runner command.Runner) *Alsa {
	if control == "" {
		control = "Master"
	}
	if runner == nil {
		runner = command.Exec{}
	}
	return &Alsa{Control: control, Runner: runner}
}

// Volume implements Device using the mapped scale of the first channel.
func (a *Alsa) Volume(ctx context.Context) (int, error) {
	out, err := a.Runner.Output(ctx, "amixer", "-M", "get", a.Control)
	if err != nil {
		return 0, err
	}
	return parsePercent(out)
}

// SetVolume implements Device on all channels.
func (a *Alsa) SetVolume(ctx context.Context, percent int) error {
	_, err := a.Runner.Output(ctx, "amixer", "-q", "-M", "set", a.Control, strconv.Itoa(percent)+"%")
	return err
}

// Pulse controls a PulseAudio sink through pactl.
type Pulse struct {
	Sink   string
	Runner command.Runner
}

// NewPulse creates a PulseAudio device. An empty sink means the default one.
func NewPulse(sink string, runner command.Runner) *Pulse {
	if sink == "" {
		sink = "@DEFAULT_SINK@"
	}
	if runner == nil {
		runner = command.Exec{}
	}
	return &Pulse{Sink: sink, Runner: runner}
}

// Volume implements Device.
func (p *Pulse) Volume(ctx context.Context) (int, error) {
	out, err := p.Runner.Output(ctx, "pactl", "get-sink-volume", p.Sink)
	if err != nil {
		return 0, err
	}
	return parsePercent(out)
}

// SetVolume implements Device.
func (p *Pulse) SetVolume(ctx context.Context, percent int) error {
	_, err := p.Runner.Output(ctx, "pactl", "set-sink-volume", p.Sink, strconv.Itoa(percent)+"%")
	return err
}
