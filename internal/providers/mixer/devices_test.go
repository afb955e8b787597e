package mixer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/command/commandtest"
)

const amixerOutput = `Simple mixer control 'Master',0
  Capabilities: pvolume pswitch pswitch-joined
  Playback channels: Front Left - Front Right
  Limits: Playback 0 - 87
  Mono:
  Front Left: Playback 57 [66%] [-22.50dB] [on]
  Front Right: Playback 57 [66%] [-22.50dB] [on]
`

func TestAlsaVolume(t *testing.T) {
	runner := commandtest.NewMockRunner(t)
	runner.On("Output", "amixer", []string{"-M", "get", "PCM"}).Return([]byte(amixerOutput), nil)

	volume, err := NewAlsa("PCM", runner).Volume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 66, volume)
}

func TestAlsaSetVolume(t *testing.T) {
	runner := commandtest.NewMockRunner(t)
	runner.On("Output", "amixer", []string{"-q", "-M", "set", "Master", "42%"}).Return([]byte(nil), nil)

	require.NoError(t, NewAlsa("", runner).SetVolume(context.Background(), 42))
	runner.AssertExpectations(t)
}

func TestPulseVolume(t *testing.T) {
	runner := commandtest.NewMockRunner(t)
	runner.On("Output", "pactl", []string{"get-sink-volume", "@DEFAULT_SINK@"}).
		Return([]byte("Volume: front-left: 32768 /  50% / -18.06 dB,   front-right: 32768 /  50% / -18.06 dB\n"), nil)

	volume, err := NewPulse("", runner).Volume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, volume)
}

func TestPulseSetVolume(t *testing.T) {
	runner := commandtest.NewMockRunner(t)
	runner.On("Output", "pactl", []string{"set-sink-volume", "sink0", "7%"}).Return([]byte(nil), nil)

	require.NoError(t, NewPulse("sink0", runner).SetVolume(context.Background(), 7))
	runner.AssertExpectations(t)
}

func TestParsePercentRejectsGarbage(t *testing.T) {
	_, err := parsePercent([]byte("Simple mixer control 'Master',0"))
	assert.Error(t, err)
}
