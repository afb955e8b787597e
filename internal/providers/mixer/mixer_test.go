package mixer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	volume  int
	readErr error
	writes  []int
}

func (d *fakeDevice) Volume(context.Context) (int, error) { return d.volume, d.readErr }

func (d *fakeDevice) SetVolume(_ context.Context, percent int) error {
	d.writes = append(d.writes, percent)
	d.volume = percent
	return nil
}

func TestTrackedStartsFromDevice(t *testing.T) {
	m := NewTracked(context.Background(), &fakeDevice{volume: 70}, 1, nil)
	volume, muted := m.Level()
	assert.Equal(t, 70, volume)
	assert.False(t, muted)
}

func TestTrackedSilentDeviceIsMuted(t *testing.T) {
	m := NewTracked(context.Background(), &fakeDevice{volume: 0}, 1, nil)
	volume, muted := m.Level()
	assert.Equal(t, DefaultVolume, volume)
	assert.True(t, muted)
}

func TestTrackedUnreadableDeviceIsDropped(t *testing.T) {
	dev := &fakeDevice{readErr: errors.New("no card")}
	m := NewTracked(context.Background(), dev, 1, nil)

	require.NoError(t, m.Increment(context.Background()))
	assert.Empty(t, dev.writes)
	volume, _ := m.Level()
	assert.Equal(t, DefaultVolume+1, volume)
}

func TestTrackedSteps(t *testing.T) {
	ctx := context.Background()
	dev := &fakeDevice{volume: 99}
	m := NewTracked(ctx, dev, 1, nil)

	require.NoError(t, m.Increment(ctx))
	require.NoError(t, m.Increment(ctx))
	require.NoError(t, m.Decrement(ctx))
	assert.Equal(t, []int{100, 100, 99}, dev.writes)
}

func TestTrackedMuteEmulation(t *testing.T) {
	ctx := context.Background()
	dev := &fakeDevice{volume: 40}
	m := NewTracked(ctx, dev, 5, nil)

	require.NoError(t, m.ToggleMute(ctx))
	require.NoError(t, m.Decrement(ctx))
	require.NoError(t, m.ToggleMute(ctx))
	require.NoError(t, m.ToggleMute(ctx))
	require.NoError(t, m.Increment(ctx))

	// Decrementing while muted lowers the remembered level but stays silent;
	// incrementing unmutes.
	assert.Equal(t, []int{0, 0, 35, 0, 40}, dev.writes)
}

func TestTrackedFloor(t *testing.T) {
	ctx := context.Background()
	dev := &fakeDevice{volume: 1}
	m := NewTracked(ctx, dev, 1, nil)

	require.NoError(t, m.Decrement(ctx))
	require.NoError(t, m.Decrement(ctx))
	assert.Equal(t, []int{0, 0}, dev.writes)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var m Mixer = Nop{}
	assert.NoError(t, m.Increment(ctx))
	assert.NoError(t, m.Decrement(ctx))
	assert.NoError(t, m.ToggleMute(ctx))
	assert.NoError(t, m.Close(ctx))
}
