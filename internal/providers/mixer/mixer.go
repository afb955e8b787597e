// Package mixer adjusts the output volume in response to remote volume keys.
//
// Muting the master control and unmuting it again is not symmetric on most
// sound cards because dependent controls stay muted, so every mixer here
// emulates mute by writing a zero level and remembering the previous one.
package mixer

import "context"

const (
	VolumeMin     = 0
	VolumeMax     = 100
	DefaultVolume = 50
	DefaultStep   = 1
)

// Mixer changes the volume by one step at a time.
type Mixer interface {
	Increment(ctx context.Context) error
	Decrement(ctx context.Context) error
	ToggleMute(ctx context.Context) error
	// Close restores anything the mixer changed outside its own tracking.
	Close(ctx context.Context) error
}

// Device is a sound control whose level can be read and written in percent.
type Device interface {
	Volume(ctx context.Context) (int, error)
	SetVolume(ctx context.Context, percent int) error
}

// Nop ignores volume keys.
type Nop struct{}

func (Nop) Increment(context.Context) error  { return nil }
func (Nop) Decrement(context.Context) error  { return nil }
func (Nop) ToggleMute(context.Context) error { return nil }
func (Nop) Close(context.Context) error      { return nil }

// level is a tracked volume with emulated mute.
type level struct {
	volume int
	muted  bool
}

// initialLevel treats a silent device as muted at the default volume.
func initialLevel(volume int) level {
	if volume <= VolumeMin {
		return level{volume: DefaultVolume, muted: true}
	}
	return level{volume: clamp(volume)}
}

func (l *level) up(step int) {
	l.muted = false
	l.volume = clamp(l.volume + step)
}

func (l *level) down(step int) {
	l.volume = clamp(l.volume - step)
}

func (l *level) toggle() {
	l.muted = !l.muted
}

// effective is the level the device should be set to.
func (l level) effective() int {
	if l.muted {
		return VolumeMin
	}
	return l.volume
}

func clamp(v int) int {
	return min(max(v, VolumeMin), VolumeMax)
}
