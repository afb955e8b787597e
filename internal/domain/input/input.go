// Package input describes synthetic keyboard and pointer commands. Values are
// plain data; a Sender turns them into real events.
package input

import (
	"context"
	"fmt"
	"strings"
)

// Input is one synthetic-input command.
type Input interface {
	isInput()
	String() string
}

// Keys presses the given key chords in order, e.g. "ctrl+l" or "Return".
type Keys struct {
	Keys []string
	// ClearModifiers releases held modifiers before typing.
	ClearModifiers bool
}

// Click presses and releases a mouse button.
type Click struct {
	Button         int
	ClearModifiers bool
}

// Move moves the pointer relative to its current position.
type Move struct {
	DX, DY int
}

func (Keys) isInput()  {}
func (Click) isInput() {}
func (Move) isInput()  {}

func (k Keys) String() string  { return "key " + strings.Join(k.Keys, " ") }
func (c Click) String() string { return fmt.Sprintf("click %d", c.Button) }
func (m Move) String() string  { return fmt.Sprintf("move %+d %+d", m.DX, m.DY) }

// Well-known inputs used by the multi-tap text entry.
var (
	// Deselect collapses the current selection to its end, committing the
	// multi-tap candidate.
	Deselect = Keys{Keys: []string{"Right"}, ClearModifiers: true}
	// CloseWindow asks the focused window to close.
	CloseWindow = Keys{Keys: []string{"Alt+F4"}}
	// LeftClick is the primary button.
	LeftClick = Click{Button: 1, ClearModifiers: true}
)

// SelectForOverride is typed after a multi-tap candidate so that the next
// candidate replaces it.
const SelectForOverride = "Shift+Left"

// Sender delivers inputs to the display.
type Sender interface {
	Send(ctx context.Context, in Input) error
}

// Discard drops every input. It stands in when no input backend is configured.
type Discard struct{}

// Send implements Sender.
func (Discard) Send(context.Context, Input) error { return nil }
