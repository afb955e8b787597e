package remote

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// Command is the closed set of remote commands understood by the dispatcher.
type Command int

const (
	CommandUnknown Command = iota
	CommandVolumeUp
	CommandVolumeDown
	CommandMute
	CommandMultitap
	CommandKey
	CommandClick
	CommandMouse
	CommandExit
	CommandRelease
)

var commandNames = map[Command]string{
	CommandVolumeUp:   "VOLUME_UP",
	CommandVolumeDown: "VOLUME_DOWN",
	CommandMute:       "MUTE",
	CommandMultitap:   "MULTITAP",
	CommandKey:        "KEY",
	CommandClick:      "CLICK",
	CommandMouse:      "MOUSE",
	CommandExit:       "EXIT",
	CommandRelease:    "RELEASE",
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command, len(commandNames))
	for c, name := range commandNames {
		m[name] = c
	}
	return m
}()

// String returns the configuration keyword of the command.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// LookupCommand resolves a configuration keyword. Matching is exact.
func LookupCommand(name string) (Command, bool) {
	c, ok := commandsByName[name]
	return c, ok
}

// Code is one decoded remote-control event.
type Code struct {
	// Command is the resolved keyword; CommandUnknown keeps Name for errors.
	Command Command
	// Name is the keyword exactly as configured.
	Name string
	// Args are the remaining configuration tokens.
	Args []string
	// Repeat counts how long the button has been held; 0 for a fresh press.
	Repeat int
}

// Release is the synthetic code injected when a multi-tap deadline elapses.
var Release = Code{Command: CommandRelease, Name: "RELEASE"}

// String renders the code for logs.
func (c Code) String() string {
	parts := append([]string{c.Name}, c.Args...)
	return fmt.Sprintf("%s (repeat %d)", strings.Join(parts, " "), c.Repeat)
}

// Parse tokenizes a configuration string such as `KEY ctrl+l` or
// `MULTITAP a b c 2` using shell quoting rules. Unknown keywords are not an
// error here; the dispatcher rejects them.
func Parse(config string, repeat int) (Code, error) {
	tokens, err := shlex.Split(config)
	if err != nil {
		return Code{}, fmt.Errorf("invalid remote config %q: %w", config, err)
	}
	if len(tokens) == 0 {
		return Code{}, fmt.Errorf("empty remote config")
	}
	if repeat < 0 {
		return Code{}, fmt.Errorf("negative repeat count %d", repeat)
	}

	command, _ := LookupCommand(tokens[0])
	return Code{
		Command: command,
		Name:    tokens[0],
		Args:    tokens[1:],
		Repeat:  repeat,
	}, nil
}
