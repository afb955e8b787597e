package dispatch

import "fmt"

// UnrecognizedCommandError reports a keyword missing from the command table.
// It signals a mismatch between the remote's key mapping and this program.
type UnrecognizedCommandError struct {
	Name string
}

func (e *UnrecognizedCommandError) Error() string {
	return fmt.Sprintf("unrecognized remote command %q", e.Name)
}

// ArgumentError reports a known command configured with unusable arguments.
type ArgumentError struct {
	Command string
	Args    []string
	Reason  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments %q for %s: %s", e.Args, e.Command, e.Reason)
}
