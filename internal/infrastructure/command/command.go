// Package command runs the external X11 and audio helpers the browser
// session drives. Callers depend on Runner so tests can record invocations
// instead of spawning processes.
package command

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes helper programs.
type Runner interface {
	// Output runs name to completion and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Stream runs name and calls line for every non-empty output line as it
	// is printed. Cancelling ctx kills the program.
	Stream(ctx context.Context, name string, args []string, line func(string)) error
}

// Error reports a helper that failed to start or exited unsuccessfully.
type Error struct {
	Name   string
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Name, strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Exec runs real processes.
type Exec struct{}

// Output implements Runner.
func (Exec) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{Name: name, Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return stdout.Bytes(), nil
}

// Stream implements Runner.
func (Exec) Stream(ctx context.Context, name string, args []string, line func(string)) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &Error{Name: name, Args: args, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &Error{Name: name, Args: args, Err: err}
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if text := strings.TrimSpace(scanner.Text()); text != "" {
			line(text)
		}
	}

	err = cmd.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return &Error{Name: name, Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return nil
}
