// Package xdotool delivers synthetic input and window operations through the
// xdotool command.
package xdotool

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/input"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/command"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
)

// DefaultPath is looked up on PATH.
const DefaultPath = "xdotool"

// Client wraps one xdotool executable.
type Client struct {
	path   string
	runner command.Runner
	logger *logging.Logger
}

// New creates a client. An empty path uses DefaultPath and a nil runner runs
// real processes.
func New(path string, runner command.Runner, logger *logging.Logger) *Client {
	if path == "" {
		path = DefaultPath
	}
	if runner == nil {
		runner = command.Exec{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{path: path, runner: runner, logger: logger.Named("xdotool")}
}

// Send implements input.Sender.
func (c *Client) Send(ctx context.Context, in input.Input) error {
	args, err := Args(in)
	if err != nil {
		return err
	}
	c.logger.Debug("Sending input", zap.Stringer("input", in))
	_, err = c.runner.Output(ctx, c.path, args...)
	return err
}

// SearchWindows waits for visible windows owned by pid and calls found with
// each window id as xdotool reports it. It returns when the search ends or
// ctx is cancelled.
func (c *Client) SearchWindows(ctx context.Context, pid int, found func(id string)) error {
	args := []string{"search", "--sync", "--onlyvisible", "--pid", strconv.Itoa(pid)}
	return c.runner.Stream(ctx, c.path, args, found)
}

// ActivateWindow raises and focuses a window.
func (c *Client) ActivateWindow(ctx context.Context, id string) error {
	_, err := c.runner.Output(ctx, c.path, "windowactivate", id)
	return err
}

// Args translates an input into xdotool arguments.
func Args(in input.Input) ([]string, error) {
	switch v := in.(type) {
	case input.Keys:
		args := []string{"key"}
		if v.ClearModifiers {
			args = append(args, "--clearmodifiers")
		}
		args = append(args, "--")
		return append(args, v.Keys...), nil
	case input.Click:
		args := []string{"click"}
		if v.ClearModifiers {
			args = append(args, "--clearmodifiers")
		}
		return append(args, strconv.Itoa(v.Button)), nil
	case input.Move:
		return []string{"mousemove_relative", "--", strconv.Itoa(v.DX), strconv.Itoa(v.DY)}, nil
	default:
		return nil, fmt.Errorf("unsupported input %T", in)
	}
}
