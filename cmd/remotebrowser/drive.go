package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/session"
	"github.com/GriffinCanCode/RemoteBrowser/internal/providers/process"
)

func newDriveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drive [url]",
		Short: "Run one browser session in the foreground",
		Long: `Launch the browser, drive it with the remote control and return when the
session ends. The session also ends when stdin becomes readable or closes,
which is how a parent media center signals that it went away.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, os.Interrupt)
			defer stop()

			_, err := drive(ctx, a, url, os.Stdin)
			return err
		},
	}
}

func drive(ctx context.Context, a *app, url string, stdin io.Reader) (session.Outcome, error) {
	argv, err := a.cfg.Browser.Argv(url)
	if err != nil {
		return session.OutcomeFailed, err
	}

	var parent <-chan struct{}
	if a.cfg.Browser.WatchStdin {
		parent = watchParent(stdin)
	}

	if a.cfg.Browser.SuspendParent {
		resume, err := process.SuspendParent()
		if err != nil {
			a.logger.Warn("Failed to suspend parent", zap.Error(err))
		} else {
			defer func() {
				if err := resume(); err != nil {
					a.logger.Warn("Failed to resume parent", zap.Error(err))
				}
			}()
		}
	}

	outcome, err := newSessionDriver(a.cfg, nil, a.logger).Launch(ctx, argv, parent)
	if err != nil {
		return outcome, err
	}
	a.logger.Info("Session ended", zap.Stringer("outcome", outcome))
	return outcome, nil
}

// watchParent returns a channel closed once the first read from r returns,
// with data or at EOF.
func watchParent(r io.Reader) <-chan struct{} {
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		var buf [1]byte
		_, _ = r.Read(buf[:])
	}()
	return gone
}
