package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/RemoteBrowser/internal/domain/session"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/server"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Open links cast over HTTP, one browser session at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, os.Interrupt)
			defer stop()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	if !a.cfg.Linkcast.Enabled {
		return errors.New("linkcast is disabled (LINKCAST_ENABLED=false)")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(reg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	manager := session.NewManager(ctx, newSessionDriver(a.cfg, metrics, a.logger), a.cfg.Browser.Argv, a.logger)
	manager.OnBusy(metrics.LaunchRejected)

	srv := server.NewServer(a.cfg, manager, metrics, reg, a.logger)
	err := srv.Run(ctx)

	// A running session is aborted with the server.
	cancel()
	manager.Wait()
	return err
}
