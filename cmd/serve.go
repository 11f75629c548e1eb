package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/smazurov/ffmcast/internal/api"
	"github.com/smazurov/ffmcast/internal/config"
	"github.com/smazurov/ffmcast/internal/events"
	"github.com/smazurov/ffmcast/internal/logging"
	"github.com/smazurov/ffmcast/internal/metrics"
	"github.com/smazurov/ffmcast/internal/metrics/exporters"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// newServeCmd creates the serve command.
func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the probe and command preview API",
		Long: `Starts an HTTP API that probes media files and builds the ffmpeg command for them ` +
			`without running it. Defaults are reloaded when the config file changes.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, c)
		},
	}
}

func (a *app) serve(ctx context.Context, c *cobra.Command) error {
	logger := logging.GetLogger("main")

	m := metrics.New()
	bus := events.New()
	detach := m.Attach(bus)
	defer detach()

	server := api.NewServer(&api.Options{
		Prober:         a.prober,
		Defaults:       a.opts,
		Bus:            bus,
		MetricsHandler: exporters.HTTPHandler(m.Registry()),
	})

	// Reloads start from the options in effect at startup so that flags
	// given on the command line keep winning.
	base := a.opts
	watcher := config.NewWatcher(a.opts.Config, func(path string) (config.Options, error) {
		reloaded := base
		reloaded.Config = path
		err := config.LoadConfig(&reloaded, c)
		return reloaded, err
	}, logging.GetLogger("config"))
	watcher.OnReload(server.SetDefaults)

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("Config hot reload disabled", "error", err)
	} else {
		defer func() {
			if err := watcher.Stop(); err != nil {
				logger.Warn("Error stopping config watcher", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(a.opts.Listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
