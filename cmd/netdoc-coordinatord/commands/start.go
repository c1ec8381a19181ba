package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/internal/logger"
	"github.com/netdoc/netdoc/internal/telemetry"
	"github.com/netdoc/netdoc/pkg/catalog"
	"github.com/netdoc/netdoc/pkg/catalog/store/memory"
	"github.com/netdoc/netdoc/pkg/catalog/store/postgres"
	"github.com/netdoc/netdoc/pkg/config"
	"github.com/netdoc/netdoc/pkg/coordinator"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the coordinator",
	Long: `Start the coordinator's wire-protocol listener and admin HTTP surface.

Use --config to point at a configuration file; absent one, ./config.yaml
is tried, and with no file found the built-in defaults apply.
NETDOC_-prefixed environment variables override only keys the file sets.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := openCatalogStore(cfg)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "netdoc-coordinatord",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := telemetryShutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	srv := coordinator.New(&cfg.Server, cfg.Limits, store, reg)

	admin := startAdminServer(srv, cfg.Server.AdminAddress, reg)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		_ = admin.Shutdown(shutdownCtx)
	}()

	serverDone := make(chan error, 1)
	go func() { serverDone <- srv.Run(ctx) }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("coordinator started", "listen_address", cfg.Server.ListenAddress, "admin_address", cfg.Server.AdminAddress)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
		cancel()
		if err := <-serverDone; err != nil {
			logger.Error("coordinator shutdown error", "error", err)
			return err
		}
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("coordinator error", "error", err)
			return err
		}
	}

	logger.Info("coordinator stopped")
	return nil
}

func openCatalogStore(cfg *config.Config) (catalog.Store, error) {
	switch cfg.Database.Type {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return postgres.Open(ctx, cfg.Database.DSN)
	default:
		return memory.New(), nil
	}
}

// startAdminServer mounts the coordinator's health/metrics/debug surface
// on a background goroutine, mirroring the teacher's start.go's pattern
// of running the control-plane API server alongside the protocol server.
func startAdminServer(srv *coordinator.Server, addr string, reg *prometheus.Registry) *http.Server {
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: srv.AdminRouter(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin server error", "error", err)
		}
	}()
	return httpSrv
}
