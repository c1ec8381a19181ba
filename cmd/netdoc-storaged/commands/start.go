package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/internal/logger"
	"github.com/netdoc/netdoc/internal/telemetry"
	"github.com/netdoc/netdoc/pkg/client"
	"github.com/netdoc/netdoc/pkg/config"
	"github.com/netdoc/netdoc/pkg/storagenode"
	"github.com/netdoc/netdoc/pkg/storagenode/blobstore"
	"github.com/netdoc/netdoc/pkg/storagenode/blobstore/badger"
	"github.com/netdoc/netdoc/pkg/storagenode/blobstore/s3"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the storage node",
	Long: `Start the storage node's content listener, then register it with the
configured coordinator and send it periodic heartbeats for the process's
lifetime (spec.md §4.2's alive bit).`,
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

	store, err := openBlobstore(cfg)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "netdoc-storaged",
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
	srv := storagenode.New(&cfg.Server, cfg.Limits, store, reg)

	serverDone := make(chan error, 1)
	go func() { serverDone <- srv.Serve(ctx) }()
	srv.Addr() // blocks until the listener is bound

	nodeID, err := registerWithCoordinator(ctx, cfg)
	if err != nil {
		cancel()
		<-serverDone
		return fmt.Errorf("register with coordinator: %w", err)
	}
	logger.Info("registered with coordinator", "node_id", nodeID, "advertise_address", cfg.Storage.AdvertiseAddress)

	go runHeartbeatLoop(ctx, cfg, nodeID)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("storage node started", "listen_address", cfg.Server.ListenAddress)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
		cancel()
		if err := <-serverDone; err != nil {
			logger.Error("storage node shutdown error", "error", err)
			return err
		}
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("storage node error", "error", err)
			return err
		}
	}

	logger.Info("storage node stopped")
	return nil
}

func openBlobstore(cfg *config.Config) (blobstore.Store, error) {
	switch cfg.Storage.Backend {
	case "s3":
		s3Cfg := cfg.Storage.S3
		return s3.New(context.Background(), s3.Config{
			Endpoint:        s3Cfg.Endpoint,
			Region:          s3Cfg.Region,
			AccessKeyID:     s3Cfg.AccessKeyID,
			SecretAccessKey: s3Cfg.SecretAccessKey,
			Bucket:          s3Cfg.Bucket,
			KeyPrefix:       s3Cfg.KeyPrefix,
			ForcePathStyle:  s3Cfg.ForcePathStyle,
		})
	default:
		return badger.Open(cfg.Storage.BadgerDir)
	}
}

func registerWithCoordinator(ctx context.Context, cfg *config.Config) (uint64, error) {
	c, err := client.Dial(cfg.Storage.CoordinatorAddress, "")
	if err != nil {
		return 0, err
	}
	defer c.Close()
	return c.RegisterStorageNode(ctx, cfg.Storage.AdvertiseAddress)
}

// runHeartbeatLoop sends HEARTBEAT(nodeID) every HeartbeatInterval until
// ctx is cancelled, using a fresh connection per beat so a coordinator
// restart between beats doesn't wedge the loop.
func runHeartbeatLoop(ctx context.Context, cfg *config.Config, nodeID uint64) {
	interval := cfg.Limits.HeartbeatInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sendHeartbeat(ctx, cfg, nodeID); err != nil {
				logger.Warn("heartbeat failed", "error", err)
			}
		}
	}
}

func sendHeartbeat(ctx context.Context, cfg *config.Config, nodeID uint64) error {
	c, err := client.Dial(cfg.Storage.CoordinatorAddress, "")
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Heartbeat(ctx, nodeID)
}
