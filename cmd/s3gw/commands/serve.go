package commands

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ajay-paratmandali/s3gw/internal/gwapi"
	"github.com/ajay-paratmandali/s3gw/internal/gwconfig"
	"github.com/ajay-paratmandali/s3gw/internal/gwmetrics"
	"github.com/ajay-paratmandali/s3gw/internal/gwstore"
	"github.com/ajay-paratmandali/s3gw/internal/logger"
	"github.com/ajay-paratmandali/s3gw/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway's HTTP server",
	Long: `Load configuration, wire up the backing store and the middleware
stack, and serve UploadPart requests until interrupted.

Examples:
  s3gw serve
  s3gw serve --config /etc/s3gw/config.yaml
  S3GW_LOGGING_LEVEL=DEBUG s3gw serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := gwconfig.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "s3gw",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	var registry = cfg.Metrics.Enabled
	var storeMetrics gwmetrics.StoreMetrics
	var actionMetrics gwmetrics.ActionMetrics
	if registry {
		reg := gwmetrics.InitRegistry()
		storeMetrics = gwmetrics.NewStoreMetrics()
		actionMetrics = gwmetrics.NewActionMetrics()

		metricsServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		go func() {
			logger.Info("metrics server listening", "port", cfg.Metrics.Port)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			_ = metricsServer.Close()
		}()
	}

	index, container, err := buildStore(cfg.Store, storeMetrics)
	if err != nil {
		return fmt.Errorf("failed to initialize backing store: %w", err)
	}

	deps := gwapi.Deps{
		Index:          index,
		Container:      container,
		StoreMetrics:   storeMetrics,
		ActionMetrics:  actionMetrics,
		Account:        cfg.Account,
		RequestTimeout: cfg.Server.RequestTimeout,
	}

	server := gwapi.NewServer(cfg.Server.BindAddress, deps)
	logger.Info("s3gw starting", "bind_address", cfg.Server.BindAddress, "store_backend", cfg.Store.Backend)
	return server.Start(ctx, cfg.Server.ShutdownTimeout)
}

// buildStore constructs the Index/Container pair for cfg.Backend.
func buildStore(cfg gwconfig.StoreConfig, metrics gwmetrics.StoreMetrics) (gwstore.Index, gwstore.Container, error) {
	switch cfg.Backend {
	case "memory":
		return gwstore.NewMemoryIndex(), gwstore.NewMemoryContainer(), nil
	case "file":
		container, err := gwstore.NewFileContainer(cfg.ContainerDir, metrics)
		if err != nil {
			return nil, nil, err
		}
		return gwstore.NewMemoryIndex(), container, nil
	case "badger+file":
		index, err := gwstore.NewBadgerIndex(cfg.IndexDir, metrics)
		if err != nil {
			return nil, nil, err
		}
		container, err := gwstore.NewFileContainer(cfg.ContainerDir, metrics)
		if err != nil {
			return nil, nil, err
		}
		return index, container, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
