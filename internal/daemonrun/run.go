package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"factflow/internal/config"
	"factflow/internal/daemon"
	"factflow/internal/identity"
	"factflow/internal/logging"
	"factflow/internal/store"
	"factflow/internal/telemetry"
	"factflow/internal/workflow"
)

// Options configures server process runtime behavior.
type Options struct {
	Version string
	// Logger overrides the config-derived logger.
	Logger *slog.Logger
}

// NewEngine wires a workflow engine over st using the configured identity cache.
func NewEngine(cfg *config.Config, st *store.Store, logger *slog.Logger) (*workflow.Engine, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("engine requires config and store")
	}
	resolver := identity.NewCachedResolver(identity.NewStoreResolver(st), cfg.IdentityCacheTTL())
	return workflow.New(st, workflow.Options{
		Resolver: resolver,
		Logger:   logger,
	})
}

// Run starts the factflow API server and blocks until a signal arrives or ctx
// is canceled.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = logging.NewFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	}

	if err := telemetry.Init(signalCtx, cfg, opts.Version); err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", logging.Error(err))
		}
	}()

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return err
	}
	defer st.Close()

	pidPath := filepath.Join(cfg.Paths.DataDir, "factflow.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	engine, err := NewEngine(cfg, st, logger)
	if err != nil {
		return fmt.Errorf("create workflow engine: %w", err)
	}
	d, err := daemon.New(cfg, st, engine, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	logger.Info("factflow server starting",
		logging.String(logging.FieldEventType, "server_starting"),
		logging.String("database", st.Path()),
		logging.String("bind", cfg.Paths.APIBind),
		logging.Bool("auth_enabled", cfg.Paths.APIToken != ""),
		logging.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
	)
	if err := d.Run(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "server stopped with error", "server_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that no other server holds the data directory lock"),
		)
		return err
	}
	logger.Info("factflow server shut down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
