package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"factflow/internal/api"
	"factflow/internal/config"
	"factflow/internal/logging"
	"factflow/internal/store"
)

// Daemon owns the API server and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	items  *api.ItemService
	server *apiServer

	lockPath string
	lock     *flock.Flock
	running  atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Address      string
	DatabasePath string
	LockFilePath string
	Counts       map[string]int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, engine api.Engine, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || engine == nil {
		return nil, errors.New("daemon requires config, store, and workflow engine")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		items:    api.NewItemService(st, engine),
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.server = srv
	return d, nil
}

// Run acquires the instance lock and serves the API until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	defer d.running.Store(false)

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another factflow server is already running against this data directory")
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(err))
		}
	}()

	if err := d.server.listen(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.server.serve()
	})
	g.Go(func() error {
		<-gctx.Done()
		return d.server.shutdown()
	})

	d.logger.Info("factflow server started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("address", d.server.address()),
		logging.String("lock", d.lockPath),
	)
	err = g.Wait()
	d.logger.Info("factflow server stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
	return err
}

// Address returns the bound listener address once Run has started.
func (d *Daemon) Address() string {
	return d.server.address()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		Address:      d.server.address(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
	}
	if stats, err := d.items.Stats(ctx); err == nil {
		status.Counts = stats.Counts
	} else {
		d.logger.Warn("stats unavailable", logging.Error(err))
	}
	return status
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (store.DatabaseHealth, error) {
	return d.store.CheckHealth(ctx)
}
