package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gofrs/flock"

	"recognizer/internal/api"
	"recognizer/internal/config"
	"recognizer/internal/logging"
	"recognizer/internal/netstate"
	"recognizer/internal/queue"
)

// ErrAlreadyRunning is returned when another instance holds the lock.
var ErrAlreadyRunning = errors.New("another recognizer instance is already running")

// Daemon coordinates the API server and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	table   *queue.Table
	worker  api.Worker
	watcher *netstate.Watcher
	api     *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	LockFilePath string
	APIAddress   string
}

// New constructs a daemon. watcher may be nil.
func New(cfg *config.Config, table *queue.Table, worker api.Worker, watcher *netstate.Watcher, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || table == nil || worker == nil {
		return nil, errors.New("daemon requires config, row table, and worker")
	}
	logger = logging.NewComponentLogger(logger, "daemon")
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		table:    table,
		worker:   worker,
		watcher:  watcher,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg.Paths.APIBind, cfg.Paths.APIToken, api.NewQueueService(table, worker), cfg.Library.DBPath, logger)
	return d, nil
}

// Start acquires the lock, then starts the network watcher and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(d.cfg.Paths.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.watcher.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start network watcher: %w", err)
	}
	if err := d.api.start(runCtx); err != nil {
		d.watcher.Stop()
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.observeRows()

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("recognizer daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.api.address()),
		logging.String(logging.FieldEventType, "daemon_start"),
	)
	return nil
}

// Stop shuts down the API server and releases the lock. Rows still queued are
// dropped with the process.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.api.stop()
	d.watcher.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_unlock_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if the next start reports a running instance"),
		)
	}
	d.running.Store(false)
	d.logger.Info("recognizer daemon stopped", logging.String(logging.FieldEventType, "daemon_stop"))
}

// Status returns daemon runtime information.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		LockFilePath: d.lockPath,
		APIAddress:   d.api.address(),
	}
}

// Address returns the bound API address once started.
func (d *Daemon) Address() string {
	return d.api.address()
}

// observeRows logs queue transitions. The daemon is the only observer of the
// table in server mode, so it claims the nonEmpty/empty/rowUpdated slots.
func (d *Daemon) observeRows() {
	d.table.On(queue.EventNonEmpty, func(queue.Notification) {
		d.logger.Info("queue became non-empty", logging.String(logging.FieldEventType, "queue_non_empty"))
	})
	d.table.On(queue.EventEmpty, func(queue.Notification) {
		d.logger.Info("queue cancelled", logging.String(logging.FieldEventType, "queue_cancelled"))
	})
	d.table.On(queue.EventRowUpdated, func(n queue.Notification) {
		d.logger.Debug("row updated",
			logging.ItemID(n.Row.ID),
			logging.Status(string(n.Row.Status)),
			logging.String("message", n.Row.Message),
		)
	})
}
