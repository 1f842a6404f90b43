package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"recognizer/internal/identification"
	"recognizer/internal/logging"
	"recognizer/internal/messages"
	"recognizer/internal/queue"
)

// DefaultOfflineBackoff is how long the loop sleeps between connectivity checks.
const DefaultOfflineBackoff = 60 * time.Second

// Manager runs the single recognition worker.
type Manager struct {
	table     RowTable
	processor Processor
	docs      Documents
	conn      Connectivity
	ready     <-chan struct{}
	msgs      *messages.Localizer
	backoff   time.Duration
	base      context.Context
	logger    *slog.Logger

	slot *semaphore.Weighted

	mu        sync.RWMutex
	done      chan struct{}
	running   bool
	online    bool
	lastErr   error
	lastID    int64
	processed int
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithConnectivity sets the reachability check. Without one the service is
// assumed reachable.
func WithConnectivity(conn Connectivity) ManagerOption {
	return func(m *Manager) { m.conn = conn }
}

// WithReady sets the startup precondition. The loop blocks until ready is
// closed.
func WithReady(ready <-chan struct{}) ManagerOption {
	return func(m *Manager) { m.ready = ready }
}

// WithOfflineBackoff overrides DefaultOfflineBackoff.
func WithOfflineBackoff(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.backoff = d
		}
	}
}

// WithMessages sets the localizer used for row messages.
func WithMessages(l *messages.Localizer) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.msgs = l
		}
	}
}

// WithDocuments sets the library used to look up display names on Enqueue.
func WithDocuments(docs Documents) ManagerOption {
	return func(m *Manager) { m.docs = docs }
}

// WithBaseContext sets the context loops started by Enqueue run under.
func WithBaseContext(ctx context.Context) ManagerOption {
	return func(m *Manager) {
		if ctx != nil {
			m.base = ctx
		}
	}
}

// NewManager constructs a manager over table and processor.
func NewManager(table RowTable, processor Processor, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		table:     table,
		processor: processor,
		msgs:      messages.New(""),
		backoff:   DefaultOfflineBackoff,
		base:      context.Background(),
		logger:    logging.NewComponentLogger(logger, "workflow"),
		slot:      semaphore.NewWeighted(1),
		online:    true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enqueue adds rows for ids, named after their library titles, and starts
// the worker. It returns how many rows were added.
func (m *Manager) Enqueue(ctx context.Context, ids []int64) int {
	entries := make([]queue.Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, queue.Entry{ID: id, DisplayName: m.displayName(ctx, id)})
	}
	added := m.table.EnqueueMany(entries)
	if added > 0 {
		m.logger.Info("documents enqueued",
			logging.Int("requested", len(ids)),
			logging.Int("added", added),
			logging.String(logging.FieldEventType, "queue_enqueue"),
		)
	}
	m.Start(m.base)
	return added
}

func (m *Manager) displayName(ctx context.Context, id int64) string {
	fallback := fmt.Sprintf("Item #%d", id)
	if m.docs == nil {
		return fallback
	}
	item, err := m.docs.Get(ctx, id)
	if err != nil || item == nil {
		return fallback
	}
	if title := strings.TrimSpace(item.Title()); title != "" {
		return title
	}
	if item.Path != "" {
		return identification.DeriveTitle(item.Path)
	}
	return fallback
}

// Start launches the worker loop unless one is already running. It returns
// true when this call started the loop.
func (m *Manager) Start(ctx context.Context) bool {
	if !m.slot.TryAcquire(1) {
		return false
	}
	done := make(chan struct{})
	m.mu.Lock()
	m.done = done
	m.running = true
	m.mu.Unlock()

	go func() {
		defer close(done)
		m.run(ctx)
	}()
	return true
}

// Wait blocks until the current loop, if any, exits.
func (m *Manager) Wait() {
	m.mu.RLock()
	done := m.done
	m.mu.RUnlock()
	if done != nil {
		<-done
	}
}

// Running reports whether a loop holds the worker slot.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}
