package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"recognizer/internal/config"
)

// Store manages library persistence backed by SQLite.
type Store struct {
	db        *sql.DB
	path      string
	libraryID int64
	ready     chan struct{}
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the library database at cfg.Library.DBPath.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Library.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:        db,
		path:      cfg.Library.DBPath,
		libraryID: cfg.Library.LibraryID,
		ready:     make(chan struct{}),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	close(store.ready)

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// LibraryID is the library new items are created in.
func (s *Store) LibraryID() int64 { return s.libraryID }

// Ready is closed once the schema has been verified or created.
func (s *Store) Ready() <-chan struct{} { return s.ready }

func (s *Store) ops() ops { return ops{q: s.db, libraryID: s.libraryID} }

// Get returns the item with id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*Item, error) {
	return s.ops().get(ensureContext(ctx), id)
}

// List returns every item ordered by id.
func (s *Store) List(ctx context.Context) ([]*Item, error) {
	return s.ops().list(ensureContext(ctx), "")
}

// ListRecognizable returns top-level PDF attachments.
func (s *Store) ListRecognizable(ctx context.Context) ([]*Item, error) {
	return s.ops().list(ensureContext(ctx),
		"WHERE item_type = '"+TypeAttachment+"' AND content_type = '"+ContentTypePDF+"' AND parent_id IS NULL")
}

// Children returns the items whose parent is id.
func (s *Store) Children(ctx context.Context, id int64) ([]*Item, error) {
	return s.ops().children(ensureContext(ctx), id)
}

// CollectionsOf returns the collection ids containing item id.
func (s *Store) CollectionsOf(ctx context.Context, id int64) ([]int64, error) {
	return s.ops().collectionsOf(ensureContext(ctx), id)
}

// EnsureCollection returns the collection named name, creating it if needed.
func (s *Store) EnsureCollection(ctx context.Context, name string) (*Collection, error) {
	var coll *Collection
	err := s.InTx(ctx, func(tx *Tx) error {
		var err error
		coll, err = tx.ensureCollection(ctx, name)
		return err
	})
	return coll, err
}

// ListCollections returns all collections ordered by name.
func (s *Store) ListCollections(ctx context.Context) ([]Collection, error) {
	return s.ops().listCollections(ensureContext(ctx))
}

// Insert saves a new item with its fields and creators in one transaction.
func (s *Store) Insert(ctx context.Context, item *Item) error {
	return s.InTx(ctx, func(tx *Tx) error {
		return tx.Insert(ctx, item)
	})
}

// SetField updates a single field on a saved item.
func (s *Store) SetField(ctx context.Context, id int64, field, value string) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		return s.ops().setField(ctx, id, field, value)
	})
}
