package library

import (
	"context"
	"fmt"
)

// Tx is a library transaction. All writes made through it commit or roll back together.
type Tx struct {
	ops
}

// InTx runs fn inside a transaction. A non-nil error from fn rolls everything back.
// The whole transaction is retried when SQLite reports the database as busy.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		sqlTx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = sqlTx.Rollback() }()

		if err := fn(&Tx{ops: ops{q: sqlTx, libraryID: s.libraryID}}); err != nil {
			return err
		}
		if err := sqlTx.Commit(); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

// Get returns the item with id as seen inside the transaction.
func (tx *Tx) Get(ctx context.Context, id int64) (*Item, error) {
	return tx.get(ctx, id)
}

// Insert saves a new item, assigning its ID and Key.
func (tx *Tx) Insert(ctx context.Context, item *Item) error {
	return tx.insert(ctx, item)
}

// CollectionsOf returns the collection ids containing item id.
func (tx *Tx) CollectionsOf(ctx context.Context, id int64) ([]int64, error) {
	return tx.collectionsOf(ctx, id)
}

// AddToCollection adds item id to a collection. Existing membership is a no-op.
func (tx *Tx) AddToCollection(ctx context.Context, collectionID, itemID int64) error {
	return tx.addToCollection(ctx, collectionID, itemID)
}

// SetParent files item id beneath parentID.
func (tx *Tx) SetParent(ctx context.Context, id, parentID int64) error {
	return tx.setParent(ctx, id, parentID)
}

// SetField updates a single field.
func (tx *Tx) SetField(ctx context.Context, id int64, field, value string) error {
	return tx.setField(ctx, id, field, value)
}
