package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"recognizer/internal/library"
	"recognizer/internal/logging"
	"recognizer/internal/services"
)

// Organizer saves resolved items and parents their source attachment.
type Organizer struct {
	store  *library.Store
	logger *slog.Logger
}

// NewOrganizer constructs an organizer bound to store.
func NewOrganizer(store *library.Store, logger *slog.Logger) *Organizer {
	return &Organizer{store: store, logger: logging.NewComponentLogger(logger, "organizer")}
}

// Materialize saves item, copies every collection of source onto it, and makes
// item the parent of source. Nothing is persisted when any step fails, and
// item is left unsaved.
func (o *Organizer) Materialize(ctx context.Context, source, item *library.Item) error {
	if source == nil || !source.IsSaved() {
		return services.Wrap(services.ErrValidation, "organizer", "materialize", "source attachment is not saved", nil)
	}
	if item == nil {
		return services.Wrap(services.ErrValidation, "organizer", "materialize", "nothing to save", nil)
	}
	if item.IsSaved() {
		return services.Wrap(services.ErrValidation, "organizer", "materialize",
			fmt.Sprintf("item %d is already saved", item.ID), nil)
	}
	logger := logging.WithContext(ctx, o.logger)

	var copied int
	err := o.store.InTx(ctx, func(tx *library.Tx) error {
		// Re-read inside the transaction; the attachment may have been
		// filed or removed since it was queued.
		current, err := tx.Get(ctx, source.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return services.Wrap(services.ErrNotFound, "organizer", "load source",
				fmt.Sprintf("item %d no longer exists", source.ID), nil)
		}
		if !current.IsTopLevel() {
			return services.Wrap(services.ErrValidation, "organizer", "load source",
				fmt.Sprintf("item %d already has a parent", source.ID), nil)
		}

		item.ID = 0
		if err := tx.Insert(ctx, item); err != nil {
			return err
		}
		collections, err := tx.CollectionsOf(ctx, source.ID)
		if err != nil {
			return err
		}
		for _, cid := range collections {
			if err := tx.AddToCollection(ctx, cid, item.ID); err != nil {
				return err
			}
		}
		copied = len(collections)
		return tx.SetParent(ctx, source.ID, item.ID)
	})
	if err != nil {
		item.ID = 0
		item.Key = ""
		if !errors.Is(err, services.ErrNotFound) && !errors.Is(err, services.ErrValidation) {
			err = services.Wrap(services.ErrTransient, "organizer", "materialize", "library transaction failed", err)
		}
		return err
	}

	source.ParentID = item.ID
	logger.Info("attachment filed under recognized item",
		logging.Int64("parent_id", item.ID),
		logging.String("item_type", item.ItemType),
		logging.String("title", item.Title()),
		logging.Int("collections_copied", copied),
	)
	return nil
}
