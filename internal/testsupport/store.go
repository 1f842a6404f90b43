package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"recognizer/internal/config"
	"recognizer/internal/library"
)

// MustOpenLibrary opens a library.Store for tests and registers cleanup.
func MustOpenLibrary(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewPDFAttachment writes a placeholder PDF and saves a top-level attachment for it.
func NewPDFAttachment(t testing.TB, store *library.Store, cfg *config.Config, title string) *library.Item {
	t.Helper()

	item := library.NewItem(library.TypeAttachment, store.LibraryID())
	item.ContentType = library.ContentTypePDF
	item.Path = filepath.Join(cfg.StorageDir(), title+".pdf")
	item.SetField(library.FieldTitle, title)
	WritePDF(t, item.Path)

	if err := store.Insert(context.Background(), item); err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	return item
}
