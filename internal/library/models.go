package library

import (
	"strings"
	"time"
)

// Item types.
const (
	TypeAttachment     = "attachment"
	TypeJournalArticle = "journalArticle"
	TypeBook           = "book"
	TypeBookSection    = "bookSection"
)

// Field names stored in item_fields.
const (
	FieldTitle            = "title"
	FieldAbstract         = "abstractNote"
	FieldDate             = "date"
	FieldPages            = "pages"
	FieldVolume           = "volume"
	FieldIssue            = "issue"
	FieldURL              = "url"
	FieldISSN             = "ISSN"
	FieldISBN             = "ISBN"
	FieldDOI              = "DOI"
	FieldPublicationTitle = "publicationTitle"
	FieldBookTitle        = "bookTitle"
	FieldPublisher        = "publisher"
	FieldLibraryCatalog   = "libraryCatalog"
)

// ContentTypePDF marks attachments eligible for recognition.
const ContentTypePDF = "application/pdf"

// CreatorAuthor is the default creator role.
const CreatorAuthor = "author"

// Creator is a person credited on an item.
type Creator struct {
	FirstName   string
	LastName    string
	CreatorType string
}

// Name renders "First Last" or whichever half is present.
func (c Creator) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Item is a library record. ParentID is zero for top-level items.
type Item struct {
	ID          int64
	Key         string
	LibraryID   int64
	ItemType    string
	ParentID    int64
	ContentType string
	Path        string
	Fields      map[string]string
	Creators    []Creator
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewItem returns an unsaved item of the given type.
func NewItem(itemType string, libraryID int64) *Item {
	return &Item{ItemType: itemType, LibraryID: libraryID, Fields: map[string]string{}}
}

// Field returns the value of a field or "" when unset.
func (i *Item) Field(name string) string {
	if i == nil || i.Fields == nil {
		return ""
	}
	return i.Fields[name]
}

// SetField sets a field; blank values remove it.
func (i *Item) SetField(name, value string) {
	if i.Fields == nil {
		i.Fields = map[string]string{}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		delete(i.Fields, name)
		return
	}
	i.Fields[name] = value
}

// Title is shorthand for the title field.
func (i *Item) Title() string { return i.Field(FieldTitle) }

// IsTopLevel reports whether the item has no parent.
func (i *Item) IsTopLevel() bool { return i != nil && i.ParentID == 0 }

// IsSaved reports whether the item has been persisted.
func (i *Item) IsSaved() bool { return i != nil && i.ID != 0 }

// IsRecognizable reports whether the item is a top-level PDF attachment.
func (i *Item) IsRecognizable() bool {
	return i != nil &&
		i.ItemType == TypeAttachment &&
		i.ContentType == ContentTypePDF &&
		i.IsTopLevel()
}

// Collection groups items.
type Collection struct {
	ID        int64
	Key       string
	LibraryID int64
	Name      string
}
