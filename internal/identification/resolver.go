package identification

import (
	"context"
	"log/slog"
	"strings"

	"recognizer/internal/library"
	"recognizer/internal/logging"
	"recognizer/internal/lookup"
	"recognizer/internal/recognition"
	"recognizer/internal/services"
)

// CatalogMarker is stamped into libraryCatalog on items built from the
// recognition candidate itself.
const CatalogMarker = "Recognizer"

// Resolver maps recognition candidates to unsaved library items.
type Resolver struct {
	lookup    lookup.Lookup
	libraryID int64
	logger    *slog.Logger
}

// NewResolver creates a resolver that creates items in libraryID.
func NewResolver(l lookup.Lookup, libraryID int64, logger *slog.Logger) *Resolver {
	return &Resolver{
		lookup:    l,
		libraryID: libraryID,
		logger:    logging.NewComponentLogger(logger, "identification"),
	}
}

// Resolve returns an unsaved item for res, or nil when nothing usable was
// found. Only context cancellation is reported as an error.
//
// A DOI or ISBN whose lookup fails falls through to the title branch, which
// yields nil when the candidate carries no title.
func (r *Resolver) Resolve(ctx context.Context, res *recognition.Result) (*library.Item, error) {
	if res == nil {
		return nil, nil
	}
	logger := logging.WithContext(ctx, r.logger)

	switch {
	case res.DOI != "":
		item, err := r.lookup.LookupDOI(ctx, res.DOI)
		if err == nil && item != nil {
			item.ItemType = library.TypeJournalArticle
			r.finish(item, res)
			logger.Info("resolved by DOI",
				logging.String("doi", res.DOI),
				logging.String("title", item.Title()),
			)
			return item, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logFallthrough(logger, "doi", res.DOI, err)
	case res.ISBN != "":
		items, err := r.lookup.LookupISBN(ctx, res.ISBN)
		if err == nil && len(items) > 0 {
			item := items[0]
			item.ItemType = library.TypeBook
			r.finish(item, res)
			logger.Info("resolved by ISBN",
				logging.String("isbn", res.ISBN),
				logging.String("title", item.Title()),
				logging.Int("matches", len(items)),
			)
			return item, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logFallthrough(logger, "isbn", res.ISBN, err)
	}

	if strings.TrimSpace(res.Title) == "" {
		return nil, nil
	}
	return r.fromCandidate(res), nil
}

// finish sets the library and backfills the abstract from the candidate.
func (r *Resolver) finish(item *library.Item, res *recognition.Result) {
	item.LibraryID = r.libraryID
	if item.Field(library.FieldAbstract) == "" {
		item.SetField(library.FieldAbstract, res.Abstract)
	}
}

func (r *Resolver) logFallthrough(logger *slog.Logger, kind, value string, err error) {
	reason := "no records returned"
	hint := "verify the identifier printed in the document"
	if err != nil {
		reason = err.Error()
		hint = services.ErrorHint(err)
	}
	logging.WarnWithContext(logger, "identifier lookup failed; falling back to title", "identifier_lookup_failed",
		logging.String("identifier_type", kind),
		logging.String(kind, value),
		logging.String("reason", reason),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, "item built from recognized title if one exists"),
	)
}

func (r *Resolver) fromCandidate(res *recognition.Result) *library.Item {
	itemType := library.TypeJournalArticle
	if res.IsBookChapter() {
		itemType = library.TypeBookSection
	}
	item := library.NewItem(itemType, r.libraryID)
	item.SetField(library.FieldTitle, res.Title)
	for _, author := range res.Authors {
		if strings.TrimSpace(author.FirstName+author.LastName) == "" {
			continue
		}
		item.Creators = append(item.Creators, library.Creator{
			FirstName:   strings.TrimSpace(author.FirstName),
			LastName:    strings.TrimSpace(author.LastName),
			CreatorType: library.CreatorAuthor,
		})
	}
	item.SetField(library.FieldAbstract, res.Abstract)
	item.SetField(library.FieldDate, res.Year)
	item.SetField(library.FieldPages, res.Pages)
	item.SetField(library.FieldVolume, res.Volume)
	item.SetField(library.FieldURL, res.URL)

	if itemType == library.TypeJournalArticle {
		item.SetField(library.FieldIssue, res.Issue)
		item.SetField(library.FieldISSN, res.ISSN)
		item.SetField(library.FieldPublicationTitle, res.Container)
	} else {
		item.SetField(library.FieldBookTitle, res.Container)
		item.SetField(library.FieldPublisher, res.Publisher)
	}
	item.SetField(library.FieldLibraryCatalog, CatalogMarker)
	return item
}
