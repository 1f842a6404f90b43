package lookup

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"recognizer/internal/library"
	"recognizer/internal/services"
)

type openLibraryBook struct {
	Title       string              `json:"title"`
	Subtitle    string              `json:"subtitle"`
	URL         string              `json:"url"`
	PublishDate string              `json:"publish_date"`
	Pages       int                 `json:"number_of_pages"`
	Authors     []openLibraryNamed  `json:"authors"`
	Publishers  []openLibraryNamed  `json:"publishers"`
	Identifiers map[string][]string `json:"identifiers"`
	Excerpts    []openLibraryText   `json:"excerpts"`
}

type openLibraryNamed struct {
	Name string `json:"name"`
}

type openLibraryText struct {
	Text string `json:"text"`
}

// NormalizeISBNs splits a value holding one or more ISBNs and strips hyphens
// and spaces. Only 10 and 13 character candidates are kept, in input order.
func NormalizeISBNs(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';' || r == '/' || unicode.IsSpace(r)
	})
	seen := map[string]struct{}{}
	var out []string
	for _, field := range fields {
		var b strings.Builder
		for _, r := range field {
			switch {
			case unicode.IsDigit(r):
				b.WriteRune(r)
			case r == 'x' || r == 'X':
				b.WriteRune('X')
			}
		}
		isbn := b.String()
		if len(isbn) != 10 && len(isbn) != 13 {
			continue
		}
		if _, dup := seen[isbn]; dup {
			continue
		}
		seen[isbn] = struct{}{}
		out = append(out, isbn)
	}
	return out
}

// LookupISBN resolves one or more ISBNs to book items, in the order given.
// An empty slice means no record matched.
func (c *Client) LookupISBN(ctx context.Context, isbn string) ([]*library.Item, error) {
	isbns := NormalizeISBNs(isbn)
	if len(isbns) == 0 {
		return nil, services.Wrap(services.ErrValidation, "lookup", "isbn", fmt.Sprintf("invalid ISBN %q", isbn), nil)
	}
	keys := make([]string, 0, len(isbns))
	for _, value := range isbns {
		keys = append(keys, "ISBN:"+value)
	}
	params := url.Values{}
	params.Set("bibkeys", strings.Join(keys, ","))
	params.Set("format", "json")
	params.Set("jscmd", "data")
	endpoint := c.openLibraryURL + "/api/books?" + params.Encode()

	var payload map[string]openLibraryBook
	if err := c.getJSON(ctx, "isbn", endpoint, &payload); err != nil {
		return nil, err
	}

	items := make([]*library.Item, 0, len(payload))
	for i, key := range keys {
		book, ok := payload[key]
		if !ok || strings.TrimSpace(book.Title) == "" {
			continue
		}
		items = append(items, c.openLibraryItem(book, isbns[i]))
	}
	return items, nil
}

func (c *Client) openLibraryItem(book openLibraryBook, isbn string) *library.Item {
	item := library.NewItem(library.TypeBook, c.libraryID)
	title := book.Title
	if book.Subtitle != "" {
		title += ": " + book.Subtitle
	}
	item.SetField(library.FieldTitle, title)
	item.SetField(library.FieldISBN, isbn)
	item.SetField(library.FieldDate, book.PublishDate)
	item.SetField(library.FieldURL, book.URL)
	if len(book.Publishers) > 0 {
		item.SetField(library.FieldPublisher, book.Publishers[0].Name)
	}
	if len(book.Excerpts) > 0 {
		item.SetField(library.FieldAbstract, book.Excerpts[0].Text)
	}
	for _, author := range book.Authors {
		item.Creators = append(item.Creators, SplitName(author.Name))
	}
	return item
}

// SplitName turns "Given Middle Family" or "Family, Given" into an author creator.
func SplitName(name string) library.Creator {
	name = strings.Join(strings.Fields(name), " ")
	if family, given, ok := strings.Cut(name, ","); ok {
		return library.Creator{FirstName: strings.TrimSpace(given), LastName: strings.TrimSpace(family), CreatorType: library.CreatorAuthor}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return library.Creator{LastName: name, CreatorType: library.CreatorAuthor}
	}
	return library.Creator{FirstName: name[:idx], LastName: name[idx+1:], CreatorType: library.CreatorAuthor}
}
