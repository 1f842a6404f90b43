package lookup_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recognizer/internal/library"
	"recognizer/internal/lookup"
	"recognizer/internal/services"
)

const crossrefBody = `{"status":"ok","message":{
  "DOI":"10.1038/nature14539","type":"journal-article",
  "title":["Deep learning"],"container-title":["Nature"],
  "author":[{"given":"Yann","family":"LeCun"},{"name":"Consortium"}],
  "abstract":"<jats:p>Deep learning allows &amp; enables.</jats:p>",
  "volume":"521","issue":"7553","page":"436-444","ISSN":["0028-0836","1476-4687"],
  "URL":"http://dx.doi.org/10.1038/nature14539","issued":{"date-parts":[[2015,5,27]]}}}`

const openLibraryBody = `{"ISBN:9780262035613":{"title":"Deep Learning","url":"https://openlibrary.org/books/OL1M",
  "publish_date":"2016","authors":[{"name":"Ian Goodfellow"},{"name":"Bengio, Yoshua"}],
  "publishers":[{"name":"MIT Press"}]}}`

func newClient(t *testing.T, handler http.HandlerFunc) *lookup.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := lookup.New(srv.URL, srv.URL, time.Second,
		lookup.WithHTTPClient(srv.Client()),
		lookup.WithMailto("ops@example.test"),
		lookup.WithLibraryID(3),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestLookupDOIBuildsJournalArticle(t *testing.T) {
	var gotPath, gotMailto string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMailto = r.URL.Query().Get("mailto")
		_, _ = w.Write([]byte(crossrefBody))
	})

	item, err := client.LookupDOI(context.Background(), "https://doi.org/10.1038/nature14539.")
	if err != nil {
		t.Fatalf("LookupDOI: %v", err)
	}
	if gotPath != "/works/10.1038/nature14539" || gotMailto != "ops@example.test" {
		t.Fatalf("unexpected request path=%q mailto=%q", gotPath, gotMailto)
	}
	if item.ItemType != library.TypeJournalArticle || item.LibraryID != 3 || item.IsSaved() {
		t.Fatalf("unexpected item %#v", item)
	}
	checks := map[string]string{
		library.FieldTitle:            "Deep learning",
		library.FieldPublicationTitle: "Nature",
		library.FieldDate:             "2015-05-27",
		library.FieldPages:            "436-444",
		library.FieldISSN:             "0028-0836, 1476-4687",
		library.FieldAbstract:         "Deep learning allows & enables.",
		library.FieldDOI:              "10.1038/nature14539",
	}
	for field, want := range checks {
		if got := item.Field(field); got != want {
			t.Fatalf("%s = %q, want %q", field, got, want)
		}
	}
	if len(item.Creators) != 2 || item.Creators[1].LastName != "Consortium" {
		t.Fatalf("unexpected creators %#v", item.Creators)
	}
}

func TestLookupDOINotFound(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	_, err := client.LookupDOI(context.Background(), "10.1000/missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLookupDOIRejectsInvalid(t *testing.T) {
	client := newClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected for an invalid DOI")
	})
	if _, err := client.LookupDOI(context.Background(), "not-a-doi"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLookupISBNReturnsBooksInOrder(t *testing.T) {
	var bibkeys string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/books" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		bibkeys = r.URL.Query().Get("bibkeys")
		_, _ = w.Write([]byte(openLibraryBody))
	})

	items, err := client.LookupISBN(context.Background(), "978-0-262-03561-3, 0000000000")
	if err != nil {
		t.Fatalf("LookupISBN: %v", err)
	}
	if bibkeys != "ISBN:9780262035613,ISBN:0000000000" {
		t.Fatalf("unexpected bibkeys %q", bibkeys)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 match, got %d", len(items))
	}
	book := items[0]
	if book.ItemType != library.TypeBook || book.Field(library.FieldPublisher) != "MIT Press" {
		t.Fatalf("unexpected book %#v", book)
	}
	if book.Creators[1].FirstName != "Yoshua" || book.Creators[1].LastName != "Bengio" {
		t.Fatalf("unexpected creators %#v", book.Creators)
	}
}

func TestLookupISBNEmptyPayload(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	items, err := client.LookupISBN(context.Background(), "0262035618")
	if err != nil {
		t.Fatalf("LookupISBN: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestLookupServerErrorIsTransient(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := client.LookupISBN(context.Background(), "0262035618")
	if !errors.Is(err, services.ErrTransient) || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected transient 503 error, got %v", err)
	}
}

func TestNormalizeHelpers(t *testing.T) {
	if got := lookup.NormalizeDOI("doi:10.1000/ABC-123)"); got != "10.1000/ABC-123" {
		t.Fatalf("NormalizeDOI = %q", got)
	}
	got := lookup.NormalizeISBNs("ISBN 0-306-40615-2; 0306406152 123")
	if len(got) != 1 || got[0] != "0306406152" {
		t.Fatalf("NormalizeISBNs = %v", got)
	}
	if c := lookup.SplitName("Ada"); c.LastName != "Ada" || c.FirstName != "" {
		t.Fatalf("SplitName single = %#v", c)
	}
}
