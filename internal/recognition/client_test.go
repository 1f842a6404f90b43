package recognition_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recognizer/internal/extract"
	"recognizer/internal/recognition"
	"recognizer/internal/services"
)

func sampleDoc() *extract.Document {
	return &extract.Document{Pages: []extract.Page{{Number: 1, Text: "Attention Is All You Need"}}}
}

func newClient(t *testing.T, handler http.HandlerFunc) *recognition.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := recognition.New(srv.URL+"/recognize", 2*time.Second, recognition.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestRecognizePostsJSONAndDecodesResult(t *testing.T) {
	var got recognition.Request
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("expected no credentials")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"type":"journal-article","doi":"10.5555/abc","title":" Attention ","year":2017,
			"authors":[{"firstName":"Ashish","lastName":"Vaswani"}],"container":"NeurIPS"}`))
	})

	ctx := services.WithRequestID(context.Background(), "req-1")
	result, err := client.Recognize(ctx, "/library/storage/paper.pdf", sampleDoc())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got.FileName != "paper.pdf" || got.RequestID != "req-1" || len(got.Pages) != 1 {
		t.Fatalf("unexpected request %#v", got)
	}
	if result.DOI != "10.5555/abc" || result.Title != "Attention" || result.Year != "2017" {
		t.Fatalf("unexpected result %#v", result)
	}
	if len(result.Authors) != 1 || result.Authors[0].LastName != "Vaswani" {
		t.Fatalf("unexpected authors %#v", result.Authors)
	}
}

func TestRecognizeNullMeansNoMatch(t *testing.T) {
	for _, body := range []string{"null", "", "{}"} {
		client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		result, err := client.Recognize(context.Background(), "a.pdf", sampleDoc())
		if err != nil {
			t.Fatalf("body %q: unexpected error %v", body, err)
		}
		if result != nil {
			t.Fatalf("body %q: expected nil result, got %#v", body, result)
		}
	}
}

func TestRecognizeFailuresAreRequestErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"invalid json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("{not json")) }},
		{"schema mismatch", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"title":42}`)) }},
		{"numeric doi", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"doi": 5}`)) }},
		{"wrong top-level type", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`["x"]`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, tt.handler)
			_, err := client.Recognize(context.Background(), "a.pdf", sampleDoc())
			if !errors.Is(err, services.ErrTransient) {
				t.Fatalf("expected transient request error, got %v", err)
			}
			if _, ok := services.AlertKey(err); ok {
				t.Fatal("request errors must not carry an alert key")
			}
		})
	}
}

func TestRecognizeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := recognition.New(url, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Recognize(context.Background(), "a.pdf", sampleDoc()); !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestNewRequiresEndpoint(t *testing.T) {
	if _, err := recognition.New("  ", 0); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}

func TestResultIsBookChapter(t *testing.T) {
	r := &recognition.Result{Type: "Book-Chapter", Title: "x"}
	if !r.IsBookChapter() {
		t.Fatal("expected book chapter hint to match case-insensitively")
	}
	var nilResult *recognition.Result
	if !nilResult.IsEmpty() || nilResult.IsBookChapter() {
		t.Fatal("nil result should be empty and not a chapter")
	}
}
