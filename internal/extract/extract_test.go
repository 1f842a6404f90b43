package extract_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"recognizer/internal/extract"
	"recognizer/internal/services"
)

type fakeRunner struct {
	output  string
	stderr  string
	err     error
	args    []string
	outPath string
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	f.args = args
	f.outPath = args[len(args)-1]
	if f.err != nil {
		return nil, []byte(f.stderr), f.err
	}
	if err := os.WriteFile(f.outPath, []byte(f.output), 0o644); err != nil {
		return nil, nil, err
	}
	return nil, nil, nil
}

func TestExtractSplitsPagesAndRemovesTempOutput(t *testing.T) {
	runner := &fakeRunner{output: "Title page\n\fSecond page\n\f\f"}
	p := extract.NewPdftotext("pdftotext", 0, extract.WithRunner(runner))

	doc, err := p.Extract(context.Background(), "/tmp/doc.pdf", 5)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("expected 3 pages, got %d: %#v", len(doc.Pages), doc.Pages)
	}
	if doc.Pages[0].Text != "Title page" || doc.Pages[1].Number != 2 {
		t.Fatalf("unexpected pages %#v", doc.Pages)
	}
	if doc.IsEmpty() {
		t.Fatal("document with text reported empty")
	}
	if !slices.Contains(runner.args, "-l") || runner.args[slices.Index(runner.args, "-l")+1] != "5" {
		t.Fatalf("expected page limit argument, got %v", runner.args)
	}
	if _, err := os.Stat(filepath.Dir(runner.outPath)); !os.IsNotExist(err) {
		t.Fatalf("expected temp output dir removed, stat err=%v", err)
	}
}

func TestExtractFailureWrapsExternalToolAndCleansUp(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), stderr: "Syntax Error: Couldn't read xref table"}
	p := extract.NewPdftotext("pdftotext", 0, extract.WithRunner(runner))

	_, err := p.Extract(context.Background(), "/tmp/broken.pdf", 5)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "xref") {
		t.Fatalf("expected stderr detail in error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Dir(runner.outPath)); !os.IsNotExist(statErr) {
		t.Fatalf("expected temp output dir removed after failure, stat err=%v", statErr)
	}
}

func TestParsePagesLimitsAndNormalizes(t *testing.T) {
	// "e" followed by a combining acute accent composes to a single rune.
	raw := "Cafe\u0301\f2\f3\f4\f5\f6\f"
	doc := extract.ParsePages(raw, 5)
	if len(doc.Pages) != 5 {
		t.Fatalf("expected 5 pages, got %d", len(doc.Pages))
	}
	if doc.Pages[0].Text != "Caf\u00e9" {
		t.Fatalf("expected NFC text, got %q", doc.Pages[0].Text)
	}
}

func TestDocumentIsEmpty(t *testing.T) {
	empty := extract.ParsePages(" \n\f\n\f", 5)
	if !empty.IsEmpty() {
		t.Fatalf("expected whitespace-only pages to be empty: %#v", empty.Pages)
	}
	var nilDoc *extract.Document
	if !nilDoc.IsEmpty() {
		t.Fatal("expected nil document to be empty")
	}
}
