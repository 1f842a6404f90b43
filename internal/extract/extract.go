// Package extract turns a PDF into per-page text by running pdftotext as a
// one-shot subprocess. Nothing here parses PDF structure in-process.
package extract

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"recognizer/internal/logging"
	"recognizer/internal/services"
)

// DefaultPageLimit is how many leading pages are read for recognition.
const DefaultPageLimit = 5

// Page is the text of one PDF page. Text may be empty for scanned pages.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Document is the extracted text of the leading pages of a PDF.
type Document struct {
	Pages []Page `json:"pages"`
}

// IsEmpty reports whether no page carries any non-whitespace text.
func (d *Document) IsEmpty() bool {
	if d == nil {
		return true
	}
	for _, page := range d.Pages {
		if strings.TrimSpace(page.Text) != "" {
			return false
		}
	}
	return true
}

// Extractor is the contract the recognition pipeline depends on.
type Extractor interface {
	Extract(ctx context.Context, path string, maxPages int) (*Document, error)
}

// Pdftotext extracts text with the poppler pdftotext binary.
type Pdftotext struct {
	binary  string
	timeout time.Duration
	runner  Runner
	logger  *slog.Logger
}

// Option customizes a Pdftotext extractor.
type Option func(*Pdftotext)

// WithRunner overrides command execution (tests).
func WithRunner(r Runner) Option {
	return func(p *Pdftotext) {
		if r != nil {
			p.runner = r
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pdftotext) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPdftotext builds an extractor for binary. A zero timeout disables the deadline.
func NewPdftotext(binary string, timeout time.Duration, opts ...Option) *Pdftotext {
	if strings.TrimSpace(binary) == "" {
		binary = "pdftotext"
	}
	p := &Pdftotext{binary: binary, timeout: timeout, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		p.runner = ExecRunner{Logger: p.logger}
	}
	return p
}

var _ Extractor = (*Pdftotext)(nil)

// Extract reads up to maxPages leading pages of the PDF at path. The temporary
// output directory is removed whether extraction succeeds or fails.
func (p *Pdftotext) Extract(ctx context.Context, path string, maxPages int) (*Document, error) {
	if maxPages <= 0 {
		maxPages = DefaultPageLimit
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	tmpDir, err := os.MkdirTemp("", "recognizer-extract-*")
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "extract", "temp dir", "create output directory", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			logging.WarnWithContext(p.logger, "failed to remove extractor output", "extract_cleanup_failed",
				logging.String("tmp_dir", tmpDir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "temporary text output left on disk"),
			)
		}
	}()

	outPath := filepath.Join(tmpDir, "out.txt")
	args := []string{
		"-enc", "UTF-8",
		"-eol", "unix",
		"-f", "1",
		"-l", strconv.Itoa(maxPages),
		path,
		outPath,
	}
	_, stderr, err := p.runner.Run(ctx, p.binary, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "extract", p.binary, "timed out", err)
		}
		detail := strings.TrimSpace(string(stderr))
		return nil, services.Wrap(services.ErrExternalTool, "extract", p.binary, detail, err)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "extract", p.binary, "read output", err)
	}
	doc := ParsePages(string(raw), maxPages)
	p.logger.Debug("text extracted",
		logging.String("source_path", path),
		logging.Int("page_count", len(doc.Pages)),
	)
	return doc, nil
}

// ParsePages splits pdftotext output on form feeds. pdftotext terminates every
// page with \f, so a trailing empty segment is not a page. Text is NFC-normalized.
func ParsePages(raw string, maxPages int) *Document {
	segments := strings.Split(raw, "\f")
	if len(segments) > 0 && strings.TrimSpace(segments[len(segments)-1]) == "" {
		segments = segments[:len(segments)-1]
	}
	if maxPages > 0 && len(segments) > maxPages {
		segments = segments[:maxPages]
	}
	doc := &Document{Pages: make([]Page, 0, len(segments))}
	for i, segment := range segments {
		doc.Pages = append(doc.Pages, Page{
			Number: i + 1,
			Text:   norm.NFC.String(strings.TrimRight(segment, "\n")),
		})
	}
	return doc
}
