package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"recognizer/internal/extract"
	"recognizer/internal/library"
	"recognizer/internal/logging"
	"recognizer/internal/recognition"
	"recognizer/internal/services"
)

// Pipeline stage names, used for log context.
const (
	StageLoad        = "load"
	StageExtract     = "extract"
	StageRecognize   = "recognize"
	StageResolve     = "resolve"
	StageMaterialize = "materialize"
)

// Pipeline recognizes one attachment and files it under the resulting item.
type Pipeline struct {
	docs         Documents
	extractor    extract.Extractor
	recognizer   recognition.Recognizer
	resolver     Resolver
	materializer Materializer
	pageLimit    int
	logger       *slog.Logger
}

// PipelineDeps bundles the pipeline collaborators.
type PipelineDeps struct {
	Documents    Documents
	Extractor    extract.Extractor
	Recognizer   recognition.Recognizer
	Resolver     Resolver
	Materializer Materializer
	PageLimit    int
	Logger       *slog.Logger
}

// NewPipeline constructs a pipeline. A non-positive page limit uses
// extract.DefaultPageLimit.
func NewPipeline(deps PipelineDeps) *Pipeline {
	limit := deps.PageLimit
	if limit <= 0 {
		limit = extract.DefaultPageLimit
	}
	return &Pipeline{
		docs:         deps.Documents,
		extractor:    deps.Extractor,
		recognizer:   deps.Recognizer,
		resolver:     deps.Resolver,
		materializer: deps.Materializer,
		pageLimit:    limit,
		logger:       logging.NewComponentLogger(deps.Logger, "pipeline"),
	}
}

// Process runs the whole pipeline for attachment id.
func (p *Pipeline) Process(ctx context.Context, id int64) (*library.Item, error) {
	source, err := p.loadSource(services.WithStage(ctx, StageLoad), id)
	if err != nil {
		return nil, err
	}

	item, err := p.Recognize(ctx, source)
	if err != nil || item == nil {
		return nil, err
	}

	matCtx := services.WithStage(ctx, StageMaterialize)
	if err := p.materializer.Materialize(matCtx, source, item); err != nil {
		return nil, err
	}
	return item, nil
}

// loadSource returns the live attachment, or a fileNotFound alert when it is
// gone, already filed, or its file is missing on disk.
func (p *Pipeline) loadSource(ctx context.Context, id int64) (*library.Item, error) {
	source, err := p.docs.Get(ctx, id)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, StageLoad, "get item", fmt.Sprintf("item %d", id), err)
	}
	if source == nil {
		return nil, services.Alert(services.AlertFileNotFound,
			services.Wrap(services.ErrNotFound, StageLoad, "get item", fmt.Sprintf("item %d does not exist", id), nil))
	}
	if !source.IsTopLevel() {
		return nil, services.Alert(services.AlertFileNotFound,
			services.Wrap(services.ErrValidation, StageLoad, "get item", fmt.Sprintf("item %d already has a parent", id), nil))
	}
	if source.Path == "" {
		return nil, services.Alert(services.AlertFileNotFound,
			services.Wrap(services.ErrNotFound, StageLoad, "stat file", fmt.Sprintf("item %d has no file", id), nil))
	}
	if _, err := os.Stat(source.Path); err != nil {
		return nil, services.Alert(services.AlertFileNotFound,
			services.Wrap(services.ErrNotFound, StageLoad, "stat file", source.Path, err))
	}
	return source, nil
}

// Recognize extracts, queries, and resolves source without saving anything.
func (p *Pipeline) Recognize(ctx context.Context, source *library.Item) (*library.Item, error) {
	extractCtx := services.WithStage(ctx, StageExtract)
	logger := logging.WithContext(extractCtx, p.logger)

	start := time.Now()
	doc, err := p.extractor.Extract(extractCtx, source.Path, p.pageLimit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Alert(services.AlertCouldNotRead, err)
	}
	logger.Debug("text extracted",
		logging.Int("pages", len(doc.Pages)),
		logging.Duration("elapsed", time.Since(start)),
	)
	if doc.IsEmpty() {
		return nil, services.Alert(services.AlertNoOCR,
			services.Wrap(services.ErrValidation, StageExtract, "check text", "no page has extractable text", nil))
	}

	recCtx := services.WithStage(ctx, StageRecognize)
	result, err := p.recognizer.Recognize(recCtx, filepath.Base(source.Path), doc)
	if err != nil {
		return nil, err
	}
	if result.IsEmpty() {
		logging.WithContext(recCtx, p.logger).Info("recognition returned no candidate",
			logging.String(logging.FieldEventType, "recognition_empty"),
		)
		return nil, nil
	}

	return p.resolver.Resolve(services.WithStage(ctx, StageResolve), result)
}
