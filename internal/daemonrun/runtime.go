package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"recognizer/internal/config"
	"recognizer/internal/extract"
	"recognizer/internal/identification"
	"recognizer/internal/library"
	"recognizer/internal/logging"
	"recognizer/internal/lookup"
	"recognizer/internal/messages"
	"recognizer/internal/netstate"
	"recognizer/internal/organizer"
	"recognizer/internal/queue"
	"recognizer/internal/recognition"
	"recognizer/internal/workflow"
)

// Runtime is the wired object graph shared by the daemon and one-shot
// recognize runs.
type Runtime struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *library.Store
	Table   *queue.Table
	Manager *workflow.Manager
	Watcher *netstate.Watcher
}

// NewRuntime opens the library and builds the recognition pipeline. Loops
// started by the manager run under ctx. The watcher is created but not
// started.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := library.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}

	recognizer, err := recognition.New(cfg.Recognition.ServiceURL, cfg.RecognitionTimeout(),
		recognition.WithLogger(logging.NewComponentLogger(logger, "recognition")))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("recognition client: %w", err)
	}
	lookups, err := lookup.New(cfg.Lookup.CrossrefBaseURL, cfg.Lookup.OpenLibraryBaseURL, cfg.LookupTimeout(),
		lookup.WithMailto(cfg.Lookup.Mailto),
		lookup.WithLibraryID(store.LibraryID()),
		lookup.WithLogger(logging.NewComponentLogger(logger, "lookup")),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("lookup client: %w", err)
	}

	pipeline := workflow.NewPipeline(workflow.PipelineDeps{
		Documents: store,
		Extractor: extract.NewPdftotext(cfg.Extractor.Pdftotext, cfg.ExtractorTimeout(),
			extract.WithLogger(logging.NewComponentLogger(logger, "extract"))),
		Recognizer:   recognizer,
		Resolver:     identification.NewResolver(lookups, store.LibraryID(), logger),
		Materializer: organizer.NewOrganizer(store, logger),
		PageLimit:    cfg.Extractor.PageLimit,
		Logger:       logger,
	})

	var watcher *netstate.Watcher
	if cfg.Workflow.WatchNetworkEvents {
		watcher = netstate.NewWatcher(logger)
	}
	probe := netstate.NewProbe(cfg.Workflow.ConnectivityURL, cfg.ConnectivityTimeout(), nil, logger)

	table := queue.NewTable()
	manager := workflow.NewManager(table, pipeline, logger,
		workflow.WithConnectivity(netstate.NewMonitor(probe, watcher)),
		workflow.WithReady(store.Ready()),
		workflow.WithOfflineBackoff(cfg.OfflineBackoff()),
		workflow.WithMessages(messages.New(cfg.Messages.Language)),
		workflow.WithDocuments(store),
		workflow.WithBaseContext(ctx),
	)

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Table:   table,
		Manager: manager,
		Watcher: watcher,
	}, nil
}

// Close stops the watcher, waits for the worker, and closes the library.
// Callers cancel the runtime context first so the worker can exit.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	r.Watcher.Stop()
	r.Manager.Wait()
	return r.Store.Close()
}
