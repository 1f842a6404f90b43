package daemon

import (
	"context"
	"errors"
	"testing"

	"recognizer/internal/logging"
	"recognizer/internal/queue"
	"recognizer/internal/testsupport"
	"recognizer/internal/workflow"
)

type stubWorker struct {
	table   *queue.Table
	running bool
	calls   [][]int64
}

func (w *stubWorker) Enqueue(_ context.Context, ids []int64) int {
	w.calls = append(w.calls, append([]int64(nil), ids...))
	added := 0
	for _, id := range ids {
		if w.table.Enqueue(id, "Item") {
			added++
		}
	}
	w.running = added > 0
	return added
}

func (w *stubWorker) Running() bool { return w.running }

func (w *stubWorker) Status() workflow.StatusSummary {
	return workflow.StatusSummary{Running: w.running, Pending: w.table.PendingCount(), Online: true}
}

func newTestDaemon(t *testing.T) (*Daemon, *queue.Table) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	table := queue.NewTable()
	d, err := New(cfg, table, &stubWorker{table: table}, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, table
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newTestDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	status := d.Status()
	if !status.Running {
		t.Fatal("expected running status")
	}
	if status.APIAddress == "" || status.APIAddress == "127.0.0.1:0" {
		t.Fatalf("expected bound address, got %q", status.APIAddress)
	}
	d.Stop()
	if d.Status().Running {
		t.Fatal("expected stopped status")
	}
	d.Stop()
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tableA := queue.NewTable()
	first, err := New(cfg, tableA, &stubWorker{table: tableA}, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New first: %v", err)
	}
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start first: %v", err)
	}
	defer first.Stop()

	tableB := queue.NewTable()
	second, err := New(cfg, tableB, &stubWorker{table: tableB}, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	if err := second.Start(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := New(cfg, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing table and worker")
	}
}
