package api

import (
	"context"

	"recognizer/internal/queue"
	"recognizer/internal/workflow"
)

// RowReader is the read side of the row table.
type RowReader interface {
	ListRows() []queue.Row
	CountTotal() int
	CountProcessed() int
	CancelAll()
}

// Worker enqueues documents and reports progress.
type Worker interface {
	Enqueue(ctx context.Context, ids []int64) int
	Running() bool
	Status() workflow.StatusSummary
}

// QueueService exposes queue operations returning API DTOs.
type QueueService struct {
	rows   RowReader
	worker Worker
}

// NewQueueService constructs a QueueService.
func NewQueueService(rows RowReader, worker Worker) *QueueService {
	if rows == nil {
		return nil
	}
	return &QueueService{rows: rows, worker: worker}
}

// Rows returns all rows, newest first.
func (s *QueueService) Rows() RowsResponse {
	if s == nil {
		return RowsResponse{Rows: []Row{}}
	}
	return RowsResponse{
		Rows:      FromRows(s.rows.ListRows()),
		Total:     s.rows.CountTotal(),
		Processed: s.rows.CountProcessed(),
	}
}

// Status returns the table counts and worker summary.
func (s *QueueService) Status() StatusResponse {
	if s == nil {
		return StatusResponse{}
	}
	resp := StatusResponse{
		Total:     s.rows.CountTotal(),
		Processed: s.rows.CountProcessed(),
	}
	if s.worker != nil {
		resp.Worker = FromStatusSummary(s.worker.Status())
	}
	return resp
}

// Enqueue adds ids and starts the worker.
func (s *QueueService) Enqueue(ctx context.Context, ids []int64) EnqueueResponse {
	resp := EnqueueResponse{Requested: len(ids)}
	if s == nil || s.worker == nil || len(ids) == 0 {
		return resp
	}
	resp.Added = s.worker.Enqueue(ctx, dedupe(ids))
	resp.Started = s.worker.Running()
	return resp
}

// CancelAll clears every row.
func (s *QueueService) CancelAll() CancelResponse {
	if s == nil {
		return CancelResponse{}
	}
	removed := s.rows.CountTotal()
	s.rows.CancelAll()
	return CancelResponse{Removed: removed}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
