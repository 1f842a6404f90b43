package api

import (
	"recognizer/internal/queue"
	"recognizer/internal/workflow"
)

// Row describes a queue row in a transport-friendly format.
type Row struct {
	ID          int64  `json:"id" yaml:"id"`
	Status      string `json:"status" yaml:"status"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Message     string `json:"message,omitempty" yaml:"message,omitempty"`
}

// RowsResponse is returned by GET /api/rows.
type RowsResponse struct {
	Rows      []Row `json:"rows" yaml:"rows"`
	Total     int   `json:"total" yaml:"total"`
	Processed int   `json:"processed" yaml:"processed"`
}

// WorkerStatus summarizes the recognition worker.
type WorkerStatus struct {
	Running   bool   `json:"running" yaml:"running"`
	Online    bool   `json:"online" yaml:"online"`
	Pending   int    `json:"pending" yaml:"pending"`
	Processed int    `json:"processed" yaml:"processed"`
	LastID    int64  `json:"lastId,omitempty" yaml:"lastId,omitempty"`
	LastError string `json:"lastError,omitempty" yaml:"lastError,omitempty"`
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Total       int          `json:"total" yaml:"total"`
	Processed   int          `json:"processed" yaml:"processed"`
	Worker      WorkerStatus `json:"worker" yaml:"worker"`
	LibraryPath string       `json:"libraryPath,omitempty" yaml:"libraryPath,omitempty"`
	PID         int          `json:"pid,omitempty" yaml:"pid,omitempty"`
}

// EnqueueRequest is the body of POST /api/queue.
type EnqueueRequest struct {
	IDs []int64 `json:"ids"`
}

// EnqueueResponse reports how many of the requested ids produced new rows.
type EnqueueResponse struct {
	Requested int  `json:"requested"`
	Added     int  `json:"added"`
	Started   bool `json:"started"`
}

// CancelResponse is returned by DELETE /api/queue.
type CancelResponse struct {
	Removed int `json:"removed"`
}

// FromRow converts a queue row.
func FromRow(row queue.Row) Row {
	return Row{
		ID:          row.ID,
		Status:      string(row.Status),
		DisplayName: row.DisplayName,
		Message:     row.Message,
	}
}

// FromRows converts rows, preserving order.
func FromRows(rows []queue.Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row))
	}
	return out
}

// FromStatusSummary converts the worker summary.
func FromStatusSummary(s workflow.StatusSummary) WorkerStatus {
	return WorkerStatus{
		Running:   s.Running,
		Online:    s.Online,
		Pending:   s.Pending,
		Processed: s.Processed,
		LastID:    s.LastID,
		LastError: s.LastError,
	}
}
