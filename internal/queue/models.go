package queue

import "strings"

// Status represents the lifecycle of a row.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusFailed     Status = "failed"
	StatusSucceeded  Status = "succeeded"
)

var statusRank = map[Status]int{
	StatusQueued:     0,
	StatusProcessing: 1,
	StatusFailed:     2,
	StatusSucceeded:  3,
}

// Rank orders statuses Queued < Processing < Failed < Succeeded. Unknown
// statuses rank below Queued.
func (s Status) Rank() int {
	if rank, ok := statusRank[s]; ok {
		return rank
	}
	return -1
}

// IsActive reports whether the row is still waiting or running.
func (s Status) IsActive() bool {
	return s == StatusQueued || s == StatusProcessing
}

// IsTerminal reports whether processing has finished for the row.
func (s Status) IsTerminal() bool {
	return s == StatusFailed || s == StatusSucceeded
}

// ParseStatus converts a string into a Status if it is known.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusRank[status]
	return status, ok
}

// AllStatuses returns the known statuses in rank order.
func AllStatuses() []Status {
	return []Status{StatusQueued, StatusProcessing, StatusFailed, StatusSucceeded}
}

// Row is the display record for one queued document.
type Row struct {
	ID          int64  `json:"id" yaml:"id"`
	Status      Status `json:"status" yaml:"status"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Message     string `json:"message" yaml:"message"`
}

// Entry is an enqueue request.
type Entry struct {
	ID          int64
	DisplayName string
}
