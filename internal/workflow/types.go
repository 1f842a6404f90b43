package workflow

import (
	"context"

	"recognizer/internal/library"
	"recognizer/internal/queue"
	"recognizer/internal/recognition"
)

// RowTable is the subset of queue.Table the manager drives.
type RowTable interface {
	EnqueueMany(entries []queue.Entry) int
	Claim() (queue.Ticket, bool)
	PendingCount() int
	UpdateClaimed(ticket queue.Ticket, status queue.Status, message string) bool
}

// Connectivity reports whether the recognition service can be reached and
// signals when it is worth checking again.
type Connectivity interface {
	Online(ctx context.Context) bool
	Wakeups() <-chan struct{}
}

// Processor runs the per-document pipeline. A nil item with a nil error
// means no match.
type Processor interface {
	Process(ctx context.Context, id int64) (*library.Item, error)
}

// Documents loads library items by id.
type Documents interface {
	Get(ctx context.Context, id int64) (*library.Item, error)
}

// Resolver turns a recognition candidate into an unsaved item.
type Resolver interface {
	Resolve(ctx context.Context, res *recognition.Result) (*library.Item, error)
}

// Materializer saves an item and files source beneath it atomically.
type Materializer interface {
	Materialize(ctx context.Context, source, item *library.Item) error
}
