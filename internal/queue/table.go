package queue

import (
	"sync"
)

// Table is the in-memory row table plus the pending FIFO.
type Table struct {
	mu      sync.Mutex
	rows    map[int64]*Row
	gens    map[int64]uint64
	nextGen uint64
	order   []int64 // newest first
	pending []int64 // oldest first
	turns   uint64
	events  listeners
}

// Ticket identifies one enqueue of a document. Re-enqueueing an id after it
// finished or was cancelled issues a new Gen, so updates carrying an older
// ticket no longer apply.
type Ticket struct {
	ID  int64
	Gen uint64
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{rows: make(map[int64]*Row), gens: make(map[int64]uint64)}
}

// On registers fn for event, replacing any earlier listener for it.
func (t *Table) On(event Event, fn Listener) {
	t.events.set(event, fn)
}

// Off removes the listener for event.
func (t *Table) Off(event Event) {
	t.events.set(event, nil)
}

// Enqueue adds a Queued row for id and schedules it. It returns false when an
// active row for id already exists. A finished row for id is replaced.
func (t *Table) Enqueue(id int64, displayName string) bool {
	t.mu.Lock()
	added, batch := t.enqueueLocked(id, displayName)
	t.publish(batch)
	return added
}

// EnqueueMany enqueues entries in order and returns how many were added.
func (t *Table) EnqueueMany(entries []Entry) int {
	added := 0
	for _, entry := range entries {
		if t.Enqueue(entry.ID, entry.DisplayName) {
			added++
		}
	}
	return added
}

func (t *Table) enqueueLocked(id int64, displayName string) (bool, []Notification) {
	var batch []Notification
	if existing, ok := t.rows[id]; ok {
		if existing.Status.IsActive() {
			return false, nil
		}
		t.removeLocked(id)
		t.removePendingLocked(id)
		batch = append(batch, Notification{Event: EventRowDeleted, Row: Row{ID: id}})
	}

	wasEmpty := len(t.rows) == 0
	row := &Row{ID: id, Status: StatusQueued, DisplayName: displayName}
	t.nextGen++
	t.rows[id] = row
	t.gens[id] = t.nextGen
	t.order = append([]int64{id}, t.order...)
	t.pending = append(t.pending, id)

	batch = append(batch, Notification{Event: EventRowAdded, Row: *row})
	if wasEmpty {
		batch = append(batch, Notification{Event: EventNonEmpty})
	}
	return true, batch
}

// UpdateStatus changes the status and message of the row for id. It is a
// no-op when the row no longer exists.
func (t *Table) UpdateStatus(id int64, status Status, message string) bool {
	t.mu.Lock()
	return t.updateLocked(id, status, message)
}

// UpdateClaimed is UpdateStatus for a row handed out by Claim. It is a no-op
// when the row was cancelled or replaced by a later enqueue since the claim.
func (t *Table) UpdateClaimed(ticket Ticket, status Status, message string) bool {
	t.mu.Lock()
	if gen, ok := t.gens[ticket.ID]; !ok || gen != ticket.Gen {
		t.mu.Unlock()
		return false
	}
	return t.updateLocked(ticket.ID, status, message)
}

// updateLocked must be called with t.mu held and releases it.
func (t *Table) updateLocked(id int64, status Status, message string) bool {
	row, ok := t.rows[id]
	if !ok {
		t.mu.Unlock()
		return false
	}
	row.Status = status
	row.Message = message
	t.publish([]Notification{{
		Event: EventRowUpdated,
		Row:   Row{ID: row.ID, Status: status, Message: message},
	}})
	return true
}

// DeleteRow removes the row for id if present. A row that is still queued is
// also taken off the pending FIFO.
func (t *Table) DeleteRow(id int64) bool {
	t.mu.Lock()
	_, ok := t.rows[id]
	if !ok {
		t.mu.Unlock()
		return false
	}
	t.removeLocked(id)
	t.removePendingLocked(id)
	t.publish([]Notification{{Event: EventRowDeleted, Row: Row{ID: id}}})
	return true
}

// CancelAll drops every row and pending id. Updates for rows already handed
// to the worker become no-ops.
func (t *Table) CancelAll() {
	t.mu.Lock()
	t.rows = make(map[int64]*Row)
	t.gens = make(map[int64]uint64)
	t.order = nil
	t.pending = nil
	t.publish([]Notification{{Event: EventEmpty}})
}

// Claim removes the oldest pending id and returns a ticket for the row it
// belongs to.
func (t *Table) Claim() (Ticket, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return Ticket{}, false
	}
	id := t.pending[0]
	t.pending = t.pending[1:]
	return Ticket{ID: id, Gen: t.gens[id]}, true
}

// PopPending removes and returns the oldest pending id.
func (t *Table) PopPending() (int64, bool) {
	ticket, ok := t.Claim()
	return ticket.ID, ok
}

// PendingCount returns the number of ids waiting for the worker.
func (t *Table) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Row returns a copy of the row for id.
func (t *Table) Row(id int64) (Row, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		return Row{}, false
	}
	return *row, true
}

// ListRows returns a snapshot of all rows, newest first.
func (t *Table) ListRows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Row, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.rows[id])
	}
	return out
}

// CountTotal returns the number of rows.
func (t *Table) CountTotal() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// CountProcessed returns the number of rows that finished, successfully or not.
func (t *Table) CountProcessed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, row := range t.rows {
		if row.Status.Rank() > StatusProcessing.Rank() {
			n++
		}
	}
	return n
}

// publish must be called with t.mu held. It takes the next delivery turn,
// releases the lock, and hands batch to the listeners once every earlier
// batch has been delivered.
func (t *Table) publish(batch []Notification) {
	if len(batch) == 0 {
		t.mu.Unlock()
		return
	}
	turn := t.turns
	t.turns++
	t.mu.Unlock()
	t.events.deliver(turn, batch)
}

// removeLocked deletes id from the rows and display order. Pending entries
// are handled by the caller.
func (t *Table) removeLocked(id int64) {
	delete(t.rows, id)
	delete(t.gens, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *Table) removePendingLocked(id int64) {
	for i, existing := range t.pending {
		if existing == id {
			t.pending = append(t.pending[:i:i], t.pending[i+1:]...)
			return
		}
	}
}
