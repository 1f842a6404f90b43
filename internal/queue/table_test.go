package queue

import (
	"reflect"
	"sync"
	"testing"
)

type recorder struct {
	mu     sync.Mutex
	events []Notification
}

func (r *recorder) attach(t *Table) {
	for _, event := range []Event{EventRowAdded, EventRowUpdated, EventRowDeleted, EventNonEmpty, EventEmpty} {
		t.On(event, r.record)
	}
}

func (r *recorder) record(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, n)
}

func (r *recorder) names() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	for i, n := range r.events {
		out[i] = n.Event
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

func TestEnqueueFiresAddedAndNonEmptyOnce(t *testing.T) {
	table := NewTable()
	rec := &recorder{}
	rec.attach(table)

	if !table.Enqueue(1, "A") {
		t.Fatal("expected first enqueue to add")
	}
	if !table.Enqueue(2, "B") {
		t.Fatal("expected second enqueue to add")
	}
	want := []Event{EventRowAdded, EventNonEmpty, EventRowAdded}
	if got := rec.names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	rows := table.ListRows()
	if len(rows) != 2 || rows[0].ID != 2 || rows[1].ID != 1 {
		t.Fatalf("expected newest first, got %+v", rows)
	}
	if rows[0].Status != StatusQueued {
		t.Fatalf("expected queued, got %s", rows[0].Status)
	}
}

func TestEnqueueActiveRowIsNoop(t *testing.T) {
	table := NewTable()
	table.Enqueue(1, "A")
	rec := &recorder{}
	rec.attach(table)

	if table.Enqueue(1, "A again") {
		t.Fatal("expected duplicate queued enqueue to be ignored")
	}
	table.UpdateStatus(1, StatusProcessing, "Processing…")
	rec.reset()
	if table.Enqueue(1, "A again") {
		t.Fatal("expected duplicate processing enqueue to be ignored")
	}
	if len(rec.names()) != 0 {
		t.Fatalf("expected no events, got %v", rec.names())
	}
	if table.CountTotal() != 1 || table.PendingCount() != 1 {
		t.Fatalf("unexpected counts total=%d pending=%d", table.CountTotal(), table.PendingCount())
	}
}

func TestEnqueueTerminalRowReplacesIt(t *testing.T) {
	for _, status := range []Status{StatusFailed, StatusSucceeded} {
		t.Run(string(status), func(t *testing.T) {
			table := NewTable()
			table.Enqueue(1, "A")
			table.Enqueue(2, "B")
			if id, _ := table.PopPending(); id != 1 {
				t.Fatalf("expected 1 popped, got %d", id)
			}
			table.UpdateStatus(1, status, "done")

			rec := &recorder{}
			rec.attach(table)
			if !table.Enqueue(1, "A retry") {
				t.Fatal("expected re-enqueue of terminal row to add")
			}
			want := []Event{EventRowDeleted, EventRowAdded}
			if got := rec.names(); !reflect.DeepEqual(got, want) {
				t.Fatalf("events = %v, want %v", got, want)
			}
			row, ok := table.Row(1)
			if !ok || row.Status != StatusQueued || row.DisplayName != "A retry" || row.Message != "" {
				t.Fatalf("unexpected row %+v", row)
			}
			rows := table.ListRows()
			if rows[0].ID != 1 {
				t.Fatalf("expected re-enqueued row at front, got %+v", rows)
			}
			if id, _ := table.PopPending(); id != 2 {
				t.Fatalf("expected FIFO to hand out 2 before the re-enqueued 1, got %d", id)
			}
		})
	}
}

func TestSoleTerminalRowReenqueueFiresNonEmpty(t *testing.T) {
	table := NewTable()
	table.Enqueue(1, "A")
	table.PopPending()
	table.UpdateStatus(1, StatusFailed, "x")

	rec := &recorder{}
	rec.attach(table)
	table.Enqueue(1, "A")
	want := []Event{EventRowDeleted, EventRowAdded, EventNonEmpty}
	if got := rec.names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestPopPendingIsFIFO(t *testing.T) {
	table := NewTable()
	table.EnqueueMany([]Entry{{ID: 3, DisplayName: "C"}, {ID: 1, DisplayName: "A"}, {ID: 2, DisplayName: "B"}})
	var got []int64
	for {
		id, ok := table.PopPending()
		if !ok {
			break
		}
		got = append(got, id)
	}
	if !reflect.DeepEqual(got, []int64{3, 1, 2}) {
		t.Fatalf("pop order = %v", got)
	}
}

func TestUpdateStatusMissingRowIsNoop(t *testing.T) {
	table := NewTable()
	rec := &recorder{}
	rec.attach(table)
	if table.UpdateStatus(42, StatusSucceeded, "x") {
		t.Fatal("expected update of missing row to report false")
	}
	if len(rec.names()) != 0 {
		t.Fatalf("expected no events, got %v", rec.names())
	}
}

func TestUpdateStatusPayload(t *testing.T) {
	table := NewTable()
	table.Enqueue(7, "Doc")
	var got Notification
	table.On(EventRowUpdated, func(n Notification) { got = n })
	table.UpdateStatus(7, StatusFailed, "No matching references found")
	want := Row{ID: 7, Status: StatusFailed, Message: "No matching references found"}
	if got.Row != want {
		t.Fatalf("payload = %+v, want %+v", got.Row, want)
	}
}

func TestCancelAllClearsEverything(t *testing.T) {
	table := NewTable()
	table.Enqueue(1, "A")
	table.Enqueue(2, "B")
	table.PopPending()
	rec := &recorder{}
	rec.attach(table)

	table.CancelAll()
	if got := rec.names(); !reflect.DeepEqual(got, []Event{EventEmpty}) {
		t.Fatalf("events = %v", got)
	}
	if table.CountTotal() != 0 || table.PendingCount() != 0 {
		t.Fatalf("expected empty table")
	}
	if table.UpdateStatus(1, StatusSucceeded, "late") {
		t.Fatal("in-flight update after cancel must be a no-op")
	}
	if len(table.ListRows()) != 0 {
		t.Fatal("late update must not resurrect a row")
	}
}

func TestDeleteRowDropsPending(t *testing.T) {
	table := NewTable()
	table.Enqueue(1, "A")
	table.Enqueue(2, "B")
	var deleted int64
	table.On(EventRowDeleted, func(n Notification) { deleted = n.Row.ID })
	if !table.DeleteRow(1) {
		t.Fatal("expected delete to succeed")
	}
	if deleted != 1 {
		t.Fatalf("expected rowDeleted for 1, got %d", deleted)
	}
	if id, _ := table.PopPending(); id != 2 {
		t.Fatalf("expected deleted id to leave the FIFO, got %d", id)
	}
	if table.DeleteRow(1) {
		t.Fatal("second delete should report false")
	}
}

func TestCountProcessed(t *testing.T) {
	table := NewTable()
	for i := int64(1); i <= 4; i++ {
		table.Enqueue(i, "")
	}
	table.UpdateStatus(2, StatusProcessing, "")
	table.UpdateStatus(3, StatusFailed, "")
	table.UpdateStatus(4, StatusSucceeded, "")
	if got := table.CountProcessed(); got != 2 {
		t.Fatalf("CountProcessed = %d, want 2", got)
	}
	if got := table.CountTotal(); got != 4 {
		t.Fatalf("CountTotal = %d, want 4", got)
	}
}

func TestListenerLastRegistrationWins(t *testing.T) {
	table := NewTable()
	first, second := 0, 0
	table.On(EventRowAdded, func(Notification) { first++ })
	table.On(EventRowAdded, func(Notification) { second++ })
	table.Enqueue(1, "A")
	if first != 0 || second != 1 {
		t.Fatalf("first=%d second=%d", first, second)
	}
	table.Off(EventRowAdded)
	table.Enqueue(2, "B")
	if second != 1 {
		t.Fatalf("expected listener removed, got %d calls", second)
	}
}

func TestListenerMayCallBackIntoTable(t *testing.T) {
	table := NewTable()
	var total int
	table.On(EventRowAdded, func(Notification) { total = table.CountTotal() })
	table.Enqueue(1, "A")
	if total != 1 {
		t.Fatalf("expected listener to observe 1 row, got %d", total)
	}
}

func TestConcurrentEnqueueKeepsOneRowPerID(t *testing.T) {
	table := NewTable()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table.Enqueue(int64(i%5), "doc")
		}(i)
	}
	wg.Wait()
	if table.CountTotal() != 5 || table.PendingCount() != 5 {
		t.Fatalf("total=%d pending=%d", table.CountTotal(), table.PendingCount())
	}
}

func TestStatusRankOrder(t *testing.T) {
	statuses := AllStatuses()
	for i := 1; i < len(statuses); i++ {
		if statuses[i-1].Rank() >= statuses[i].Rank() {
			t.Fatalf("%s should rank below %s", statuses[i-1], statuses[i])
		}
	}
	if s, ok := ParseStatus(" Failed "); !ok || s != StatusFailed {
		t.Fatalf("ParseStatus = %q, %v", s, ok)
	}
}

func TestUpdateClaimedIgnoresReplacedRow(t *testing.T) {
	table := NewTable()
	table.Enqueue(1, "A")
	stale, ok := table.Claim()
	if !ok || stale.ID != 1 {
		t.Fatalf("unexpected claim %+v", stale)
	}
	if !table.UpdateClaimed(stale, StatusProcessing, "working") {
		t.Fatal("expected current ticket to apply")
	}

	table.CancelAll()
	table.Enqueue(1, "A again")
	rec := &recorder{}
	rec.attach(table)
	if table.UpdateClaimed(stale, StatusSucceeded, "late") {
		t.Fatal("stale ticket must not update the new row")
	}
	if len(rec.names()) != 0 {
		t.Fatalf("expected no events, got %v", rec.names())
	}
	row, _ := table.Row(1)
	if row.Status != StatusQueued || row.Message != "" {
		t.Fatalf("new row changed: %+v", row)
	}

	fresh, ok := table.Claim()
	if !ok || fresh.ID != 1 || fresh.Gen == stale.Gen {
		t.Fatalf("expected a new ticket for 1, got %+v (stale %+v)", fresh, stale)
	}
	if _, ok := table.Claim(); ok {
		t.Fatal("id must be pending only once")
	}
	if !table.UpdateClaimed(fresh, StatusFailed, "x") {
		t.Fatal("expected fresh ticket to apply")
	}
}

func TestReenqueueKeepsPendingUnique(t *testing.T) {
	table := NewTable()
	table.Enqueue(1, "A")
	// Finished without being claimed.
	table.UpdateStatus(1, StatusFailed, "x")
	table.Enqueue(1, "A")
	if got := table.PendingCount(); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}
}

func TestConcurrentMutationsNotifyInOrder(t *testing.T) {
	table := NewTable()
	mirror := make(map[int64]bool)
	table.On(EventRowAdded, func(n Notification) { mirror[n.Row.ID] = true })
	table.On(EventRowDeleted, func(n Notification) { delete(mirror, n.Row.ID) })
	table.On(EventEmpty, func(Notification) {
		for id := range mirror {
			delete(mirror, id)
		}
	})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := int64(g*1000 + i%10)
				switch i % 7 {
				case 3:
					table.CancelAll()
				case 5:
					table.DeleteRow(id)
				default:
					table.Enqueue(id, "")
				}
			}
		}(g)
	}
	wg.Wait()

	rows := table.ListRows()
	if len(rows) != len(mirror) {
		t.Fatalf("mirror has %d rows, table has %d", len(mirror), len(rows))
	}
	for _, row := range rows {
		if !mirror[row.ID] {
			t.Fatalf("mirror is missing row %d", row.ID)
		}
	}
}
