package queue

import "sync"

// Event names a table notification.
type Event string

const (
	// EventRowAdded carries the new row.
	EventRowAdded Event = "rowAdded"
	// EventRowUpdated carries the id, status, and message after an update.
	EventRowUpdated Event = "rowUpdated"
	// EventRowDeleted carries only the id.
	EventRowDeleted Event = "rowDeleted"
	// EventNonEmpty fires when the first row lands in an empty table.
	EventNonEmpty Event = "nonEmpty"
	// EventEmpty fires after CancelAll.
	EventEmpty Event = "empty"
)

// Notification is delivered to listeners. Row is zero for nonEmpty and empty.
type Notification struct {
	Event Event
	Row   Row
}

// Listener receives notifications synchronously on the mutating goroutine.
// Notifications reach listeners in the order the table changed, even when
// several goroutines mutate it. A listener may read the table but must not
// mutate it; a mutation from inside a listener waits for its own delivery
// turn and never gets it.
type Listener func(Notification)

type listeners struct {
	mu    sync.RWMutex
	byKey map[Event]Listener

	turnMu sync.Mutex
	turn   *sync.Cond
	served uint64
}

func (l *listeners) set(event Event, fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.byKey == nil {
		l.byKey = make(map[Event]Listener)
	}
	if fn == nil {
		delete(l.byKey, event)
		return
	}
	l.byKey[event] = fn
}

func (l *listeners) get(event Event) Listener {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.byKey[event]
}

// deliver fires batch once every turn before it has been delivered.
func (l *listeners) deliver(turn uint64, batch []Notification) {
	l.turnMu.Lock()
	if l.turn == nil {
		l.turn = sync.NewCond(&l.turnMu)
	}
	for l.served != turn {
		l.turn.Wait()
	}
	l.turnMu.Unlock()

	defer func() {
		l.turnMu.Lock()
		l.served++
		l.turn.Broadcast()
		l.turnMu.Unlock()
	}()
	l.fire(batch)
}

func (l *listeners) fire(batch []Notification) {
	for _, n := range batch {
		if fn := l.get(n.Event); fn != nil {
			fn(n)
		}
	}
}
