package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"recognizer/internal/logging"
	"recognizer/internal/queue"
	"recognizer/internal/services"
)

// run holds the worker slot on entry and releases it on every exit path.
func (m *Manager) run(ctx context.Context) {
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		m.slot.Release(1)
	}
	defer release()

	if !m.waitReady(ctx) {
		return
	}
	m.logger.Info("queue worker started", logging.String(logging.FieldEventType, "queue_start"))
	started := time.Now()
	handled := 0

	for {
		if !m.waitOnline(ctx) {
			m.logger.Info("queue worker stopped", logging.String(logging.FieldEventType, "queue_stopped"))
			return
		}

		ticket, ok := m.table.Claim()
		if !ok {
			release()
			// An Enqueue that raced with the empty check could not start a
			// loop of its own; pick its work up here.
			if m.table.PendingCount() == 0 || !m.slot.TryAcquire(1) {
				m.logger.Info("queue drained",
					logging.String(logging.FieldEventType, "queue_empty"),
					logging.Int("processed", handled),
					logging.Duration("elapsed", time.Since(started)),
				)
				return
			}
			released = false
			m.mu.Lock()
			m.running = true
			m.mu.Unlock()
			continue
		}

		m.processOne(ctx, ticket)
		handled++
	}
}

func (m *Manager) waitReady(ctx context.Context) bool {
	if m.ready == nil {
		return true
	}
	select {
	case <-m.ready:
		return true
	default:
	}
	m.logger.Info("waiting for library to become ready",
		logging.String(logging.FieldEventType, "queue_waiting_ready"),
	)
	select {
	case <-m.ready:
		return true
	case <-ctx.Done():
		return false
	}
}

// waitOnline returns false only when ctx ends.
func (m *Manager) waitOnline(ctx context.Context) bool {
	for {
		if ctx.Err() != nil {
			return false
		}
		if m.conn == nil || m.conn.Online(ctx) {
			m.setOnline(true)
			return true
		}
		if m.setOnline(false) {
			logging.WarnWithContext(m.logger, "recognition service offline; pausing queue", "queue_offline",
				logging.Duration("backoff", m.backoff),
				logging.Int("pending", m.table.PendingCount()),
				logging.String(logging.FieldErrorHint, "check network connectivity"),
				logging.String(logging.FieldImpact, "queued documents wait until connectivity returns"),
			)
		}
		timer := time.NewTimer(m.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		case <-m.conn.Wakeups():
			timer.Stop()
			m.logger.Debug("network change detected; rechecking connectivity")
		}
	}
}

// setOnline records the connectivity state and reports whether it changed.
func (m *Manager) setOnline(online bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := m.online != online
	m.online = online
	return changed
}

func (m *Manager) processOne(ctx context.Context, ticket queue.Ticket) {
	id := ticket.ID
	itemCtx := services.NewItemContext(ctx, id, uuid.NewString())
	logger := logging.WithContext(itemCtx, m.logger)

	m.table.UpdateClaimed(ticket, queue.StatusProcessing, m.msgs.Processing())
	logger.Info("recognition started", logging.String(logging.FieldEventType, "item_start"))
	start := time.Now()

	item, err := m.processor.Process(itemCtx, id)
	elapsed := time.Since(start)

	m.mu.Lock()
	m.lastID = id
	m.lastErr = err
	m.processed++
	m.mu.Unlock()

	switch {
	case err != nil:
		m.table.UpdateClaimed(ticket, queue.StatusFailed, m.msgs.ForError(err))
		attrs := []logging.Attr{
			logging.Status(string(queue.StatusFailed)),
			logging.Error(err),
			logging.Duration("elapsed", elapsed),
			logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
		}
		if key, ok := services.AlertKey(err); ok {
			attrs = append(attrs, logging.Alert(key))
		}
		logging.ErrorWithContext(logger, "recognition failed", "item_failed", attrs...)
	case item == nil:
		m.table.UpdateClaimed(ticket, queue.StatusFailed, m.msgs.NoMatches())
		logger.Info("no matching metadata",
			logging.String(logging.FieldEventType, "item_no_match"),
			logging.Status(string(queue.StatusFailed)),
			logging.Duration("elapsed", elapsed),
		)
	default:
		m.table.UpdateClaimed(ticket, queue.StatusSucceeded, item.Title())
		logger.Info("recognition succeeded",
			logging.String(logging.FieldEventType, "item_succeeded"),
			logging.Status(string(queue.StatusSucceeded)),
			logging.Int64("parent_id", item.ID),
			logging.String("item_type", item.ItemType),
			logging.String("title", item.Title()),
			logging.Duration("elapsed", elapsed),
		)
	}
}
