package workflow

// StatusSummary is a point-in-time view of the worker.
type StatusSummary struct {
	Running   bool   `json:"running" yaml:"running"`
	Online    bool   `json:"online" yaml:"online"`
	Pending   int    `json:"pending" yaml:"pending"`
	Processed int    `json:"processed" yaml:"processed"`
	LastID    int64  `json:"lastId,omitempty" yaml:"lastId,omitempty"`
	LastError string `json:"lastError,omitempty" yaml:"lastError,omitempty"`
}

// Status returns the latest worker information.
func (m *Manager) Status() StatusSummary {
	pending := m.table.PendingCount()
	m.mu.RLock()
	defer m.mu.RUnlock()
	summary := StatusSummary{
		Running:   m.running,
		Online:    m.online,
		Pending:   pending,
		Processed: m.processed,
		LastID:    m.lastID,
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	return summary
}
