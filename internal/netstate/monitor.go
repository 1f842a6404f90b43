package netstate

import "context"

// Monitor pairs a reachability probe with the uevent watcher so the worker
// sees both as one connectivity source.
type Monitor struct {
	probe   *Probe
	watcher *Watcher
}

// NewMonitor combines probe and watcher. Either may be nil.
func NewMonitor(probe *Probe, watcher *Watcher) *Monitor {
	return &Monitor{probe: probe, watcher: watcher}
}

// Online reports whether the probe target answered.
func (m *Monitor) Online(ctx context.Context) bool {
	return m.probe.Online(ctx)
}

// Wakeups forwards watcher signals.
func (m *Monitor) Wakeups() <-chan struct{} {
	return m.watcher.Wakeups()
}
