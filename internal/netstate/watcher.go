package netstate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"recognizer/internal/logging"
)

// Watcher turns net-subsystem uevents into wakeup signals.
type Watcher struct {
	logger  *slog.Logger
	wakeups chan struct{}

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// NewWatcher creates an unstarted watcher.
func NewWatcher(logger *slog.Logger) *Watcher {
	return &Watcher{
		logger:  logging.NewComponentLogger(logger, "netlink-monitor"),
		wakeups: make(chan struct{}, 1),
	}
}

// Wakeups delivers at most one buffered signal per burst of events. A nil
// watcher returns a nil channel, which never fires.
func (w *Watcher) Wakeups() <-chan struct{} {
	if w == nil {
		return nil
	}
	return w.wakeups
}

// Start connects to the kernel uevent socket. Connection failures are logged
// and tolerated; the worker then relies on its backoff timer alone.
func (w *Watcher) Start(ctx context.Context) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.KernelEvent); err != nil {
		logging.WarnWithContext(w.logger, "failed to connect to netlink socket; offline backoff will use the timer only", "netlink_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "ensure the process may open NETLINK_KOBJECT_UEVENT sockets"),
			logging.String(logging.FieldImpact, "reconnects are noticed after the backoff elapses"),
		)
		return nil
	}

	w.conn = conn
	w.quit = make(chan struct{})
	w.running = true

	quit := w.quit
	go w.monitorLoop(ctx, conn, quit)

	w.logger.Info("netlink monitor started",
		logging.String(logging.FieldEventType, "netlink_monitor_started"),
	)
	return nil
}

// Stop closes the uevent socket.
func (w *Watcher) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.quit != nil {
		close(w.quit)
		w.quit = nil
	}
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
	w.running = false
	w.logger.Info("netlink monitor stopped",
		logging.String(logging.FieldEventType, "netlink_monitor_stopped"),
	)
}

// Running reports whether the watcher is connected.
func (w *Watcher) Running() bool {
	if w == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) monitorLoop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	events := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(events, errs, buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-events:
			w.handleEvent(uevent)
		case err := <-errs:
			logging.WarnWithContext(w.logger, "netlink monitor error", "netlink_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "reconnect detection may be delayed"),
			)
		}
	}
}

// buildMatcher matches SUBSYSTEM=net with ACTION=add|change|move|online.
func buildMatcher() netlink.Matcher {
	action := "add|change|move|online"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "net",
		},
	})
	return rules
}

func (w *Watcher) handleEvent(uevent netlink.UEvent) {
	w.logger.Debug("network uevent",
		logging.String("action", string(uevent.Action)),
		logging.String("interface", uevent.Env["INTERFACE"]),
	)
	w.signal()
}

func (w *Watcher) signal() {
	select {
	case w.wakeups <- struct{}{}:
	default:
	}
}
