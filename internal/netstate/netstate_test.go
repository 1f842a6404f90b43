package netstate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pilebones/go-udev/netlink"

	"recognizer/internal/logging"
)

func TestProbeOnlineForAnyHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	probe := NewProbe(srv.URL, time.Second, srv.Client(), logging.NewNop())
	if !probe.Online(context.Background()) {
		t.Fatal("expected online when server answers")
	}
}

func TestProbeOfflineWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	probe := NewProbe(url, time.Second, nil, logging.NewNop())
	if probe.Online(context.Background()) {
		t.Fatal("expected offline for closed server")
	}
}

func TestProbeWithoutURLIsOnline(t *testing.T) {
	if !NewProbe("", 0, nil, nil).Online(context.Background()) {
		t.Fatal("empty probe URL should not block the worker")
	}
	var nilProbe *Probe
	if !nilProbe.Online(context.Background()) {
		t.Fatal("nil probe should report online")
	}
}

func TestWatcherSignalCoalesces(t *testing.T) {
	w := NewWatcher(logging.NewNop())
	w.handleEvent(netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "net", "INTERFACE": "eth0"}})
	w.handleEvent(netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"SUBSYSTEM": "net", "INTERFACE": "eth0"}})

	select {
	case <-w.Wakeups():
	default:
		t.Fatal("expected a wakeup")
	}
	select {
	case <-w.Wakeups():
		t.Fatal("expected bursts to coalesce into one wakeup")
	default:
	}
}

func TestWatcherMatcher(t *testing.T) {
	matcher := buildMatcher()
	if !matcher.Evaluate(netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "net"}}) {
		t.Fatal("expected net add to match")
	}
	if matcher.Evaluate(netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "block"}}) {
		t.Fatal("expected block events to be ignored")
	}
}

func TestNilWatcher(t *testing.T) {
	var w *Watcher
	if w.Wakeups() != nil || w.Running() {
		t.Fatal("nil watcher should be inert")
	}
	w.Stop()
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func TestMonitorCombinesProbeAndWatcher(t *testing.T) {
	w := NewWatcher(logging.NewNop())
	m := NewMonitor(nil, w)
	if !m.Online(context.Background()) {
		t.Fatal("nil probe should report online")
	}
	w.signal()
	select {
	case <-m.Wakeups():
	case <-time.After(time.Second):
		t.Fatal("expected wakeup forwarded from watcher")
	}

	bare := NewMonitor(nil, nil)
	if bare.Wakeups() != nil {
		t.Fatal("expected nil wakeup channel without watcher")
	}
}
