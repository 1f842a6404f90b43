package daemonctl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"recognizer/internal/api"
	"recognizer/internal/testsupport"
)

func TestProbeReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(api.StatusResponse{Total: 3, PID: 42})
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = strings.TrimPrefix(srv.URL, "http://")
	status, err := Probe(context.Background(), cfg, time.Second)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if status.Total != 3 || status.PID != 42 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestProbeNotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = addr
	if _, err := Probe(context.Background(), cfg, time.Second); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}

func TestReadPID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if pid := ReadPID(cfg); pid != 0 {
		t.Fatalf("expected 0 without pid file, got %d", pid)
	}
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(cfg.Paths.LogDir, PIDFileName)
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if pid := ReadPID(cfg); pid != os.Getpid() {
		t.Fatalf("expected own pid, got %d", pid)
	}
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if pid := ReadPID(cfg); pid != 0 {
		t.Fatalf("expected 0 for malformed pid, got %d", pid)
	}
}
