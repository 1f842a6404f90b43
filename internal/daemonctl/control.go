// Package daemonctl locates a running recognizer daemon for CLI commands.
package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"recognizer/internal/api"
	"recognizer/internal/config"
)

// PIDFileName matches the file the daemon writes into the log directory.
const PIDFileName = "recognizer.pid"

// ErrNotRunning is returned when no daemon answers on the configured bind.
var ErrNotRunning = errors.New("recognizer daemon is not running")

// Client returns an API client for the configured daemon.
func Client(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.Paths.APIBind, cfg.Paths.APIToken)
}

// Probe asks the daemon for its status within timeout. Connection failures
// map to ErrNotRunning; HTTP-level failures (bad token) are returned as is.
func Probe(ctx context.Context, cfg *config.Config, timeout time.Duration) (api.StatusResponse, error) {
	if cfg == nil {
		return api.StatusResponse{}, fmt.Errorf("config is required")
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status, err := Client(cfg).Status(ctx)
	if err == nil {
		return status, nil
	}
	if strings.Contains(err.Error(), "daemon unreachable") {
		return api.StatusResponse{}, fmt.Errorf("%w (%s)", ErrNotRunning, cfg.Paths.APIBind)
	}
	return api.StatusResponse{}, err
}

// ReadPID returns the pid recorded by a running daemon, or 0 when the file is
// missing, malformed, or names a dead process.
func ReadPID(cfg *config.Config) int {
	if cfg == nil {
		return 0
	}
	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, PIDFileName))
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}
	if !processAlive(pid) {
		return 0
	}
	return pid
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
