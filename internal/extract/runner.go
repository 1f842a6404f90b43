package extract

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"recognizer/internal/logging"
)

// Runner lets tests stub the external extraction command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Logger *slog.Logger
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		logger.Debug("exec failed",
			logging.String("command", name),
			logging.String("args", strings.Join(args, " ")),
			logging.Duration("exec_duration", elapsed),
			logging.Error(err),
			logging.String("stderr", truncate(errb.String(), 8<<10)),
		)
	} else {
		logger.Debug("exec ok",
			logging.String("command", name),
			logging.Duration("exec_duration", elapsed),
			logging.Int("stdout_bytes", out.Len()),
		)
	}
	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "...(truncated)"
}
