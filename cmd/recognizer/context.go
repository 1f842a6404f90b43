package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"recognizer/internal/api"
	"recognizer/internal/config"
	"recognizer/internal/daemonctl"
	"recognizer/internal/library"
	"recognizer/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// withStore opens the library for the duration of fn.
func (c *commandContext) withStore(fn func(*library.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := library.Open(cfg)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// daemonClient returns a client after confirming the daemon answers.
func (c *commandContext) daemonClient(ctx context.Context) (*api.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if _, err := daemonctl.Probe(ctx, cfg, 0); err != nil {
		return nil, fmt.Errorf("%w; start it with `recognizer serve`", err)
	}
	return daemonctl.Client(cfg), nil
}

// commandLogger writes to stderr so command output stays parseable.
func (c *commandContext) commandLogger(verbose bool) *slog.Logger {
	cfg := c.configValue()
	level := "warn"
	format := "console"
	if cfg != nil {
		format = cfg.Logging.Format
	}
	if verbose {
		level = "info"
		if cfg != nil && cfg.Logging.Level != "" {
			level = cfg.Logging.Level
		}
	}
	logger, err := logging.New(logging.Options{Level: level, Format: format, OutputPaths: []string{"stderr"}})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// shouldColorize reports whether out is an interactive terminal.
func shouldColorize(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
