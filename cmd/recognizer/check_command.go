package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"recognizer/internal/daemonctl"
	"recognizer/internal/preflight"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const checkLabelWidth = 22

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, pdftotext, and remote services",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(formatFlag)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			failed := preflight.Failed(results)

			if handled, err := writeStructured(cmd, format, results); handled {
				if err == nil && len(failed) > 0 {
					err = fmt.Errorf("%d checks failed", len(failed))
				}
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, r := range results {
				fmt.Fprintln(out, renderCheckLine(r.Name, r.Passed, r.Detail, colorize))
			}
			status, probeErr := daemonctl.Probe(cmd.Context(), cfg, 0)
			switch {
			case probeErr == nil:
				fmt.Fprintln(out, renderInfoLine("Daemon", fmt.Sprintf("running at %s (pid %d)", cfg.Paths.APIBind, status.PID), colorize))
			case errors.Is(probeErr, daemonctl.ErrNotRunning):
				fmt.Fprintln(out, renderInfoLine("Daemon", "not running", colorize))
			default:
				fmt.Fprintln(out, renderInfoLine("Daemon", probeErr.Error(), colorize))
			}

			if len(failed) > 0 {
				return fmt.Errorf("%d checks failed", len(failed))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "table", "Output format: table, json, or yaml")
	return cmd
}

func renderCheckLine(label string, passed bool, detail string, colorize bool) string {
	status, color := "OK", ansiGreen
	if !passed {
		status, color = "ERROR", ansiRed
	}
	text := fmt.Sprintf("[%s]", status)
	if detail != "" {
		text = fmt.Sprintf("[%s] %s", status, detail)
	}
	line := fmt.Sprintf("  %-*s %s", checkLabelWidth, label+":", text)
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func renderInfoLine(label, detail string, colorize bool) string {
	line := fmt.Sprintf("  %-*s [INFO] %s", checkLabelWidth, label+":", detail)
	if colorize {
		return ansiYellow + line + ansiReset
	}
	return line
}
