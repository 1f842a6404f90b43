package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"recognizer/internal/config"
	"recognizer/internal/report"
)

func newRowsCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "rows",
		Short: "Show the daemon's recognition rows, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(formatFlag)
			if err != nil {
				return err
			}
			client, err := ctx.daemonClient(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := client.Rows(cmd.Context())
			if err != nil {
				return err
			}
			if handled, err := writeStructured(cmd, format, resp); handled {
				return err
			}
			out := cmd.OutOrStdout()
			if len(resp.Rows) == 0 {
				fmt.Fprintln(out, "No rows")
				return nil
			}
			fmt.Fprint(out, renderRows(resp.Rows, shouldColorize(out)))
			fmt.Fprintf(out, "Processed %d of %d\n", resp.Processed, resp.Total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "table", "Output format: table, json, or yaml")
	cmd.AddCommand(newRowsExportCommand(ctx))
	return cmd
}

func newRowsExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export the daemon's rows to an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if !strings.EqualFold(filepath.Ext(target), ".xlsx") {
				target += ".xlsx"
			}
			client, err := ctx.daemonClient(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := client.Rows(cmd.Context())
			if err != nil {
				return err
			}
			file, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create export: %w", err)
			}
			if err := report.WriteRowsXLSX(file, resp, time.Now()); err != nil {
				_ = file.Close()
				_ = os.Remove(target)
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("close export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(resp.Rows), target)
			return nil
		},
	}
}
