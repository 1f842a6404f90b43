package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recognizer/internal/api"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage the running daemon's queue",
	}
	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	return queueCmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id>...",
		Short: "Enqueue attachment ids on the daemon",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			client, err := ctx.daemonClient(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := client.Enqueue(cmd.Context(), ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued %d of %d (worker running: %s)\n", resp.Added, resp.Requested, yesNo(resp.Started))
			return nil
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Cancel every row on the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.daemonClient(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := client.CancelAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d rows\n", resp.Removed)
			return nil
		},
	}
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon queue and worker status",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(formatFlag)
			if err != nil {
				return err
			}
			client, err := ctx.daemonClient(cmd.Context())
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			if handled, err := writeStructured(cmd, format, status); handled {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, statusRows(status), []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "table", "Output format: table, json, or yaml")
	return cmd
}

func statusRows(status api.StatusResponse) [][]string {
	rows := [][]string{
		{"Rows", fmt.Sprintf("%d", status.Total)},
		{"Processed", fmt.Sprintf("%d", status.Processed)},
		{"Pending", fmt.Sprintf("%d", status.Worker.Pending)},
		{"Worker running", yesNo(status.Worker.Running)},
		{"Service online", yesNo(status.Worker.Online)},
	}
	if status.Worker.LastID != 0 {
		rows = append(rows, []string{"Last item", formatID(status.Worker.LastID)})
	}
	if status.Worker.LastError != "" {
		rows = append(rows, []string{"Last error", truncate(status.Worker.LastError, 60)})
	}
	if status.PID != 0 {
		rows = append(rows, []string{"Daemon PID", fmt.Sprintf("%d", status.PID)})
	}
	return rows
}
