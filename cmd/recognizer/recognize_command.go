package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"recognizer/internal/api"
	"recognizer/internal/daemonrun"
	"recognizer/internal/queue"
)

func newRecognizeCommand(ctx *commandContext) *cobra.Command {
	var allUnparented bool
	var verbose bool
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "recognize [id...]",
		Short: "Recognize documents in-process and wait for the queue to drain",
		Long: "Enqueue the given attachment ids (or every top-level PDF with --all-unparented),\n" +
			"process them one at a time, and print the resulting rows.",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(formatFlag)
			if err != nil {
				return err
			}
			if allUnparented == (len(args) > 0) {
				return errors.New("pass either item ids or --all-unparented")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := daemonrun.NewRuntime(runCtx, cfg, ctx.commandLogger(verbose))
			if err != nil {
				return err
			}
			defer func() {
				stop()
				_ = rt.Close()
			}()

			ids, err := recognizeTargets(runCtx, cmd, rt, args, allUnparented)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to recognize")
				return nil
			}

			progress := cmd.ErrOrStderr()
			rt.Table.On(queue.EventRowUpdated, func(n queue.Notification) {
				if n.Row.Message != "" {
					fmt.Fprintf(progress, "[%d] %s: %s\n", n.Row.ID, n.Row.Status, n.Row.Message)
				} else {
					fmt.Fprintf(progress, "[%d] %s\n", n.Row.ID, n.Row.Status)
				}
			})

			rt.Manager.Enqueue(runCtx, ids)
			rt.Manager.Wait()
			if err := runCtx.Err(); err != nil {
				fmt.Fprintln(progress, "Interrupted; unprocessed rows were left queued")
			}

			resp := api.RowsResponse{
				Rows:      api.FromRows(rt.Table.ListRows()),
				Total:     rt.Table.CountTotal(),
				Processed: rt.Table.CountProcessed(),
			}
			if handled, err := writeStructured(cmd, format, resp); handled {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderRows(resp.Rows, shouldColorize(out)))
			fmt.Fprintf(out, "Processed %d of %d\n", resp.Processed, resp.Total)
			return nil
		},
	}
	cmd.Flags().BoolVar(&allUnparented, "all-unparented", false, "Recognize every top-level PDF attachment in the library")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline progress to stderr")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "table", "Output format: table, json, or yaml")
	return cmd
}

// recognizeTargets resolves the ids to enqueue. Explicit ids that exist but
// are not top-level PDF attachments are skipped with a note; unknown ids are
// kept so their rows report the missing file.
func recognizeTargets(ctx context.Context, cmd *cobra.Command, rt *daemonrun.Runtime, args []string, all bool) ([]int64, error) {
	if all {
		items, err := rt.Store.ListRecognizable(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]int64, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}
		return ids, nil
	}

	requested, err := parseIDs(args)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(requested))
	for _, id := range requested {
		item, err := rt.Store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if item != nil && !item.IsRecognizable() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipping item %d: not a top-level PDF attachment\n", id)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
