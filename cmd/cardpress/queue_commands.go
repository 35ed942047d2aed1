package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cardpress/internal/runlog"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the run ledger",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueResetCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(listStatuses)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *runlog.Store) error {
				items, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "Ledger is empty")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					detail := item.ErrorMessage
					if item.ReviewReason != "" {
						detail = item.ReviewReason
					}
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.SetID,
						item.SetName,
						item.Language,
						string(item.Status),
						formatOutputs(item.OutputsJSON),
						detail,
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"ID", "Set", "Name", "Language", "Status", "Outputs", "Detail"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Only list pairs with the given status (repeatable)")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearStatuses []string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove ledger pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(clearStatuses)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *runlog.Store) error {
				removed, err := store.Clear(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d pair(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&clearStatuses, "status", nil, "Only clear pairs with the given status (repeatable)")
	return cmd
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Reset failed and review pairs to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runlog.Store) error {
				reset, err := store.RetryFailed(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %d pair(s) for retry\n", reset)
				return nil
			})
		},
	}
}

func newQueueResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Roll interrupted pairs back to their last stable status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runlog.Store) error {
				reset, err := store.ResetProcessing(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d pair(s)\n", reset)
				return nil
			})
		},
	}
}

func parseStatuses(values []string) ([]runlog.Status, error) {
	statuses := make([]runlog.Status, 0, len(values))
	for _, value := range values {
		status, ok := runlog.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", value)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
