package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cardpress/internal/runlog"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a summary of the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runlog.Store) error {
				summary, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					encoder := json.NewEncoder(cmd.OutOrStdout())
					encoder.SetIndent("", "  ")
					return encoder.Encode(summary)
				}

				out := cmd.OutOrStdout()
				if summary.Total == 0 {
					fmt.Fprintln(out, "No pairs recorded yet; run `cardpress run` first.")
					return nil
				}

				colorize := shouldColorize(out)
				rows := [][]string{
					{"Total", strconv.Itoa(summary.Total)},
					{"Pending", strconv.Itoa(summary.Pending)},
					{"Processing", strconv.Itoa(summary.Processing)},
					{colorLabel("Completed", summary.Completed, ansiGreen, colorize), strconv.Itoa(summary.Completed)},
					{colorLabel("Failed", summary.Failed, ansiRed, colorize), strconv.Itoa(summary.Failed)},
					{colorLabel("Review", summary.Review, ansiYellow, colorize), strconv.Itoa(summary.Review)},
				}
				fmt.Fprint(out, renderTable([]string{"State", "Pairs"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the summary as JSON")
	return cmd
}

func colorLabel(label string, count int, color string, colorize bool) string {
	if !colorize || count == 0 {
		return label
	}
	return color + label + ansiReset
}

func formatOutputs(outputsJSON string) string {
	if strings.TrimSpace(outputsJSON) == "" {
		return ""
	}
	var outputs map[string]string
	if err := json.Unmarshal([]byte(outputsJSON), &outputs); err != nil {
		return ""
	}
	classes := make([]string, 0, len(outputs))
	for class := range outputs {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return strings.Join(classes, ",")
}
