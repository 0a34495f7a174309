package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Arsalank7862/caffeine-chronicles/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				rows := make([]lastRunResult, 0, len(records))
				for _, record := range records {
					rows = append(rows, lastRunResult{
						RunID:         record.RunID,
						Episode:       record.Episode,
						Status:        string(record.Status),
						VideoID:       record.VideoID,
						ErrorCategory: record.ErrorCategory,
						ErrorMessage:  record.ErrorMessage,
						UpdatedAt:     record.UpdatedAt.Format(time.RFC3339),
					})
				}
				return writeJSON(cmd, rows)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			colorize := shouldColorize(cmd.OutOrStdout())
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					strconv.Itoa(record.Episode),
					string(record.Kind),
					colorizeStatus(record.Status, colorize),
					record.VideoID,
					historyDetail(record),
					record.UpdatedAt.Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Episode", "Kind", "Status", "Video", "Detail", "Updated"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit history as JSON")
	return cmd
}

func historyDetail(record *ledger.Record) string {
	if record.Status == ledger.StatusFailed {
		return record.ErrorCategory
	}
	return ""
}
