package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Arsalank7862/caffeine-chronicles/internal/bank"
	"github.com/Arsalank7862/caffeine-chronicles/internal/ledger"
	"github.com/Arsalank7862/caffeine-chronicles/internal/rotation"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show rotation progress and the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			contentBank, err := bank.Load(cfg)
			if err != nil {
				return err
			}
			state, err := rotation.LoadState(cfg.StatePath())
			if err != nil {
				return err
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			last, err := store.Last(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, statusReport(cfg.Content.ShopInterval, contentBank, state, last))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Episode: %d\n", state.Episode)
			fmt.Fprintf(out, "Facts used: %d/%d\n", len(state.UsedFacts), contentBank.Facts.Len())
			fmt.Fprintf(out, "Shops used: %d/%d\n", len(state.UsedShops), contentBank.Shops.Len())
			fmt.Fprintf(out, "Next shop episode: %d\n", nextShopEpisode(state.Episode, cfg.Content.ShopInterval))
			if last == nil {
				fmt.Fprintln(out, "Last run: none")
				return nil
			}
			fmt.Fprintf(out, "Last run: episode %d, %s (%s)\n", last.Episode, last.Status, last.UpdatedAt.Format(time.RFC3339))
			if last.Status == ledger.StatusFailed {
				fmt.Fprintf(out, "Last failure: %s: %s\n", last.ErrorCategory, last.ErrorMessage)
			}
			if last.VideoID != "" {
				fmt.Fprintf(out, "Last video: https://youtube.com/shorts/%s\n", last.VideoID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit status as JSON")
	return cmd
}

// nextShopEpisode returns the first episode number after current that
// falls on the shop interval.
func nextShopEpisode(current, interval int) int {
	if interval < 1 {
		interval = 1
	}
	next := current + 1
	if rem := next % interval; rem != 0 {
		next += interval - rem
	}
	return next
}

type statusPayload struct {
	Episode         int            `json:"episode"`
	FactsUsed       int            `json:"facts_used"`
	FactsTotal      int            `json:"facts_total"`
	ShopsUsed       int            `json:"shops_used"`
	ShopsTotal      int            `json:"shops_total"`
	NextShopEpisode int            `json:"next_shop_episode"`
	LastRun         *lastRunResult `json:"last_run,omitempty"`
}

type lastRunResult struct {
	RunID         string `json:"run_id"`
	Episode       int    `json:"episode"`
	Status        string `json:"status"`
	VideoID       string `json:"video_id,omitempty"`
	ErrorCategory string `json:"error_category,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
	UpdatedAt     string `json:"updated_at"`
}

func statusReport(interval int, contentBank *bank.Bank, state rotation.State, last *ledger.Record) statusPayload {
	payload := statusPayload{
		Episode:         state.Episode,
		FactsUsed:       len(state.UsedFacts),
		FactsTotal:      contentBank.Facts.Len(),
		ShopsUsed:       len(state.UsedShops),
		ShopsTotal:      contentBank.Shops.Len(),
		NextShopEpisode: nextShopEpisode(state.Episode, interval),
	}
	if last != nil {
		payload.LastRun = &lastRunResult{
			RunID:         last.RunID,
			Episode:       last.Episode,
			Status:        string(last.Status),
			VideoID:       last.VideoID,
			ErrorCategory: last.ErrorCategory,
			ErrorMessage:  last.ErrorMessage,
			UpdatedAt:     last.UpdatedAt.Format(time.RFC3339),
		}
	}
	return payload
}
