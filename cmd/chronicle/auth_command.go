package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Arsalank7862/caffeine-chronicles/internal/services/youtube"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Verify YouTube upload credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			creds, err := youtube.LoadCredentials(cfg.YouTube.TokenFile)
			if err != nil {
				if errors.Is(err, youtube.ErrNoCredentials) {
					fmt.Fprintln(out, "No credentials found.")
					fmt.Fprintln(out, "")
					fmt.Fprintln(out, "Provide OAuth refresh-token credentials one of two ways:")
					fmt.Fprintln(out, "  1. Environment (or .env): YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, YOUTUBE_REFRESH_TOKEN")
					if cfg.YouTube.TokenFile != "" {
						fmt.Fprintf(out, "  2. Token file at %s with client_id, client_secret, refresh_token\n", cfg.YouTube.TokenFile)
					} else {
						fmt.Fprintln(out, "  2. A token file (set youtube.token_file in the config)")
					}
					fmt.Fprintln(out, "")
					fmt.Fprintln(out, "Obtain the refresh token once via the Google OAuth consent flow with the youtube.upload scope.")
				}
				return err
			}

			if err := creds.Verify(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "Credentials OK: access token minted successfully")
			return nil
		},
	}
}
