package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Arsalank7862/caffeine-chronicles/internal/ledger"
	"github.com/Arsalank7862/caffeine-chronicles/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipUpload bool
	var contentOnly bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Select, render, and publish the next episode",
		RunE: func(cmd *cobra.Command, args []string) error {
			if skipUpload && contentOnly {
				return errors.New("--skip-upload and --content-only are mutually exclusive")
			}
			mode := pipeline.ModeFull
			switch {
			case contentOnly:
				mode = pipeline.ModeContentOnly
			case skipUpload:
				mode = pipeline.ModeSkipUpload
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			pipe, err := pipeline.New(cfg, logger, store)
			if err != nil {
				return err
			}

			result, err := pipe.Run(cmd.Context(), mode)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Episode #%d (%s)\n", result.Episode.Number, result.Episode.Kind)
			fmt.Fprintf(out, "Artifact: %s\n", result.ArtifactPath)
			if result.VideoPath != "" {
				fmt.Fprintf(out, "Video: %s\n", result.VideoPath)
			}
			switch {
			case result.VideoID != "":
				fmt.Fprintf(out, "Published: %s\n", result.VideoURL)
			case mode == pipeline.ModeSkipUpload:
				fmt.Fprintln(out, "Upload skipped")
			case mode == pipeline.ModeContentOnly:
				fmt.Fprintln(out, "Content-only run; render and upload skipped")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipUpload, "skip-upload", false, "Render the video but do not upload it")
	cmd.Flags().BoolVar(&contentOnly, "content-only", false, "Stop after writing the episode artifact")
	return cmd
}
