package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"transcript-api/internal/youtube"
)

func newTracksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks <url-or-id>",
		Short: "List the caption tracks of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			id, err := youtube.ExtractVideoID(args[0])
			if err != nil {
				return err
			}
			log, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			supplier, err := ctx.supplier(log)
			if err != nil {
				return err
			}

			tracks, err := supplier.ListTracks(cmd.Context(), id)
			if err != nil {
				return err
			}
			selected, selErr := youtube.SelectTrack(tracks, cfg.YouTube.Languages)

			rows := make([][]string, 0, len(tracks))
			for _, t := range tracks {
				kind := "manual"
				if t.Generated {
					kind = "generated"
				}
				mark := ""
				if selErr == nil && t == selected {
					mark = "*"
				}
				rows = append(rows, []string{mark, t.LanguageCode, t.Name, kind, yesNo(t.Translatable)})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"", "Language", "Name", "Kind", "Translatable"}, rows))
			if selErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "No track matches the configured languages %v\n", cfg.YouTube.Languages)
			}
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
