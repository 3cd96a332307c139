package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"transcript-api/internal/transcript"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	opts := &transcriptOptions{}

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a JSON segment array to another format",
		Long: "Read transcript segments ({text, start, duration} objects) from a file or stdin, " +
			"optionally merge overlapping segments, and write them in the requested format.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := transcript.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read segments: %w", err)
			}
			var seq transcript.Sequence
			if err := json.Unmarshal(data, &seq); err != nil {
				return fmt.Errorf("decode segments: %w", err)
			}

			if opts.optimize {
				seq = ctx.optimizer().Optimize(seq)
			}
			body, err := transcript.Encode(seq, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}

	opts.register(cmd)
	return cmd
}
