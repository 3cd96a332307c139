package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"transcript-api/handlers"
	"transcript-api/internal/transcript"
	"transcript-api/internal/worker"
	"transcript-api/internal/youtube"
)

type transcriptOptions struct {
	format   string
	optimize bool
}

func (o *transcriptOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", string(transcript.FormatJSON), "Output format: json, srt or text")
	cmd.Flags().BoolVar(&o.optimize, "optimize", false, "Merge overlapping caption segments")
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	opts := &transcriptOptions{}
	var workers int
	var outDir string

	cmd := &cobra.Command{
		Use:   "fetch <url-or-id>...",
		Short: "Download transcripts from YouTube",
		Long: "Download the transcript of one or more videos. A single video is written to stdout; " +
			"several videos are fetched concurrently and written to <out-dir>/<video-id>.<ext>.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := transcript.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			ids, err := videoIDs(args)
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

			job := fetchJob{
				supplier:  supplier,
				optimizer: ctx.optimizer(),
				optimize:  opts.optimize,
				format:    format,
			}

			if len(ids) == 1 {
				job.videoID = ids[0]
				body, err := job.render(cmd.Context())
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			d := worker.NewDispatcher(workers, len(ids), log)
			d.Run(cmd.Context())

			failed := make(chan int, 1)
			go func() {
				n := 0
				for r := range d.Results {
					if r.Err != nil {
						n++
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.JobID, r.Err)
						continue
					}
					fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(outDir, r.JobID+format.Extension()))
				}
				failed <- n
			}()

			for _, id := range ids {
				j := job
				j.videoID = id
				j.path = filepath.Join(outDir, id+format.Extension())
				if err := d.SubmitJob(&j); err != nil {
					d.Stop()
					<-failed
					return err
				}
			}
			d.Stop()

			if n := <-failed; n > 0 {
				return fmt.Errorf("%d of %d transcripts failed", n, len(ids))
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Concurrent downloads when fetching several videos")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "Directory for transcripts when fetching several videos")
	return cmd
}

// videoIDs resolves every reference, dropping duplicates.
func videoIDs(refs []string) ([]string, error) {
	seen := make(map[string]bool, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := youtube.ExtractVideoID(ref)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// fetchJob fetches, optionally optimizes and encodes one transcript. With a
// path set it runs as a worker job and writes the result to that file.
type fetchJob struct {
	videoID   string
	path      string
	supplier  handlers.TranscriptSupplier
	optimizer transcript.Optimizer
	optimize  bool
	format    transcript.Format
}

func (j *fetchJob) ID() string { return j.videoID }

func (j *fetchJob) Execute(ctx context.Context) error {
	body, err := j.render(ctx)
	if err != nil {
		return err
	}
	return os.WriteFile(j.path, body, 0o644)
}

func (j *fetchJob) render(ctx context.Context) ([]byte, error) {
	seq, err := j.supplier.FetchTranscript(ctx, j.videoID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", j.videoID, err)
	}
	if j.optimize {
		seq = j.optimizer.Optimize(seq)
	}
	return transcript.Encode(seq, j.format)
}
