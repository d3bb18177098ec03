package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ocrsub/internal/config"
	"ocrsub/internal/extract"
	"ocrsub/internal/frames"
	"ocrsub/internal/logging"
	"ocrsub/internal/runstore"
	"ocrsub/internal/similarity"
	"ocrsub/internal/srt"
	"ocrsub/internal/textnorm"
)

type extractOptions struct {
	output        string
	format        string
	duration      string
	minSentenceMS int
	noHistory     bool
	jsonOutput    bool
}

type extractSummary struct {
	RunID     string  `json:"run_id,omitempty"`
	Input     string  `json:"input"`
	Output    string  `json:"output"`
	Format    string  `json:"format"`
	Frames    int     `json:"frames"`
	Cues      int     `json:"cues"`
	Dropped   int     `json:"dropped"`
	EndMS     int64   `json:"end_ms"`
	ElapsedMS int64   `json:"elapsed_ms"`
	Coverage  float64 `json:"coverage"`
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract <frames-file>",
		Short: "Segment a recognition stream into an SRT file",
		Long: "Extract reads timestamped recognition results (JSONL or frame log),\n" +
			"normalizes and segments them into cues and writes an SRT file next to\n" +
			"the input unless --output is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min-sentence-ms") && opts.minSentenceMS <= 0 {
				return fmt.Errorf("--min-sentence-ms must be positive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			summary, err := runExtract(cmd, cfg, logger, args[0], opts)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d cues to %s\n", summary.Cues, summary.Output)
			fmt.Fprintf(out, "Frames: %d  Dropped: %d  Coverage: %.1f%%\n", summary.Frames, summary.Dropped, summary.Coverage*100)
			if summary.RunID != "" {
				fmt.Fprintf(out, "Run: %s\n", summary.RunID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "SRT destination (default: input with .srt extension)")
	cmd.Flags().StringVar(&opts.format, "format", "auto", "Input format: auto, jsonl or log")
	cmd.Flags().StringVar(&opts.duration, "duration", "", "Stream duration used to close the final cue (1m35s or H:MM:SS)")
	cmd.Flags().IntVar(&opts.minSentenceMS, "min-sentence-ms", 0, "Override the minimum cue duration in milliseconds")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this run in the history database")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

func runExtract(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, inputArg string, opts extractOptions) (*extractSummary, error) {
	input, err := resolvePath(inputArg)
	if err != nil {
		return nil, err
	}
	format, err := frames.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}
	output := defaultOutputPath(input)
	if opts.output != "" {
		if output, err = resolvePath(opts.output); err != nil {
			return nil, err
		}
	}
	if output == input {
		return nil, fmt.Errorf("output %s would overwrite the input", output)
	}

	minimum := cfg.MinSentenceTime()
	if opts.minSentenceMS > 0 {
		minimum = time.Duration(opts.minSentenceMS) * time.Millisecond
	}
	normalizer, err := textnorm.FromConfig(cfg.Normalize)
	if err != nil {
		return nil, err
	}
	classifier := similarity.New(similarity.OptionsFromConfig(cfg.Similarity))

	file, err := frames.Open(input, format)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var src frames.Source = file
	if opts.duration != "" {
		end, err := parseStreamDuration(opts.duration)
		if err != nil {
			return nil, err
		}
		src = frames.WithEnd(file, end)
	}

	runCtx := logging.WithSource(cmd.Context(), input)
	if ignored := recognitionOverrides(cfg); len(ignored) > 0 {
		logging.WarnWithContext(logging.WithContext(runCtx, logger), "recognition settings do not apply to frame files", "recognition_settings_ignored",
			logging.String("sections", strings.Join(ignored, ",")),
			logging.String(logging.FieldErrorHint, "frame files hold readings that were already sampled and cropped; change the sampler instead"),
			logging.String(logging.FieldImpact, "every reading in the file was used"),
		)
	}
	var (
		store *runstore.Store
		run   *runstore.Run
	)
	if cfg.History.Enabled && !opts.noHistory {
		store, err = runstore.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		run, err = store.Begin(runCtx, runstore.BeginParams{
			Source:        input,
			Output:        output,
			MinSentenceMS: int(minimum / time.Millisecond),
		})
		if err != nil {
			return nil, err
		}
		runCtx = logging.WithRunID(runCtx, run.ID)
	}

	started := time.Now()
	reporter := newProgressReporter(cmd.ErrOrStderr(), logging.WithContext(runCtx, logger))
	task := extract.Start(runCtx, src, extract.Options{
		Normalizer:      normalizer,
		Classifier:      classifier,
		MinSentenceTime: minimum,
		Logger:          logger,
	})
	for event := range task.Events() {
		reporter.Update(event)
	}
	reporter.Finish()

	result, err := task.Wait()
	if err == nil {
		err = srt.WriteFile(runCtx, output, result.Cues)
	}
	if err != nil {
		if run != nil {
			recordFailure(runCtx, store, run, err, logger)
		}
		return nil, err
	}

	summary := &extractSummary{
		Input:     input,
		Output:    output,
		Format:    string(file.Format()),
		Frames:    result.Stats.Frames,
		Cues:      len(result.Cues),
		Dropped:   result.Stats.Dropped,
		EndMS:     result.End.Milliseconds(),
		ElapsedMS: time.Since(started).Milliseconds(),
		Coverage:  coverage(result),
	}
	if run != nil {
		summary.RunID = run.ID
		err := store.Complete(runCtx, run.ID, runstore.Summary{Frames: summary.Frames, Dropped: summary.Dropped}, result.Cues)
		if err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
	}
	return summary, nil
}

// recordFailure marks the run failed even when the command was cancelled.
func recordFailure(ctx context.Context, store *runstore.Store, run *runstore.Run, cause error, logger *slog.Logger) {
	if err := store.Fail(context.WithoutCancel(ctx), run.ID, cause); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, logger), "failed to record run failure", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run stays marked as running in history"),
		)
	}
}

// coverage is the share of the stream covered by cues.
func coverage(result *extract.Result) float64 {
	if result.End <= 0 {
		return 0
	}
	var covered time.Duration
	for _, cue := range result.Cues {
		covered += cue.Duration()
	}
	return float64(covered) / float64(result.End)
}
