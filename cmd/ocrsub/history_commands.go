package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ocrsub/internal/runstore"
	"ocrsub/internal/srt"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded extraction runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryExportCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))

	return historyCmd
}

type runJSON struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	Output        string    `json:"output,omitempty"`
	Status        string    `json:"status"`
	MinSentenceMS int       `json:"min_sentence_ms"`
	Frames        int       `json:"frames"`
	Cues          int       `json:"cues"`
	Dropped       int       `json:"dropped"`
	Error         string    `json:"error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at,omitzero"`
}

func toRunJSON(run runstore.Run) runJSON {
	return runJSON{
		ID:            run.ID,
		Source:        run.Source,
		Output:        run.Output,
		Status:        string(run.Status),
		MinSentenceMS: run.MinSentenceMS,
		Frames:        run.Frames,
		Cues:          run.Cues,
		Dropped:       run.Dropped,
		Error:         run.Error,
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
	}
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runstore.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					out := make([]runJSON, 0, len(runs))
					for _, run := range runs {
						out = append(out, toRunJSON(run))
					}
					return writeJSON(cmd, out)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.ShortID(),
						string(run.Status),
						filepath.Base(run.Source),
						strconv.Itoa(run.Cues),
						strconv.Itoa(run.Frames),
						humanize.Time(run.StartedAt),
						formatElapsed(run),
					})
				}
				columns := []column{left("ID"), left("Status"), wrapped("Source", 40), right("Cues"), right("Frames"), left("Started"), right("Took")}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(columns, rows))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run and its cues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runstore.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				cues, err := store.Cues(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, struct {
						runJSON
						CueList []cueJSON `json:"cue_list"`
					}{toRunJSON(*run), cuesJSON(cues)})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Status:   %s\n", run.Status)
				fmt.Fprintf(out, "Source:   %s\n", run.Source)
				if run.Output != "" {
					fmt.Fprintf(out, "Output:   %s\n", run.Output)
				}
				fmt.Fprintf(out, "Started:  %s (%s)\n", run.StartedAt.Local().Format(time.DateTime), humanize.Time(run.StartedAt))
				if !run.FinishedAt.IsZero() {
					fmt.Fprintf(out, "Took:     %s\n", formatElapsed(*run))
				}
				fmt.Fprintf(out, "Frames:   %d  Cues: %d  Dropped: %d  Min sentence: %dms\n", run.Frames, run.Cues, run.Dropped, run.MinSentenceMS)
				if run.Error != "" {
					fmt.Fprintf(out, "Error:    %s\n", run.Error)
				}
				if len(cues) > 0 {
					fmt.Fprintln(out, renderTable(cueColumns, cueRows(cues)))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run as JSON")
	return cmd
}

func newHistoryExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Write the cues of a completed run to an SRT file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolvePath(output)
			if err != nil {
				return fmt.Errorf("--output: %w", err)
			}
			return ctx.withStore(func(store *runstore.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run.Status != runstore.StatusCompleted {
					return fmt.Errorf("run %s is %s; only completed runs can be exported", run.ShortID(), run.Status)
				}
				cues, err := store.Cues(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if err := srt.WriteFile(cmd.Context(), target, cues); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cues from run %s to %s\n", len(cues), run.ShortID(), target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "SRT destination")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return fmt.Errorf("--keep must not be negative")
			}
			return ctx.withStore(func(store *runstore.Store) error {
				removed, err := store.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", humanize.Plural(removed, "run", "runs"))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 50, "Number of most recent runs to keep")
	return cmd
}

func formatElapsed(run runstore.Run) string {
	if run.FinishedAt.IsZero() {
		return "-"
	}
	return run.Elapsed().Round(time.Millisecond).String()
}
