package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"ocrsub/internal/srt"
)

func newShowCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "show <file.srt>",
		Short:       "Print the cues of an SRT file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			cues, err := srt.ReadFile(path)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, cuesJSON(cues))
			}
			out := cmd.OutOrStdout()
			if len(cues) == 0 {
				fmt.Fprintf(out, "%s has no cues\n", path)
				return nil
			}
			fmt.Fprintln(out, renderTable(cueColumns, cueRows(cues)))
			fmt.Fprintf(out, "%d cues, %s total\n", len(cues), formatSeconds(totalDuration(cues)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output cues as JSON")
	return cmd
}

func totalDuration(cues []srt.Cue) time.Duration {
	var total time.Duration
	for _, cue := range cues {
		total += cue.Duration()
	}
	return total
}

func cueRows(cues []srt.Cue) [][]string {
	rows := make([][]string, 0, len(cues))
	for _, cue := range cues {
		rows = append(rows, []string{
			strconv.Itoa(cue.Index),
			srt.FormatTimestamp(cue.Start),
			srt.FormatTimestamp(cue.End),
			formatSeconds(cue.Duration()),
			cue.Text,
		})
	}
	return rows
}

var cueColumns = []column{
	right("#"),
	left("Start"),
	left("End"),
	right("Duration"),
	wrapped("Text", 60),
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64) + "s"
}
