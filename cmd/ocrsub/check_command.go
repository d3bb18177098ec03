package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ocrsub/internal/srt"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check <file.srt>",
		Short: "Parse an SRT file strictly and report structural problems",
		Long: `Parse an SRT file strictly and report structural problems.

Errors (overlaps, inverted timing, bad numbering, empty text) always fail.
Warnings (cues shorter than min_sentence_time_ms) fail only with --strict.
Back-to-back cues are listed as info and never fail: extract produces them
whenever one caption replaces another without a gap.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			cues, err := srt.ReadFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			issues := srt.Validate(cues, cfg.MinSentenceTime())
			for _, issue := range issues {
				fmt.Fprintln(out, issue.String())
			}

			errs := srt.Count(issues, srt.SeverityError)
			warnings := srt.Count(issues, srt.SeverityWarning)
			if errs > 0 || (strict && warnings > 0) {
				return fmt.Errorf("%s: %d issue(s) found", path, errs+warnings)
			}
			if warnings > 0 {
				fmt.Fprintf(out, "%s: %d cues, %d warning(s)\n", path, len(cues), warnings)
				return nil
			}
			if len(cues) == 0 {
				fmt.Fprintf(out, "%s: no cues\n", path)
				return nil
			}
			fmt.Fprintf(out, "%s: %d cues OK\n", path, len(cues))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings (short cues) as well as errors")
	return cmd
}
