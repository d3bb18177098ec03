package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ocrsub/internal/textnorm"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "normalize [text]",
		Short: "Show how raw recognition text is cleaned before segmentation",
		Long: "Normalize strips noise characters and applies the correction table.\n" +
			"Without an argument every line of stdin is normalized.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			normalizer, err := textnorm.FromConfig(cfg.Normalize)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				stripped := normalizer.StripNoise(args[0])
				if !verbose {
					fmt.Fprintln(out, normalizer.ApplyCorrections(stripped))
					return nil
				}
				fmt.Fprintf(out, "raw:        %q\n", args[0])
				fmt.Fprintf(out, "stripped:   %q\n", stripped)
				fmt.Fprintf(out, "normalized: %q\n", normalizer.ApplyCorrections(stripped))
				return nil
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				fmt.Fprintln(out, normalizer.Normalize(strings.TrimRight(scanner.Text(), "\r")))
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the stripped form as well")
	return cmd
}
