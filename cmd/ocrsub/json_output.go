package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"ocrsub/internal/srt"
)

// writeJSON encodes v as indented JSON to the command's stdout. Cue text is
// written unescaped.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

type cueJSON struct {
	Index   int    `json:"index"`
	Start   string `json:"start"`
	End     string `json:"end"`
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

func cuesJSON(cues []srt.Cue) []cueJSON {
	out := make([]cueJSON, 0, len(cues))
	for _, cue := range cues {
		out = append(out, cueJSON{
			Index:   cue.Index,
			Start:   srt.FormatTimestamp(cue.Start),
			End:     srt.FormatTimestamp(cue.End),
			StartMS: cue.Start.Milliseconds(),
			EndMS:   cue.End.Milliseconds(),
			Text:    cue.Text,
		})
	}
	return out
}
