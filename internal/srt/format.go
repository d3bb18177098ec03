package srt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"
)

// FormatTimestamp renders d as HH:MM:SS,mmm, truncating to whole milliseconds.
// Negative durations render as zero.
func FormatTimestamp(d time.Duration) string {
	total := d.Milliseconds()
	if total < 0 {
		total = 0
	}
	hours := total / 3_600_000
	minutes := (total % 3_600_000) / 60_000
	seconds := (total % 60_000) / 1000
	millis := total % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// Encode writes cues to w in SRT form using each cue's Index.
func Encode(w io.Writer, cues []Cue) error {
	bw := bufio.NewWriter(w)
	for _, cue := range cues {
		bw.WriteString(strconv.Itoa(cue.Index))
		bw.WriteByte('\n')
		bw.WriteString(FormatTimestamp(cue.Start))
		bw.WriteString(" --> ")
		bw.WriteString(FormatTimestamp(cue.End))
		bw.WriteByte('\n')
		bw.WriteString(cue.Text)
		bw.WriteString("\n\n")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// Format returns the SRT encoding of cues.
func Format(cues []Cue) []byte {
	var buf bytes.Buffer
	_ = Encode(&buf, cues)
	return buf.Bytes()
}
