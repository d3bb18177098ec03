package srt

import (
	"fmt"
	"strings"
	"time"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	// SeverityInfo marks layouts the segmenter produces on purpose.
	SeverityInfo Severity = "info"
)

// Issue kinds reported by Validate.
const (
	IssueIndexSequence = "index_sequence"
	IssueInverted      = "inverted_timing"
	IssueOverlap       = "overlap"
	IssueBackToBack    = "back_to_back"
	IssueShort         = "short_cue"
	IssueEmptyText     = "empty_text"
)

// Issue describes a problem with one cue. Position is the 1-based position in
// the slice, which may differ from the cue's Index.
type Issue struct {
	Position int
	Kind     string
	Severity Severity
	Detail   string
}

func (i Issue) String() string {
	return fmt.Sprintf("cue %d: %s (%s): %s", i.Position, i.Kind, i.Severity, i.Detail)
}

// Validate checks a cue list for structural problems. Cues shorter than
// minDuration are reported as warnings; pass 0 to skip that check. Cues that
// start exactly where the previous one ends are reported as info: the
// segmenter opens a new cue at the timestamp that closed the previous one
// whenever the caption changes.
func Validate(cues []Cue, minDuration time.Duration) []Issue {
	var issues []Issue
	add := func(pos int, kind string, sev Severity, format string, args ...any) {
		issues = append(issues, Issue{Position: pos, Kind: kind, Severity: sev, Detail: fmt.Sprintf(format, args...)})
	}

	for i, cue := range cues {
		pos := i + 1
		if cue.Index != pos {
			add(pos, IssueIndexSequence, SeverityError, "index %d, expected %d", cue.Index, pos)
		}
		if cue.Start >= cue.End {
			add(pos, IssueInverted, SeverityError, "start %s is not before end %s", FormatTimestamp(cue.Start), FormatTimestamp(cue.End))
		} else if minDuration > 0 && cue.Duration() < minDuration {
			add(pos, IssueShort, SeverityWarning, "lasts %s, below %s", cue.Duration(), minDuration)
		}
		if strings.TrimSpace(cue.Text) == "" {
			add(pos, IssueEmptyText, SeverityError, "no text")
		}
		if i == 0 {
			continue
		}
		prev := cues[i-1]
		switch {
		case cue.Start < prev.End:
			add(pos, IssueOverlap, SeverityError, "starts at %s before cue %d ends at %s", FormatTimestamp(cue.Start), i, FormatTimestamp(prev.End))
		case cue.Start == prev.End:
			add(pos, IssueBackToBack, SeverityInfo, "starts exactly when cue %d ends", i)
		}
	}
	return issues
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	return Count(issues, SeverityError) > 0
}

// Count returns the number of issues with severity sev.
func Count(issues []Issue, sev Severity) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}
