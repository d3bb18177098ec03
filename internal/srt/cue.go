package srt

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cue is one subtitle entry.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Duration returns End - Start.
func (c Cue) Duration() time.Duration {
	return c.End - c.Start
}

// Store collects cues in emission order.
type Store struct {
	mu   sync.Mutex
	cues []Cue
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Emit appends a cue. Cues must arrive in non-decreasing start order with
// Start < End and non-empty text. Text is passed through CleanText.
func (s *Store) Emit(cue Cue) error {
	cue.Text = CleanText(cue.Text)
	if cue.Text == "" {
		return fmt.Errorf("emit cue at %s: empty text", FormatTimestamp(cue.Start))
	}
	if cue.Start >= cue.End {
		return fmt.Errorf("emit cue at %s: end %s not after start", FormatTimestamp(cue.Start), FormatTimestamp(cue.End))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.cues); n > 0 && cue.Start < s.cues[n-1].Start {
		return fmt.Errorf("emit cue at %s: starts before previous cue at %s", FormatTimestamp(cue.Start), FormatTimestamp(s.cues[n-1].Start))
	}
	cue.Index = len(s.cues) + 1
	s.cues = append(s.cues, cue)
	return nil
}

// Finalize reassigns sequential 1-based indices.
func (s *Store) Finalize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	Renumber(s.cues)
}

// Cues returns a copy of the stored cues.
func (s *Store) Cues() []Cue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Cue, len(s.cues))
	copy(out, s.cues)
	return out
}

// Len reports the number of stored cues.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cues)
}

// CleanText makes text representable inside one SRT block: line endings
// become LF and blank lines are removed, since a blank line ends a cue.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if !strings.Contains(text, "\n") {
		if strings.TrimSpace(text) == "" {
			return ""
		}
		return text
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Renumber rewrites cue indices to 1..n in place.
func Renumber(cues []Cue) {
	for i := range cues {
		cues[i].Index = i + 1
	}
}
