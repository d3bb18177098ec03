package frames

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// Frame is one recognition result.
type Frame struct {
	Timestamp  time.Duration
	Text       string
	Confidence float64
}

// Source yields frames in timestamp order and returns io.EOF when exhausted.
type Source interface {
	Next() (Frame, error)
}

// Ender is implemented by sources that know where the stream ends. The value
// is reliable once Next has returned io.EOF.
type Ender interface {
	End() (time.Duration, bool)
}

// Progresser is implemented by sources that can estimate how much of the
// input has been consumed, as a fraction in [0, 1]. Negative means unknown.
type Progresser interface {
	Progress() float64
}

// ErrMalformed is wrapped by every *ParseError.
var ErrMalformed = errors.New("malformed frame input")

// ParseError reports a malformed input line.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("frames line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// SliceSource serves frames from memory.
type SliceSource struct {
	frames []Frame
	end    time.Duration
	hasEnd bool
	pos    int
}

// NewSliceSource returns a source over frames. A negative end means unknown.
func NewSliceSource(frames []Frame, end time.Duration) *SliceSource {
	return &SliceSource{frames: frames, end: end, hasEnd: end >= 0}
}

func (s *SliceSource) Next() (Frame, error) {
	if s.pos >= len(s.frames) {
		return Frame{}, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

func (s *SliceSource) End() (time.Duration, bool) {
	return s.end, s.hasEnd
}

func (s *SliceSource) Progress() float64 {
	if len(s.frames) == 0 {
		return 1
	}
	return float64(s.pos) / float64(len(s.frames))
}

// Total returns the number of frames.
func (s *SliceSource) Total() int {
	return len(s.frames)
}

// WithEnd wraps src so End reports end regardless of what src declares.
// Progress is forwarded when src implements Progresser.
func WithEnd(src Source, end time.Duration) Source {
	return &endOverride{Source: src, end: end}
}

type endOverride struct {
	Source
	end time.Duration
}

func (s *endOverride) End() (time.Duration, bool) {
	return s.end, true
}

func (s *endOverride) Progress() float64 {
	if p, ok := s.Source.(Progresser); ok {
		return p.Progress()
	}
	return -1
}

// ReadAll drains src.
func ReadAll(src Source) ([]Frame, error) {
	var out []Frame
	for {
		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
}

func checkConfidence(line int, confidence float64) error {
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return &ParseError{Line: line, Reason: fmt.Sprintf("confidence %v outside [0, 1]", confidence)}
	}
	return nil
}

func millisToDuration(v float64) time.Duration {
	return time.Duration(v * float64(time.Millisecond)).Round(time.Microsecond)
}
