package segment

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"ocrsub/internal/logging"
	"ocrsub/internal/similarity"
	"ocrsub/internal/srt"
)

// DefaultMinSentenceTime is the shortest segment promoted to a cue.
const DefaultMinSentenceTime = 100 * time.Millisecond

var (
	// ErrOutOfOrder is returned when a timestamp precedes the previous one.
	ErrOutOfOrder = errors.New("frame timestamp out of order")
	// ErrFinalized is returned by calls made after Finalize.
	ErrFinalized = errors.New("accumulator already finalized")
)

// Sink receives finalized cues in non-decreasing start order. Cue indices are
// left zero; the sink owns numbering.
type Sink interface {
	Emit(cue srt.Cue) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(srt.Cue) error

func (f SinkFunc) Emit(cue srt.Cue) error { return f(cue) }

// Options configures an Accumulator.
type Options struct {
	MinSentenceTime time.Duration
	Classifier      *similarity.Classifier
	Logger          *slog.Logger
}

// Stats counts accumulator decisions.
type Stats struct {
	Frames       int
	Opened       int
	Emitted      int
	Dropped      int
	Merges       int
	Replacements int
}

// Accumulator is the segmentation state machine. It is not safe for
// concurrent use.
type Accumulator struct {
	sink       Sink
	classifier *similarity.Classifier
	minimum    time.Duration
	logger     *slog.Logger

	state     state
	last      time.Duration
	seen      bool
	finalized bool
	stats     Stats
}

// New returns an idle Accumulator emitting to sink.
func New(sink Sink, opts Options) *Accumulator {
	if opts.MinSentenceTime <= 0 {
		opts.MinSentenceTime = DefaultMinSentenceTime
	}
	if opts.Classifier == nil {
		opts.Classifier = similarity.New(similarity.DefaultOptions())
	}
	return &Accumulator{
		sink:       sink,
		classifier: opts.Classifier,
		minimum:    opts.MinSentenceTime,
		logger:     logging.NewComponentLogger(opts.Logger, "segment"),
		state:      idle{},
	}
}

// Observe feeds one normalized reading taken at ts.
func (a *Accumulator) Observe(ts time.Duration, text string, confidence float64) error {
	if err := a.advance(ts); err != nil {
		return err
	}
	a.stats.Frames++

	if text == "" {
		return a.close(ts)
	}

	cur, ok := a.state.(*active)
	if !ok {
		a.open(ts, text, confidence)
		return nil
	}

	if !a.classifier.IsSimilar(text, cur.text) {
		if err := a.close(ts); err != nil {
			return err
		}
		a.open(ts, text, confidence)
		return nil
	}

	if a.classifier.SameContent(text, cur.text) {
		cur.confidence = max(cur.confidence, confidence)
		if utf8.RuneCountInString(text) > utf8.RuneCountInString(cur.text) {
			cur.text = text
		}
		a.stats.Merges++
		return nil
	}

	if confidence > cur.confidence {
		a.logger.Debug("segment reading replaced",
			logging.Args(append(logging.DecisionAttrs("segment_text", "replaced", "higher confidence reading"),
				logging.String("previous", cur.text),
				logging.String("text", text),
				logging.Float64("confidence", confidence),
			)...)...,
		)
		cur.text = text
		cur.confidence = confidence
		a.stats.Replacements++
	}
	return nil
}

// Finalize closes the stream at end. It must be called exactly once.
func (a *Accumulator) Finalize(end time.Duration) error {
	if err := a.advance(end); err != nil {
		return err
	}
	a.finalized = true
	return a.close(end)
}

// Pending returns the open segment, if any.
func (a *Accumulator) Pending() (Pending, bool) {
	cur, ok := a.state.(*active)
	if !ok {
		return Pending{}, false
	}
	return Pending{Start: cur.start, Text: cur.text, Confidence: cur.confidence}, true
}

// Stats returns decision counters.
func (a *Accumulator) Stats() Stats {
	return a.stats
}

func (a *Accumulator) advance(ts time.Duration) error {
	if a.finalized {
		return ErrFinalized
	}
	if a.seen && ts < a.last {
		return fmt.Errorf("%w: %s after %s", ErrOutOfOrder, ts, a.last)
	}
	a.last = ts
	a.seen = true
	return nil
}

func (a *Accumulator) open(ts time.Duration, text string, confidence float64) {
	a.state = &active{start: ts, text: text, confidence: confidence}
	a.stats.Opened++
}

// close ends the open segment at ts. Elapsed time runs to ts, the moment the
// closing reading arrived, not to the last matching reading.
func (a *Accumulator) close(ts time.Duration) error {
	cur, ok := a.state.(*active)
	a.state = idle{}
	if !ok {
		return nil
	}

	elapsed := ts - cur.start
	if elapsed < a.minimum {
		a.stats.Dropped++
		a.logger.Debug("segment dropped",
			logging.Args(append(logging.DecisionAttrs("segment_close", "dropped", "shorter than minimum sentence time"),
				logging.String("text", cur.text),
				logging.Duration("elapsed", elapsed),
			)...)...,
		)
		return nil
	}

	cue := srt.Cue{Start: cur.start, End: ts, Text: cur.text}
	if err := a.sink.Emit(cue); err != nil {
		return fmt.Errorf("emit cue: %w", err)
	}
	a.stats.Emitted++
	a.logger.Debug("cue emitted",
		logging.String(logging.FieldEventType, "cue_emitted"),
		logging.Position("start", cue.Start),
		logging.Position("end", cue.End),
		logging.String("text", cue.Text),
		logging.Float64("confidence", cur.confidence),
	)
	return nil
}
