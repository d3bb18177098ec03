package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ocrsub/internal/frames"
	"ocrsub/internal/logging"
	"ocrsub/internal/segment"
	"ocrsub/internal/similarity"
	"ocrsub/internal/srt"
	"ocrsub/internal/textnorm"
)

const progressEvery = 30

// Stage names a pipeline phase reported in events.
type Stage string

const (
	StageReading    Stage = "reading"
	StageFinalizing Stage = "finalizing"
	StageDone       Stage = "done"
)

// Event is a progress notification. Percent is negative when the source
// cannot estimate its position.
type Event struct {
	Stage     Stage
	Frames    int
	Cues      int
	Percent   float64
	Timestamp time.Duration
}

// Observer receives progress events. Implementations must not block.
type Observer interface {
	Progress(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Progress(e Event) { f(e) }

// Options configures a run. Zero values fall back to package defaults.
type Options struct {
	Normalizer      *textnorm.Normalizer
	Classifier      *similarity.Classifier
	MinSentenceTime time.Duration
	Observer        Observer
	Logger          *slog.Logger
}

// Result is the outcome of a completed run.
type Result struct {
	Cues  []srt.Cue
	Stats segment.Stats
	End   time.Duration
}

// Run consumes src to exhaustion and returns the finalized cues.
func Run(ctx context.Context, src frames.Source, opts Options) (*Result, error) {
	if src == nil {
		return nil, errors.New("extract: nil frame source")
	}
	if opts.Normalizer == nil {
		opts.Normalizer = textnorm.New(textnorm.DefaultOptions())
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "extract"))

	store := srt.NewStore()
	acc := segment.New(store, segment.Options{
		MinSentenceTime: opts.MinSentenceTime,
		Classifier:      opts.Classifier,
		Logger:          logging.WithContext(ctx, opts.Logger),
	})
	progresser, _ := src.(frames.Progresser)

	notify := func(stage Stage, ts time.Duration) {
		if opts.Observer == nil {
			return
		}
		percent := -1.0
		if progresser != nil {
			if fraction := progresser.Progress(); fraction >= 0 {
				percent = fraction * 100
			}
		}
		if stage == StageDone {
			percent = 100
		}
		opts.Observer.Progress(Event{
			Stage:     stage,
			Frames:    acc.Stats().Frames,
			Cues:      store.Len(),
			Percent:   percent,
			Timestamp: ts,
		})
	}

	logger.Info("extraction started", logging.String(logging.FieldEventType, "extract_started"))
	notify(StageReading, 0)

	var last time.Duration
	for {
		if err := ctx.Err(); err != nil {
			logger.Info("extraction cancelled", logging.Int("frames", acc.Stats().Frames))
			return nil, err
		}
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}
		text := opts.Normalizer.Normalize(frame.Text)
		if err := acc.Observe(frame.Timestamp, text, frame.Confidence); err != nil {
			return nil, fmt.Errorf("frame at %s: %w", frame.Timestamp, err)
		}
		last = frame.Timestamp
		if acc.Stats().Frames%progressEvery == 0 {
			notify(StageReading, last)
		}
	}

	end := last
	if ender, ok := src.(frames.Ender); ok {
		if declared, ok := ender.End(); ok {
			if declared < last {
				logging.WarnWithContext(logger, "declared stream end precedes last frame", "stream_end_clamped",
					logging.Duration("declared", declared),
					logging.Duration("last_frame", last),
					logging.String(logging.FieldImpact, "final cue ends at the last frame"),
					logging.String(logging.FieldErrorHint, "check the duration record of the frame file"),
				)
			} else {
				end = declared
			}
		}
	}

	notify(StageFinalizing, end)
	if err := acc.Finalize(end); err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}
	store.Finalize()

	stats := acc.Stats()
	result := &Result{Cues: store.Cues(), Stats: stats, End: end}
	logger.Info("extraction completed",
		logging.String(logging.FieldEventType, "extract_completed"),
		logging.Int("frames", stats.Frames),
		logging.Int("cues", stats.Emitted),
		logging.Int("dropped", stats.Dropped),
		logging.Int("merges", stats.Merges),
		logging.Int("replacements", stats.Replacements),
		logging.Position("end", end),
	)
	notify(StageDone, end)
	return result, nil
}
