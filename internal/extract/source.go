package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strings"
	"time"

	"ocrsub/internal/config"
	"ocrsub/internal/frames"
	"ocrsub/internal/logging"
)

// DefaultStride keeps one of every three decoded frames.
const DefaultStride = 3

// DecodedFrame is a video frame produced by a Sampler.
type DecodedFrame struct {
	Timestamp time.Duration
	Image     image.Image
}

// Sampler yields decoded video frames in order and returns io.EOF at the end.
// Samplers that know the video length should also implement frames.Ender.
type Sampler interface {
	Next(ctx context.Context) (DecodedFrame, error)
}

// SourceOptions configures a RecognizingSource.
type SourceOptions struct {
	Stride int
	Region Region
	Logger *slog.Logger
}

// SourceOptionsFromConfig reads the [sampling] and [region] sections.
func SourceOptionsFromConfig(cfg *config.Config, logger *slog.Logger) SourceOptions {
	if cfg == nil {
		return SourceOptions{Stride: DefaultStride, Logger: logger}
	}
	return SourceOptions{
		Stride: cfg.Sampling.Stride,
		Region: RegionFromConfig(cfg.Region),
		Logger: logger,
	}
}

// RecognizingSource adapts a Sampler and an Engine into a frames.Source.
type RecognizingSource struct {
	// ctx bounds sampling and recognition for the lifetime of the source.
	ctx     context.Context
	sampler Sampler
	engine  *Engine
	stride  int
	region  Region
	logger  *slog.Logger

	decoded  int
	failures int
}

// NewRecognizingSource returns a source that recognizes every stride-th frame
// from sampler, starting with the first.
func NewRecognizingSource(ctx context.Context, sampler Sampler, engine *Engine, opts SourceOptions) *RecognizingSource {
	if opts.Stride <= 0 {
		opts.Stride = DefaultStride
	}
	return &RecognizingSource{
		ctx:     ctx,
		sampler: sampler,
		engine:  engine,
		stride:  opts.Stride,
		region:  opts.Region,
		logger:  logging.NewComponentLogger(opts.Logger, "recognizer"),
	}
}

func (s *RecognizingSource) Next() (frames.Frame, error) {
	for {
		decoded, err := s.sampler.Next(s.ctx)
		if errors.Is(err, io.EOF) {
			return frames.Frame{}, io.EOF
		}
		if err != nil {
			return frames.Frame{}, fmt.Errorf("sample frame: %w", err)
		}
		index := s.decoded
		s.decoded++
		if index%s.stride != 0 {
			continue
		}

		rec, err := s.engine.Recognizer(s.ctx)
		if err != nil {
			return frames.Frame{}, err
		}
		frame := frames.Frame{Timestamp: decoded.Timestamp}
		fragments, err := rec.Recognize(s.ctx, decoded.Image, s.region)
		if err != nil {
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				return frames.Frame{}, ctxErr
			}
			s.failures++
			s.logger.Debug("recognition failed; using empty reading",
				logging.String("clock", frames.FormatClock(decoded.Timestamp)),
				logging.Error(err),
			)
			return frame, nil
		}
		frame.Text, frame.Confidence = joinFragments(fragments)
		s.logger.Debug("frame recognized",
			logging.String("clock", frames.FormatClock(frame.Timestamp)),
			logging.String("text", frame.Text),
			logging.Float64("confidence", frame.Confidence),
		)
		return frame, nil
	}
}

// End forwards the sampler's stream end when it has one.
func (s *RecognizingSource) End() (time.Duration, bool) {
	if ender, ok := s.sampler.(frames.Ender); ok {
		return ender.End()
	}
	return 0, false
}

// Progress forwards the sampler's progress, or -1 when it has none.
func (s *RecognizingSource) Progress() float64 {
	if p, ok := s.sampler.(frames.Progresser); ok {
		return p.Progress()
	}
	return -1
}

// Failures counts frames whose recognition failed.
func (s *RecognizingSource) Failures() int {
	return s.failures
}

// joinFragments concatenates fragment text with spaces and averages their
// confidence. No fragments yields an empty zero-confidence reading.
func joinFragments(fragments []Fragment) (string, float64) {
	if len(fragments) == 0 {
		return "", 0
	}
	texts := make([]string, len(fragments))
	var sum float64
	for i, f := range fragments {
		texts[i] = f.Text
		sum += f.Confidence
	}
	return strings.Join(texts, " "), sum / float64(len(fragments))
}
