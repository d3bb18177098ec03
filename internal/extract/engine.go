package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"ocrsub/internal/config"
	"ocrsub/internal/logging"
)

// ErrEngineClosed is returned by Engine.Recognizer after Close.
var ErrEngineClosed = errors.New("recognition engine closed")

// Fragment is one piece of text found in a frame.
type Fragment struct {
	Text       string
	Confidence float64
}

// Region is the caption crop area as ratios of the frame size.
type Region struct {
	Top, Bottom, Left, Right float64
}

// RegionFromConfig converts the [region] section.
func RegionFromConfig(cfg config.Region) Region {
	return Region{Top: cfg.Top, Bottom: cfg.Bottom, Left: cfg.Left, Right: cfg.Right}
}

// Rect maps the region onto bounds.
func (r Region) Rect(bounds image.Rectangle) image.Rectangle {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	return image.Rect(
		bounds.Min.X+int(r.Left*w),
		bounds.Min.Y+int(r.Top*h),
		bounds.Min.X+int(r.Right*w),
		bounds.Min.Y+int(r.Bottom*h),
	).Intersect(bounds)
}

// Recognizer reads text inside region of a decoded frame.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, region Region) ([]Fragment, error)
	Close() error
}

// RecognizerFactory constructs a Recognizer. Construction may be expensive
// (model loading).
type RecognizerFactory func(ctx context.Context) (Recognizer, error)

// Engine owns a lazily constructed Recognizer shared across runs.
type Engine struct {
	factory RecognizerFactory
	logger  *slog.Logger

	mu     sync.Mutex
	rec    Recognizer
	closed bool
}

// NewEngine returns an Engine that calls factory on first use.
func NewEngine(factory RecognizerFactory, logger *slog.Logger) *Engine {
	return &Engine{factory: factory, logger: logging.NewComponentLogger(logger, "engine")}
}

// Recognizer returns the shared recognizer, constructing it on first call. A
// failed construction is not cached, so a later call retries.
func (e *Engine) Recognizer(ctx context.Context) (Recognizer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	if e.rec != nil {
		return e.rec, nil
	}
	if e.factory == nil {
		return nil, errors.New("recognition engine has no factory")
	}
	started := time.Now()
	rec, err := e.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recognizer: %w", err)
	}
	e.rec = rec
	e.logger.Info("recognizer loaded", logging.Duration("elapsed", time.Since(started)))
	return rec, nil
}

// Close disposes the recognizer. Further calls to Recognizer fail.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.rec == nil {
		return nil
	}
	err := e.rec.Close()
	e.rec = nil
	return err
}
