package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"ocrsub/internal/extract"
	"ocrsub/internal/logging"
)

type progressReporter interface {
	Update(extract.Event)
	Finish()
}

// newProgressReporter draws a bar when w is a terminal and falls back to
// sampled log lines otherwise.
func newProgressReporter(w io.Writer, logger *slog.Logger) progressReporter {
	if isTerminal(w) {
		return newBarReporter(w)
	}
	return &logReporter{
		logger:  logging.NewComponentLogger(logger, "progress"),
		sampler: logging.NewProgressSampler(10, 300),
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type barReporter struct {
	bar *progressbar.ProgressBar
}

func newBarReporter(w io.Writer) *barReporter {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("reading"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
	return &barReporter{bar: bar}
}

func (r *barReporter) Update(e extract.Event) {
	r.bar.Describe(fmt.Sprintf("%-10s %6d frames %4d cues", e.Stage, e.Frames, e.Cues))
	if e.Percent >= 0 {
		_ = r.bar.Set(int(e.Percent))
	}
}

func (r *barReporter) Finish() {
	_ = r.bar.Finish()
}

type logReporter struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

func (r *logReporter) Update(e extract.Event) {
	if !r.sampler.ShouldLog(string(e.Stage), e.Percent, e.Frames) {
		return
	}
	attrs := []logging.Attr{
		logging.String("stage", string(e.Stage)),
		logging.Int("frames", e.Frames),
		logging.Int("cues", e.Cues),
		logging.Position("position", e.Timestamp),
	}
	if e.Percent >= 0 {
		attrs = append(attrs, logging.Float64("percent", e.Percent))
	}
	r.logger.Info("extraction progress", logging.Args(attrs...)...)
}

func (r *logReporter) Finish() {
	r.sampler.Reset()
}
