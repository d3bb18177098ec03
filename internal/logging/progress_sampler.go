package logging

import "strings"

const (
	defaultPercentStep = 5
	defaultFrameStep   = 1000
)

// ProgressSampler thins extraction progress logs. A line is let through when
// the stage changes, when the percentage enters a new step, or, for streams
// of unknown length, when another frameStep frames have been read.
type ProgressSampler struct {
	percentStep float64
	frameStep   int

	stage     string
	bucket    int
	frameMark int
}

// NewProgressSampler returns a sampler. Non-positive steps select the
// defaults (5% and 1000 frames).
func NewProgressSampler(percentStep float64, frameStep int) *ProgressSampler {
	if percentStep <= 0 {
		percentStep = defaultPercentStep
	}
	if frameStep <= 0 {
		frameStep = defaultFrameStep
	}
	s := &ProgressSampler{percentStep: percentStep, frameStep: frameStep}
	s.Reset()
	return s
}

// ShouldLog reports whether an event should be logged. A negative percent
// means the total is unknown.
func (s *ProgressSampler) ShouldLog(stage string, percent float64, frames int) bool {
	if s == nil {
		return true
	}
	emit := false
	if stage = strings.TrimSpace(stage); stage != "" && stage != s.stage {
		s.stage = stage
		s.bucket = -1
		s.frameMark = frames / s.frameStep
		emit = true
	}
	if percent >= 0 {
		bucket := int(min(percent, 100) / s.percentStep)
		if bucket > s.bucket {
			s.bucket = bucket
			emit = true
		}
		return emit
	}
	if mark := frames / s.frameStep; mark > s.frameMark {
		s.frameMark = mark
		emit = true
	}
	return emit
}

// Reset forgets the last stage and position.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.stage = ""
	s.bucket = -1
	s.frameMark = 0
}
