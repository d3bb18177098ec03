package runstore

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one recorded extraction.
type Run struct {
	ID            string
	Source        string
	Output        string
	Status        Status
	MinSentenceMS int
	Frames        int
	Cues          int
	Dropped       int
	Error         string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Elapsed returns how long the run took, or zero while it is running.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ShortID returns the first eight characters of the id.
func (r Run) ShortID() string {
	if len(r.ID) <= 8 {
		return r.ID
	}
	return r.ID[:8]
}

// BeginParams describes a run being started.
type BeginParams struct {
	Source        string
	Output        string
	MinSentenceMS int
}

// Summary carries the counters recorded when a run completes.
type Summary struct {
	Frames  int
	Dropped int
}
