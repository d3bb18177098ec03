package segment

import "time"

// state is either idle or active.
type state interface {
	isState()
}

type idle struct{}

// active is the segment currently being accumulated. text is never empty.
type active struct {
	start      time.Duration
	text       string
	confidence float64
}

func (idle) isState()    {}
func (*active) isState() {}

// Pending describes the open segment.
type Pending struct {
	Start      time.Duration
	Text       string
	Confidence float64
}
