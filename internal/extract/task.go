package extract

import (
	"context"

	"ocrsub/internal/frames"
)

const eventBuffer = 16

// Task is a run executing on a background goroutine.
type Task struct {
	events chan Event
	done   chan struct{}
	cancel context.CancelFunc

	result *Result
	err    error
}

// Start launches Run on a new goroutine. Events are forwarded to opts.Observer
// as well as the task channel.
func Start(ctx context.Context, src frames.Source, opts Options) *Task {
	runCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	downstream := opts.Observer
	opts.Observer = ObserverFunc(func(e Event) {
		if downstream != nil {
			downstream.Progress(e)
		}
		t.publish(e)
	})

	go func() {
		defer close(t.done)
		defer close(t.events)
		defer cancel()
		t.result, t.err = Run(runCtx, src, opts)
	}()
	return t
}

// publish delivers e without blocking. The terminal event evicts the oldest
// buffered event when the channel is full so consumers always see it.
func (t *Task) publish(e Event) {
	select {
	case t.events <- e:
		return
	default:
	}
	if e.Stage != StageDone {
		return
	}
	select {
	case <-t.events:
	default:
	}
	select {
	case t.events <- e:
	default:
	}
}

// Events returns the progress channel. It is closed when the run ends.
func (t *Task) Events() <-chan Event {
	return t.events
}

// Done is closed when the run ends.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel stops the run at the next frame boundary.
func (t *Task) Cancel() {
	t.cancel()
}

// Wait blocks until the run ends.
func (t *Task) Wait() (*Result, error) {
	<-t.done
	return t.result, t.err
}
