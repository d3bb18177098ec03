// Package extract drives the caption pipeline: frames are normalized, fed to
// the segment accumulator and collected as SRT cues.
//
// Run executes synchronously. Start runs the same work on a background
// goroutine and returns a Task whose progress events are delivered without
// blocking the pipeline; slow consumers miss intermediate events but always
// receive the terminal one before the channel closes. Both honour context
// cancellation between frames.
//
// Engine and RecognizingSource cover the recognizer boundary: the engine
// builds its Recognizer lazily on first use and keeps it until Close, and the
// source turns sampled video frames into text frames, substituting an empty
// reading whenever recognition of a frame fails.
package extract
