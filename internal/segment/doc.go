// Package segment turns a time-ordered stream of normalized caption readings
// into subtitle cues.
//
// An Accumulator holds at most one open segment. Each reading either extends
// it (same sentence, possibly a better read), closes it and opens a new one
// (different sentence), or closes it (empty reading). Closed segments that
// lasted at least the minimum sentence time are emitted to a Sink; shorter
// ones are dropped as recognition flicker.
package segment
