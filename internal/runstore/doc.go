// Package runstore records extraction runs and their cues in a SQLite
// database under the state directory.
//
// Each run gets a random UUID, starts as "running" and is moved to
// "completed" (with its cue list) or "failed" (with the error message).
// Runs can be looked up by full id or by an unambiguous prefix.
package runstore
