// Package srt holds finalized subtitle cues and reads and writes them in the
// SubRip text format.
//
// Timing is rendered as HH:MM:SS,mmm by truncating each duration to whole
// milliseconds. Cue text is written verbatim. Parsing is strict: a malformed
// block fails the whole document with a *ParseError and no partial result, so
// Format(Parse(Format(c))) reproduces Format(c) byte for byte.
package srt
