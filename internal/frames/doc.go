// Package frames reads recognized caption frames from disk.
//
// Two encodings are supported. JSON Lines carries one object per frame,
// {"timestamp_ms": 33, "text": "...", "confidence": 0.9}, with an optional
// {"duration_ms": N} record giving the stream end. The frame log carries one
// "H:MM:SS[.ffffff] text confidence" line per frame, the diagnostic format the
// recognizer writes; a "# duration H:MM:SS" comment gives the stream end.
package frames
