package frames

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

type jsonRecord struct {
	TimestampMS *float64 `json:"timestamp_ms"`
	Text        *string  `json:"text"`
	Confidence  *float64 `json:"confidence"`
	DurationMS  *float64 `json:"duration_ms"`
}

// JSONLReader decodes the JSON Lines encoding.
type JSONLReader struct {
	scanner *bufio.Scanner
	line    int
	end     time.Duration
	hasEnd  bool
}

// NewJSONLReader reads frames from r.
func NewJSONLReader(r io.Reader) *JSONLReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &JSONLReader{scanner: scanner}
}

func (r *JSONLReader) Next() (Frame, error) {
	for r.scanner.Scan() {
		r.line++
		raw := bytes.TrimSpace(r.scanner.Bytes())
		if r.line == 1 {
			raw = bytes.TrimPrefix(raw, utf8BOM)
		}
		if len(raw) == 0 {
			continue
		}

		var rec jsonRecord
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rec); err != nil {
			return Frame{}, &ParseError{Line: r.line, Reason: err.Error()}
		}

		if rec.DurationMS != nil {
			if rec.TimestampMS != nil || rec.Text != nil || rec.Confidence != nil {
				return Frame{}, &ParseError{Line: r.line, Reason: "duration record mixed with frame fields"}
			}
			if r.hasEnd {
				return Frame{}, &ParseError{Line: r.line, Reason: "duplicate duration record"}
			}
			if *rec.DurationMS < 0 {
				return Frame{}, &ParseError{Line: r.line, Reason: "negative duration"}
			}
			r.end = millisToDuration(*rec.DurationMS)
			r.hasEnd = true
			continue
		}

		if r.hasEnd {
			return Frame{}, &ParseError{Line: r.line, Reason: "frame after duration record"}
		}
		if rec.TimestampMS == nil {
			return Frame{}, &ParseError{Line: r.line, Reason: "missing timestamp_ms"}
		}
		if *rec.TimestampMS < 0 {
			return Frame{}, &ParseError{Line: r.line, Reason: "negative timestamp_ms"}
		}
		f := Frame{Timestamp: millisToDuration(*rec.TimestampMS)}
		if rec.Text != nil {
			f.Text = *rec.Text
		}
		if rec.Confidence != nil {
			f.Confidence = *rec.Confidence
		}
		if err := checkConfidence(r.line, f.Confidence); err != nil {
			return Frame{}, err
		}
		return f, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Frame{}, fmt.Errorf("read frames: %w", err)
	}
	return Frame{}, io.EOF
}

func (r *JSONLReader) End() (time.Duration, bool) {
	return r.end, r.hasEnd
}

// EncodeJSONL writes frames and, when end is non-negative, a trailing
// duration record.
func EncodeJSONL(w io.Writer, frames []Frame, end time.Duration) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, f := range frames {
		rec := struct {
			TimestampMS float64 `json:"timestamp_ms"`
			Text        string  `json:"text"`
			Confidence  float64 `json:"confidence"`
		}{durationToMillis(f.Timestamp), f.Text, f.Confidence}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode frame: %w", err)
		}
	}
	if end >= 0 {
		rec := struct {
			DurationMS float64 `json:"duration_ms"`
		}{durationToMillis(end)}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode duration: %w", err)
		}
	}
	return nil
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}
