package frames

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const durationComment = "duration"

// LogReader decodes the frame log encoding.
type LogReader struct {
	scanner *bufio.Scanner
	line    int
	end     time.Duration
	hasEnd  bool
}

// NewLogReader reads frames from r.
func NewLogReader(r io.Reader) *LogReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &LogReader{scanner: scanner}
}

func (r *LogReader) Next() (Frame, error) {
	for r.scanner.Scan() {
		r.line++
		raw := strings.TrimRight(r.scanner.Text(), "\r\n")
		if r.line == 1 {
			raw = strings.TrimPrefix(raw, string(utf8BOM))
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if strings.HasPrefix(raw, "#") {
			if err := r.comment(strings.TrimSpace(raw[1:])); err != nil {
				return Frame{}, err
			}
			continue
		}
		f, err := parseLogLine(raw)
		if err != nil {
			return Frame{}, &ParseError{Line: r.line, Reason: err.Error()}
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

func (r *LogReader) End() (time.Duration, bool) {
	return r.end, r.hasEnd
}

func (r *LogReader) comment(body string) error {
	value, ok := strings.CutPrefix(body, durationComment)
	if !ok {
		return nil
	}
	end, err := ParseClock(strings.TrimSpace(value))
	if err != nil {
		return &ParseError{Line: r.line, Reason: err.Error()}
	}
	r.end = end
	r.hasEnd = true
	return nil
}

// parseLogLine splits "<clock> <text> <confidence>". The text may contain
// spaces or be empty.
func parseLogLine(line string) (Frame, error) {
	first := strings.IndexByte(line, ' ')
	last := strings.LastIndexByte(line, ' ')
	if first < 0 {
		return Frame{}, fmt.Errorf("expected \"<time> <text> <confidence>\", got %q", line)
	}
	ts, err := ParseClock(line[:first])
	if err != nil {
		return Frame{}, err
	}
	confidence, err := strconv.ParseFloat(line[last+1:], 64)
	if err != nil {
		return Frame{}, fmt.Errorf("invalid confidence %q", line[last+1:])
	}
	var text string
	if last > first {
		text = line[first+1 : last]
	}
	return Frame{Timestamp: ts, Text: text, Confidence: confidence}, nil
}

// ParseClock parses "H:MM:SS" with an optional fractional second of up to
// nine digits.
func ParseClock(value string) (time.Duration, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid clock %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock %q", value)
	}
	secPart, fracPart, hasFrac := strings.Cut(parts[2], ".")
	seconds, err := strconv.Atoi(secPart)
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("invalid clock %q", value)
	}
	var nanos int
	if hasFrac {
		if fracPart == "" || len(fracPart) > 9 || strings.TrimLeft(fracPart, "0123456789") != "" {
			return 0, fmt.Errorf("invalid clock %q", value)
		}
		nanos, _ = strconv.Atoi(fracPart + strings.Repeat("0", 9-len(fracPart)))
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(nanos), nil
}

// FormatClock renders d the way the frame log writes it: whole seconds as
// H:MM:SS, otherwise with six fractional digits.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Microsecond)
	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute
	seconds := (d % time.Minute) / time.Second
	micros := (d % time.Second) / time.Microsecond
	if micros == 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d:%02d.%06d", hours, minutes, seconds, micros)
}

// EncodeLog writes frames in the frame log encoding.
func EncodeLog(w io.Writer, frames []Frame, end time.Duration) error {
	bw := bufio.NewWriter(w)
	for _, f := range frames {
		fmt.Fprintf(bw, "%s %s %s\n", FormatClock(f.Timestamp), f.Text, strconv.FormatFloat(f.Confidence, 'f', -1, 64))
	}
	if end >= 0 {
		fmt.Fprintf(bw, "# %s %s\n", durationComment, FormatClock(end))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write frame log: %w", err)
	}
	return nil
}
