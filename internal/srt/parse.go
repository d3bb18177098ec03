package srt

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrMalformed is wrapped by every *ParseError.
var ErrMalformed = errors.New("malformed srt")

// ParseError reports the first malformed line of a document.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("srt line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

var timingPattern = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2}),(\d{3}) --> (\d{2,}):(\d{2}):(\d{2}),(\d{3})$`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// maxHours keeps a parsed timestamp inside time.Duration.
const maxHours = math.MaxInt64/int64(time.Hour) - 1

// Parse decodes an SRT document. Any malformed block fails the whole parse.
func Parse(data []byte) ([]Cue, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(content, "\n")

	var cues []Cue
	i := 0
	for {
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
		if i >= len(lines) {
			break
		}

		index, err := parseIndex(lines[i])
		if err != nil {
			return nil, &ParseError{Line: i + 1, Reason: err.Error()}
		}
		i++

		if i >= len(lines) {
			return nil, &ParseError{Line: i, Reason: "missing timing line"}
		}
		start, end, err := parseTiming(lines[i])
		if err != nil {
			return nil, &ParseError{Line: i + 1, Reason: err.Error()}
		}
		i++

		textStart := i
		for i < len(lines) && lines[i] != "" {
			i++
		}
		if i == textStart {
			return nil, &ParseError{Line: textStart + 1, Reason: "missing cue text"}
		}

		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[textStart:i], "\n"),
		})
	}
	return cues, nil
}

// ReadFile parses the SRT file at path.
func ReadFile(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	cues, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cues, nil
}

func parseIndex(line string) (int, error) {
	if line == "" || strings.TrimLeft(line, "0123456789") != "" {
		return 0, fmt.Errorf("expected cue index, got %q", line)
	}
	index, err := strconv.Atoi(line)
	if err != nil || index <= 0 {
		return 0, fmt.Errorf("invalid cue index %q", line)
	}
	return index, nil
}

func parseTiming(line string) (time.Duration, time.Duration, error) {
	m := timingPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, fmt.Errorf("expected \"HH:MM:SS,mmm --> HH:MM:SS,mmm\", got %q", line)
	}
	start, err := timestampFromParts(m[1:5])
	if err != nil {
		return 0, 0, err
	}
	end, err := timestampFromParts(m[5:9])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func timestampFromParts(parts []string) (time.Duration, error) {
	hours, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || hours > maxHours {
		return 0, fmt.Errorf("invalid hours %q", parts[0])
	}
	minutes, _ := strconv.Atoi(parts[1])
	seconds, _ := strconv.Atoi(parts[2])
	millis, _ := strconv.Atoi(parts[3])
	if minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("timestamp %s:%s:%s,%s out of range", parts[0], parts[1], parts[2], parts[3])
	}
	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
	return total, nil
}
