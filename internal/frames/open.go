package frames

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Format names an on-disk frame encoding.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatJSONL Format = "jsonl"
	FormatLog   Format = "log"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatJSONL, FormatLog:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported frame format %q (want auto, jsonl or log)", value)
	}
}

// FileSource reads frames from a file and tracks how much has been consumed.
type FileSource struct {
	path    string
	format  Format
	file    *os.File
	counter *countingReader
	size    int64
	decoder interface {
		Source
		Ender
	}
}

// Open opens path using format, sniffing the content when format is auto.
func Open(path string, format Format) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frames: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat frames: %w", err)
	}

	counter := &countingReader{r: file}
	buffered := bufio.NewReader(counter)
	if format == FormatAuto || format == "" {
		format = detect(path, buffered)
	}

	src := &FileSource{path: path, format: format, file: file, counter: counter, size: info.Size()}
	switch format {
	case FormatJSONL:
		src.decoder = NewJSONLReader(buffered)
	case FormatLog:
		src.decoder = NewLogReader(buffered)
	default:
		file.Close()
		return nil, fmt.Errorf("unsupported frame format %q", format)
	}
	return src, nil
}

func (s *FileSource) Next() (Frame, error) {
	f, err := s.decoder.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		return Frame{}, fmt.Errorf("%s: %w", s.path, err)
	}
	return f, err
}

func (s *FileSource) End() (time.Duration, bool) {
	return s.decoder.End()
}

// Progress reports the fraction of the file handed to the decoder.
func (s *FileSource) Progress() float64 {
	if s.size <= 0 {
		return 1
	}
	return min(float64(s.counter.n)/float64(s.size), 1)
}

// Format returns the resolved encoding.
func (s *FileSource) Format() Format {
	return s.format
}

// Path returns the file being read.
func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Close() error {
	return s.file.Close()
}

// detect picks an encoding from the extension, falling back to the first
// non-blank byte of the content.
func detect(path string, r *bufio.Reader) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL
	case ".log":
		return FormatLog
	}
	peek, _ := r.Peek(4096)
	peek = bytes.TrimPrefix(peek, utf8BOM)
	peek = bytes.TrimLeft(peek, " \t\r\n")
	if len(peek) > 0 && peek[0] == '{' {
		return FormatJSONL
	}
	return FormatLog
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
