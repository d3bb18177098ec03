package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ocrsub/internal/config"
	"ocrsub/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	var console bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from test")
	if !strings.Contains(console.String(), "hello from test") {
		t.Fatalf("expected message on console, got %q", console.String())
	}

	content, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from test") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsSourceForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Discard: true, Files: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without source")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no source information in info logs, got %q", content)
	}
	if !strings.Contains(string(content), " INFO ") {
		t.Fatalf("expected level label, got %q", content)
	}
}

func TestConsoleLoggerIncludesSourceForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Discard: true, Files: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with source")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "logger_test.go:") {
		t.Fatalf("expected source information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerSubjectPrefix(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "subject.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Discard: true, Files: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithRunID(context.Background(), "0123456789abcdef")
	scoped := logging.WithContext(ctx, logging.NewComponentLogger(logger, "segment"))
	scoped.Info("cue emitted", logging.String("text", "你好 世界"), logging.Int("index", 3))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "segment (run 01234567): cue emitted") {
		t.Fatalf("expected subject prefix, got %q", line)
	}
	if !strings.Contains(line, `text="你好 世界"`) {
		t.Fatalf("expected quoted text value, got %q", line)
	}
	if !strings.Contains(line, "index=3") {
		t.Fatalf("expected index attribute, got %q", line)
	}
	if strings.Contains(line, "run_id=") {
		t.Fatalf("run id should be folded into the subject, got %q", line)
	}
}

func TestJSONLoggerFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")

	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Discard: true, Files: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithSource(logging.WithRunID(context.Background(), "run-1"), "frames.jsonl")
	logging.WithContext(ctx, logger).Info("started")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, content)
	}
	if entry["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if entry[logging.FieldRunID] != "run-1" || entry[logging.FieldSource] != "frames.jsonl" {
		t.Fatalf("expected context fields, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Discard: true, Files: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "short cue dropped", "cue_dropped", logging.String(logging.FieldImpact, "flicker removed"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry[logging.FieldEventType] != "cue_dropped" {
		t.Fatalf("expected event type, got %v", entry)
	}
	if entry[logging.FieldImpact] != "flicker removed" {
		t.Fatalf("expected caller impact to be preserved, got %v", entry[logging.FieldImpact])
	}
	if entry[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default error hint, got %v", entry)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("noop logger should never be enabled")
	}
	logging.WithContext(context.Background(), nil).Info("ignored")
}

func TestJSONLoggerWritesDurationsAsStrings(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "dur.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Discard: true, Files: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithSource(context.Background(), "ep1.jsonl")
	logging.WithContext(ctx, logger).Debug("segment dropped", logging.Duration("elapsed", 1500*time.Millisecond))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["elapsed"] != "1.5s" {
		t.Fatalf("expected duration string, got %v", entry["elapsed"])
	}
	if entry[logging.FieldSource] != "ep1.jsonl" {
		t.Fatalf("source field clobbered: %v", entry[logging.FieldSource])
	}
	if caller, _ := entry["caller"].(string); !strings.HasPrefix(caller, "logger_test.go:") {
		t.Fatalf("expected caller at debug level, got %v", entry["caller"])
	}
}

func TestPositionAttr(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00:00.000"},
		{1500 * time.Millisecond, "0:00:01.500"},
		{time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond, "1:02:03.004"},
		{-time.Second, "0:00:00.000"},
	}
	for _, tt := range tests {
		if got := logging.Position("at", tt.in).Value.String(); got != tt.want {
			t.Fatalf("Position(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConsoleLoggerFoldsSourceIntoSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "source.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Discard: true, Files: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithSource(logging.WithRunID(context.Background(), "abcdef0123"), "/media/show/ep01.jsonl")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "extract")).Info("extraction started")
	logging.WithContext(logging.WithSource(context.Background(), "ep02.log"), logger).Info("no component")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", content)
	}
	if !strings.Contains(lines[0], "extract (run abcdef01, ep01.jsonl): extraction started") {
		t.Fatalf("unexpected subject: %q", lines[0])
	}
	if strings.Contains(lines[0], "source=") {
		t.Fatalf("source should be folded into the subject: %q", lines[0])
	}
	if !strings.Contains(lines[1], "INFO ep02.log: no component") {
		t.Fatalf("unexpected subject without component: %q", lines[1])
	}
}

func TestConsoleLoggerTruncatesLongValues(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "long.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Discard: true, Files: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("reading", logging.String("text", strings.Repeat("字", 100)), logging.String("empty", ""))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "text="+strings.Repeat("字", 80)+"…") {
		t.Fatalf("expected truncated value, got %q", line)
	}
	if !strings.Contains(line, `empty=""`) {
		t.Fatalf("expected quoted empty value, got %q", line)
	}
}
