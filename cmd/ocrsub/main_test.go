package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ocrsub/internal/frames"
	"ocrsub/internal/testsupport"
)

func TestRootHelpListsCommands(t *testing.T) {
	stdout, _, err := runCLI(t, []string{"--help"}, "", "")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"extract", "show", "check", "normalize", "history", "config"} {
		if !strings.Contains(stdout, name) {
			t.Fatalf("help output missing %q:\n%s", name, stdout)
		}
	}
}

func TestExtractWritesSRTAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "media", "episode.jsonl")
	testsupport.WriteFrames(t, input, sampleFrames(), -1)

	stdout, _, err := env.run(t, "extract", input)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	output := filepath.Join(env.baseDir, "media", "episode.srt")
	if !strings.Contains(stdout, "Wrote 2 cues to "+output) {
		t.Fatalf("unexpected extract output:\n%s", stdout)
	}
	if got := readFile(t, output); got != sampleSRT {
		t.Fatalf("unexpected srt:\n%q\nwant\n%q", got, sampleSRT)
	}

	stdout, _, err = env.run(t, "history", "list", "--json")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	var runs []runJSON
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		t.Fatalf("decode history: %v\n%s", err, stdout)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != "completed" || run.Cues != 2 || run.Frames != 8 || run.Dropped != 1 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Source != input || run.Output != output {
		t.Fatalf("unexpected run paths: %+v", run)
	}

	exported := filepath.Join(env.baseDir, "export", "copy.srt")
	stdout, _, err = env.run(t, "history", "export", run.ID[:8], "-o", exported)
	if err != nil {
		t.Fatalf("history export: %v", err)
	}
	if !strings.Contains(stdout, "Exported 2 cues") {
		t.Fatalf("unexpected export output: %s", stdout)
	}
	if got := readFile(t, exported); got != sampleSRT {
		t.Fatalf("exported srt differs:\n%q", got)
	}

	stdout, _, err = env.run(t, "history", "show", run.ID)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	for _, want := range []string{run.ID, "completed", "再見", "Dropped: 1"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("history show missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = env.run(t, "history", "list")
	if err != nil {
		t.Fatalf("history list table: %v", err)
	}
	if !strings.Contains(stdout, run.ID[:8]) || !strings.Contains(stdout, "episode.jsonl") {
		t.Fatalf("history table missing run:\n%s", stdout)
	}
}

func TestExtractJSONSummary(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory(false))
	input := filepath.Join(env.baseDir, "stream.jsonl")
	testsupport.WriteFrames(t, input, sampleFrames(), -1)
	output := filepath.Join(env.baseDir, "out", "custom.srt")

	stdout, _, err := env.run(t, "extract", input, "-o", output, "--json")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var summary extractSummary
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, stdout)
	}
	if summary.RunID != "" {
		t.Fatalf("expected no run id with history disabled, got %q", summary.RunID)
	}
	if summary.Output != output || summary.Format != "jsonl" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Cues != 2 || summary.Frames != 8 || summary.Dropped != 1 || summary.EndMS != 850 {
		t.Fatalf("unexpected counters: %+v", summary)
	}
	if summary.Coverage <= 0.8 || summary.Coverage >= 0.9 {
		t.Fatalf("unexpected coverage %v", summary.Coverage)
	}
	if _, err := os.Stat(env.cfg.HistoryPath()); !os.IsNotExist(err) {
		t.Fatalf("expected no history database, stat err %v", err)
	}
}

func TestExtractDurationClosesFinalCue(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory(false))
	input := filepath.Join(env.baseDir, "tail.log")
	list := []frames.Frame{
		{Timestamp: ms(0), Text: "字幕", Confidence: 0.9},
		{Timestamp: ms(300), Text: "字幕", Confidence: 0.9},
	}
	var body strings.Builder
	if err := frames.EncodeLog(&body, list, -1); err != nil {
		t.Fatalf("EncodeLog: %v", err)
	}
	testsupport.WriteText(t, input, body.String())

	if _, _, err := env.run(t, "extract", input); err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:00,300\n字幕\n\n"
	if got := readFile(t, filepath.Join(env.baseDir, "tail.srt")); got != want {
		t.Fatalf("unexpected srt without duration: %q", got)
	}

	if _, _, err := env.run(t, "extract", input, "--duration", "0:00:01.5"); err != nil {
		t.Fatalf("extract with duration: %v", err)
	}
	want = "1\n00:00:00,000 --> 00:00:01,500\n字幕\n\n"
	if got := readFile(t, filepath.Join(env.baseDir, "tail.srt")); got != want {
		t.Fatalf("unexpected srt with duration: %q", got)
	}

	if _, _, err := env.run(t, "extract", input, "--duration", "soon"); err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestExtractMinSentenceOverride(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory(false))
	input := filepath.Join(env.baseDir, "stream.jsonl")
	testsupport.WriteFrames(t, input, sampleFrames(), -1)

	if _, _, err := env.run(t, "extract", input, "--min-sentence-ms", "0"); err == nil {
		t.Fatal("expected error for zero min sentence time")
	}

	stdout, _, err := env.run(t, "extract", input, "--min-sentence-ms", "350", "--json")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var summary extractSummary
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Cues != 1 || summary.Dropped != 2 {
		t.Fatalf("expected the 300ms cue to be dropped, got %+v", summary)
	}
}

func TestExtractFailureIsRecorded(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "broken.jsonl")
	testsupport.WriteText(t, input, "{\"timestamp_ms\": 0, \"text\": \"a\", \"confidence\": 0.5}\n{broken\n")

	_, _, err := env.run(t, "extract", input)
	if err == nil {
		t.Fatal("expected extract to fail")
	}
	if !strings.Contains(err.Error(), "broken.jsonl") {
		t.Fatalf("expected error to name the input, got %v", err)
	}

	stdout, _, err := env.run(t, "history", "list", "--json")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	var runs []runJSON
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != "failed" || runs[0].Error == "" {
		t.Fatalf("expected one failed run, got %+v", runs)
	}

	if _, _, err := env.run(t, "history", "export", runs[0].ID, "-o", filepath.Join(env.baseDir, "x.srt")); err == nil {
		t.Fatal("expected export of failed run to be refused")
	}
}

func TestExtractRefusesToOverwriteInput(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory(false))
	input := filepath.Join(env.baseDir, "stream.jsonl")
	testsupport.WriteFrames(t, input, sampleFrames(), -1)

	if _, _, err := env.run(t, "extract", input, "-o", input); err == nil {
		t.Fatal("expected error when output equals input")
	}
}

func TestHistoryPrune(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "stream.jsonl")
	testsupport.WriteFrames(t, input, sampleFrames(), -1)
	for range 3 {
		if _, _, err := env.run(t, "extract", input); err != nil {
			t.Fatalf("extract: %v", err)
		}
	}

	stdout, _, err := env.run(t, "history", "prune", "--keep", "1")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if !strings.Contains(stdout, "Removed 2 runs") {
		t.Fatalf("unexpected prune output: %s", stdout)
	}
	if _, _, err := env.run(t, "history", "prune", "--keep", "-1"); err == nil {
		t.Fatal("expected error for negative keep")
	}
}

func TestHistoryShowUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := env.run(t, "history", "show", "deadbeef"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestExtractLogsProgressToStderr(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("OCRSUB_LOG_LEVEL", "info")
	input := filepath.Join(env.baseDir, "stream.jsonl")
	testsupport.WriteFrames(t, input, sampleFrames(), -1)

	_, stderr, err := env.run(t, "extract", input)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for _, want := range []string{"extraction progress", "stage=done", "stream.jsonl): extraction started"} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("stderr missing %q:\n%s", want, stderr)
		}
	}
	if !strings.Contains(readFile(t, env.cfg.LogPath()), "extraction progress") {
		t.Fatal("expected progress lines in the log file")
	}
}

func TestExtractWarnsAboutRecognitionSettings(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStride(5))
	t.Setenv("OCRSUB_LOG_LEVEL", "warn")
	input := filepath.Join(env.baseDir, "stream.jsonl")
	testsupport.WriteFrames(t, input, sampleFrames(), -1)

	_, stderr, err := env.run(t, "extract", "--no-history", input)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for _, want := range []string{"recognition settings do not apply to frame files", "sections=sampling"} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("stderr missing %q:\n%s", want, stderr)
		}
	}

	plain := setupCLITestEnv(t)
	t.Setenv("OCRSUB_LOG_LEVEL", "warn")
	other := filepath.Join(plain.baseDir, "stream.jsonl")
	testsupport.WriteFrames(t, other, sampleFrames(), -1)
	_, stderr, err = plain.run(t, "extract", "--no-history", other)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.Contains(stderr, "recognition settings") {
		t.Fatalf("default settings should not warn:\n%s", stderr)
	}
}
