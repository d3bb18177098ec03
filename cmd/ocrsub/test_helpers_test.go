package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ocrsub/internal/config"
	"ocrsub/internal/frames"
	"ocrsub/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("OCRSUB_LOG_LEVEL", "error")

	configPath := filepath.Join(base, "ocrsub.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, args, e.configPath, "")
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\nlog_dir = %q\n\n[segmentation]\nmin_sentence_time_ms = %d\n\n[history]\nenabled = %t\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Segmentation.MinSentenceTimeMS,
		cfg.History.Enabled,
	)
	if cfg.Sampling.Stride != config.Default().Sampling.Stride {
		content += fmt.Sprintf("\n[sampling]\nstride = %d\n", cfg.Sampling.Stride)
	}
	if cfg.Normalize.RulesFile != "" {
		content += fmt.Sprintf("\n[normalize]\nrules_file = %q\n", cfg.Normalize.RulesFile)
	}
	testsupport.WriteText(t, path, content)
}

func ms(v int64) time.Duration { return time.Duration(v) * time.Millisecond }

// sampleFrames yields two cues and one dropped flicker segment.
func sampleFrames() []frames.Frame {
	return []frames.Frame{
		{Timestamp: ms(0), Text: "你好", Confidence: 0.8},
		{Timestamp: ms(100), Text: "你好...", Confidence: 0.7},
		{Timestamp: ms(200), Text: "|你好...", Confidence: 0.7},
		{Timestamp: ms(400), Text: "", Confidence: 0},
		{Timestamp: ms(500), Text: "再見", Confidence: 0.9},
		{Timestamp: ms(700), Text: "再見", Confidence: 0.9},
		{Timestamp: ms(800), Text: "閃", Confidence: 0.9},
		{Timestamp: ms(850), Text: "", Confidence: 0},
	}
}

const sampleSRT = "1\n00:00:00,000 --> 00:00:00,400\n你好...\n\n" +
	"2\n00:00:00,500 --> 00:00:00,800\n再見\n\n"

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
