package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ocrsub/internal/frames"
)

// WriteText writes body to path, creating parent directories.
func WriteText(t testing.TB, path, body string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteFrames encodes frames as JSONL at path. A negative end omits the
// duration record.
func WriteFrames(t testing.TB, path string, list []frames.Frame, end time.Duration) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := frames.EncodeJSONL(f, list, end); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
