package textnorm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ocrsub/internal/config"
)

func TestStripNoise(t *testing.T) {
	n := New(DefaultOptions())
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "你好", "你好"},
		{"digits and symbols", "12你|好[]", "你好"},
		{"trims whitespace", "  你好  ", "你好"},
		{"keeps interior space", "你好 世界", "你好 世界"},
		{"keeps periods", "你好...", "你好..."},
		{"only noise", "`_,'\"|=()<>[]{}?/\\:;+-~!@#$%^&*1234567890", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.StripNoise(tt.in); got != tt.want {
				t.Fatalf("StripNoise(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripNoiseFoldWidth(t *testing.T) {
	opts := DefaultOptions()
	if got := New(opts).StripNoise("你好？１"); got != "你好？１" {
		t.Fatalf("expected fullwidth runes untouched without folding, got %q", got)
	}
	opts.FoldWidth = true
	if got := New(opts).StripNoise("你好？１"); got != "你好" {
		t.Fatalf("expected folded noise to be stripped, got %q", got)
	}
}

func TestApplyCorrections(t *testing.T) {
	n := New(DefaultOptions())
	tests := []struct {
		in   string
		want string
	}{
		{".", ""},
		{"..", ""},
		{"...", "..."},
		{"等下", "等一下"},
		{"親下我", "親一下我"},
		{"你看下", "你看一下"},
		{"請撥打客服專線", ""},
		{"你好.", "你好..."},
		{"你好..", "你好..."},
		{"你好...", "你好..."},
		{"你好....", "你好...."},
		{"a.b..c...d", "a...b...c...d"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := n.ApplyCorrections(tt.in); got != tt.want {
				t.Fatalf("ApplyCorrections(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyCorrectionsIdempotent(t *testing.T) {
	n := New(DefaultOptions())
	inputs := []string{".", "..", "等下.", "親下..看下", "客服專線", "你好.世界..", "....", "x . y", "等一下", ""}
	for _, in := range inputs {
		once := n.ApplyCorrections(in)
		if twice := n.ApplyCorrections(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeOrder(t *testing.T) {
	n := New(DefaultOptions())
	if got := n.Normalize(" 1.2 "); got != "" {
		t.Fatalf("expected digits stripped before dropping lone period, got %q", got)
	}
	if got := n.Normalize("|等下|"); got != "等一下" {
		t.Fatalf("unexpected normalize result %q", got)
	}
}

func TestSyntheticAlphabet(t *testing.T) {
	n := New(Options{
		NoiseChars: "xy",
		Rules: Rules{
			DropExact:    []string{"z"},
			Replacements: []Replacement{{From: "ab", To: "a-b"}, {From: "a-", To: "A-"}},
		},
	})
	if got := n.Normalize("xzy"); got != "" {
		t.Fatalf("expected drop after noise strip, got %q", got)
	}
	if got := n.Normalize("xaby"); got != "A-b" {
		t.Fatalf("expected ordered replacements, got %q", got)
	}
	if got := n.Normalize("1."); got != "1." {
		t.Fatalf("expected no ellipsis rewrite when disabled, got %q", got)
	}
}

func TestParseRulesRejectsBadTables(t *testing.T) {
	tests := map[string]string{
		"unknown key":    "drop_everything: true\n",
		"empty from":     "replacements:\n  - from: \"\"\n    to: x\n",
		"self expanding": "replacements:\n  - from: 下\n    to: 一下\n",
		"empty marker":   "drop_containing: [\"\"]\n",
		"not a mapping":  "- a\n- b\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseRules([]byte(body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFromConfigLoadsRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	body := "drop_exact: [\"-\"]\nreplacements:\n  - from: 咁\n    to: 這麼\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	cfg := config.Default().Normalize
	cfg.RulesFile = path

	n, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if got := n.Normalize("咁好"); got != "這麼好" {
		t.Fatalf("expected custom replacement, got %q", got)
	}
	if got := n.Normalize("等下"); got != "等下" {
		t.Fatalf("expected default table to be replaced, got %q", got)
	}
}

func TestFromConfigMissingRulesFile(t *testing.T) {
	cfg := config.Default().Normalize
	cfg.RulesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := FromConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "read rules") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestDefaultNoiseCharsMatchConfig(t *testing.T) {
	if got := config.Default().Normalize.NoiseChars; got != DefaultNoiseChars {
		t.Fatalf("config noise set %q drifted from %q", got, DefaultNoiseChars)
	}
}
