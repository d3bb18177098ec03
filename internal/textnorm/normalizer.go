package textnorm

import (
	"strings"

	"golang.org/x/text/width"

	"ocrsub/internal/config"
)

// DefaultNoiseChars is the punctuation, symbol and digit set recognizers emit
// as caption-box artifacts.
const DefaultNoiseChars = "`_,'\"|=()<>[]{}?/\\:;+-~!@#$%^&*1234567890"

const ellipsis = "..."

// Options configures a Normalizer.
type Options struct {
	// NoiseChars lists runes removed from every raw reading. Empty removes nothing.
	NoiseChars string
	// FoldWidth maps fullwidth forms to their narrow equivalents before stripping.
	FoldWidth bool
	Rules     Rules
}

// DefaultOptions returns the built-in noise set and correction table.
func DefaultOptions() Options {
	return Options{NoiseChars: DefaultNoiseChars, Rules: DefaultRules()}
}

// Normalizer strips noise and applies corrections. It is immutable and safe
// for concurrent use.
type Normalizer struct {
	noise     map[rune]struct{}
	foldWidth bool
	rules     Rules
}

// New builds a Normalizer from opts.
func New(opts Options) *Normalizer {
	noise := make(map[rune]struct{}, len(opts.NoiseChars))
	for _, r := range opts.NoiseChars {
		noise[r] = struct{}{}
	}
	return &Normalizer{noise: noise, foldWidth: opts.FoldWidth, rules: opts.Rules}
}

// FromConfig builds a Normalizer from the [normalize] section, loading the
// rules file when one is configured.
func FromConfig(cfg config.Normalize) (*Normalizer, error) {
	rules := DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}
	return New(Options{NoiseChars: cfg.NoiseChars, FoldWidth: cfg.FoldWidth, Rules: rules}), nil
}

// StripNoise removes noise runes and trims surrounding whitespace.
func (n *Normalizer) StripNoise(raw string) string {
	if n.foldWidth {
		raw = width.Fold.String(raw)
	}
	if len(n.noise) > 0 {
		raw = strings.Map(func(r rune) rune {
			if _, ok := n.noise[r]; ok {
				return -1
			}
			return r
		}, raw)
	}
	return strings.TrimSpace(raw)
}

// ApplyCorrections filters junk readings and applies the correction table.
// An empty result means the reading carries no caption.
func (n *Normalizer) ApplyCorrections(text string) string {
	for _, exact := range n.rules.DropExact {
		if text == exact {
			return ""
		}
	}
	for _, marker := range n.rules.DropContaining {
		if strings.Contains(text, marker) {
			return ""
		}
	}
	for _, rep := range n.rules.Replacements {
		text = strings.ReplaceAll(text, rep.From, rep.To)
	}
	if n.rules.CanonicalizeEllipsis {
		text = canonicalizeEllipsis(text)
	}
	return text
}

// Normalize is StripNoise followed by ApplyCorrections.
func (n *Normalizer) Normalize(raw string) string {
	return n.ApplyCorrections(n.StripNoise(raw))
}

// canonicalizeEllipsis rewrites every run of one or two periods to "...";
// longer runs are kept as they are.
func canonicalizeEllipsis(text string) string {
	if !strings.Contains(text, ".") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 4)
	for i := 0; i < len(text); {
		if text[i] != '.' {
			b.WriteByte(text[i])
			i++
			continue
		}
		j := i
		for j < len(text) && text[j] == '.' {
			j++
		}
		if j-i < len(ellipsis) {
			b.WriteString(ellipsis)
		} else {
			b.WriteString(text[i:j])
		}
		i = j
	}
	return b.String()
}
