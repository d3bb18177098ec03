package textnorm

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Replacement is a literal substring fix-up.
type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Rules is the correction table consumed by ApplyCorrections.
type Rules struct {
	DropExact            []string      `yaml:"drop_exact"`
	DropContaining       []string      `yaml:"drop_containing"`
	Replacements         []Replacement `yaml:"replacements"`
	CanonicalizeEllipsis bool          `yaml:"canonicalize_ellipsis"`
}

// DefaultRules returns the built-in correction table.
func DefaultRules() Rules {
	rules, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("textnorm: embedded rules invalid: %v", err))
	}
	return rules
}

// ParseRules decodes a YAML rule table. Unknown keys are rejected.
func ParseRules(data []byte) (Rules, error) {
	var rules Rules
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rules); err != nil {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// LoadRules reads a YAML rule table from disk.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return Rules{}, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// Validate rejects empty patterns and replacements whose output contains their
// own pattern, which would make repeated normalization keep growing the text.
func (r Rules) Validate() error {
	for i, marker := range r.DropContaining {
		if marker == "" {
			return fmt.Errorf("drop_containing[%d]: empty marker", i)
		}
	}
	for i, rep := range r.Replacements {
		if rep.From == "" {
			return fmt.Errorf("replacements[%d]: empty from", i)
		}
		if rep.To != rep.From && strings.Contains(rep.To, rep.From) {
			return fmt.Errorf("replacements[%d]: %q reappears in its replacement", i, rep.From)
		}
	}
	return nil
}
