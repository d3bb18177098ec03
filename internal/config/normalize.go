package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSimilarity()
	if err := c.normalizeText(); err != nil {
		return err
	}
	if c.Sampling.Stride <= 0 {
		c.Sampling.Stride = defaultSamplingStride
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeSimilarity leaves the character sets untouched: a space is a
// meaningful member of both.
func (c *Config) normalizeSimilarity() {
	if c.Similarity.StripChars == "" {
		c.Similarity.StripChars = defaultStripChars
	}
}

func (c *Config) normalizeText() error {
	rules := strings.TrimSpace(c.Normalize.RulesFile)
	if rules == "" {
		if value, ok := os.LookupEnv("OCRSUB_RULES_FILE"); ok {
			rules = strings.TrimSpace(value)
		}
	}
	if rules != "" {
		expanded, err := expandPath(rules)
		if err != nil {
			return fmt.Errorf("normalize.rules_file: %w", err)
		}
		rules = expanded
	}
	c.Normalize.RulesFile = rules
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("OCRSUB_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
