package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	if err := c.validateSimilarity(); err != nil {
		return err
	}
	if err := c.validateRegion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSegmentation() error {
	if c.Segmentation.MinSentenceTimeMS <= 0 {
		return errors.New("segmentation.min_sentence_time_ms must be positive")
	}
	return nil
}

func (c *Config) validateSimilarity() error {
	s := c.Similarity
	if s.ExactMaxLen < 0 {
		return errors.New("similarity.exact_max_len must be >= 0")
	}
	if s.ShortMaxLen < s.ExactMaxLen {
		return fmt.Errorf("similarity.short_max_len (%d) must be >= exact_max_len (%d)", s.ShortMaxLen, s.ExactMaxLen)
	}
	if s.ShortMaxDistance < 0 || s.LongMaxDistance < 0 {
		return errors.New("similarity distances must be >= 0")
	}
	if s.LongMaxDistance < s.ShortMaxDistance {
		return fmt.Errorf("similarity.long_max_distance (%d) must be >= short_max_distance (%d)", s.LongMaxDistance, s.ShortMaxDistance)
	}
	return nil
}

func (c *Config) validateRegion() error {
	r := c.Region
	for name, value := range map[string]float64{"top": r.Top, "bottom": r.Bottom, "left": r.Left, "right": r.Right} {
		if value < 0 || value > 1 {
			return fmt.Errorf("region.%s must be between 0 and 1", name)
		}
	}
	if r.Bottom-r.Top < minRegionSpan {
		return fmt.Errorf("region.bottom must exceed region.top by at least %.2f", minRegionSpan)
	}
	if r.Right-r.Left < minRegionSpan {
		return fmt.Errorf("region.right must exceed region.left by at least %.2f", minRegionSpan)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
