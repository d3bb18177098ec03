package similarity

import (
	"strings"

	"ocrsub/internal/config"
)

const ellipsis = "..."

// Options holds the comparison character sets and length-scaled tolerances.
type Options struct {
	// StripChars are removed from both readings before measuring distance.
	StripChars string
	// FillerChars are removed before the same-content comparison.
	FillerChars      string
	ExactMaxLen      int
	ShortMaxLen      int
	ShortMaxDistance int
	LongMaxDistance  int
}

// DefaultOptions mirrors the [similarity] defaults.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Similarity)
}

// OptionsFromConfig converts the [similarity] config section.
func OptionsFromConfig(cfg config.Similarity) Options {
	return Options{
		StripChars:       cfg.StripChars,
		FillerChars:      cfg.FillerChars,
		ExactMaxLen:      cfg.ExactMaxLen,
		ShortMaxLen:      cfg.ShortMaxLen,
		ShortMaxDistance: cfg.ShortMaxDistance,
		LongMaxDistance:  cfg.LongMaxDistance,
	}
}

// Classifier compares normalized readings.
type Classifier struct {
	opts  Options
	strip func(rune) rune
	fill  func(rune) rune
}

// New returns a Classifier using opts.
func New(opts Options) *Classifier {
	return &Classifier{
		opts:  opts,
		strip: dropRunes(opts.StripChars),
		fill:  dropRunes(opts.FillerChars),
	}
}

// Options returns the classifier configuration.
func (c *Classifier) Options() Options {
	return c.opts
}

// IsSimilar reports whether b is close enough to a to be the same sentence.
// The tolerance is chosen from the rune length of a, so the relation is not
// symmetric.
func (c *Classifier) IsSimilar(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ca := []rune(strings.Map(c.strip, a))
	cb := []rune(strings.Map(c.strip, b))

	n := len([]rune(a))
	switch {
	case n <= c.opts.ExactMaxLen:
		return string(ca) == string(cb)
	case n <= c.opts.ShortMaxLen:
		return runeDistance(ca, cb) <= c.opts.ShortMaxDistance
	default:
		return runeDistance(ca, cb) <= c.opts.LongMaxDistance
	}
}

// SameContent reports whether a and b carry identical wording once filler
// runes and ellipses are removed.
func (c *Classifier) SameContent(a, b string) bool {
	return c.baseText(a) == c.baseText(b)
}

func (c *Classifier) baseText(s string) string {
	return strings.ReplaceAll(strings.Map(c.fill, s), ellipsis, "")
}

func dropRunes(set string) func(rune) rune {
	if set == "" {
		return func(r rune) rune { return r }
	}
	return func(r rune) rune {
		if strings.ContainsRune(set, r) {
			return -1
		}
		return r
	}
}
