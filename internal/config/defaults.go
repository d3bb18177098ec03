package config

const (
	defaultStateDir          = "~/.local/share/ocrsub"
	defaultLogDir            = "~/.local/share/ocrsub/logs"
	defaultMinSentenceTimeMS = 100
	defaultNoiseChars        = "`_,'\"|=()<>[]{}?/\\:;+-~!@#$%^&*1234567890"
	defaultStripChars        = " ."
	defaultFillerChars       = " 一"
	defaultExactMaxLen       = 2
	defaultShortMaxLen       = 6
	defaultShortMaxDistance  = 1
	defaultLongMaxDistance   = 2
	defaultSamplingStride    = 3
	defaultRegionTop         = 0.76
	defaultRegionBottom      = 0.98
	defaultRegionLeft        = 0.10
	defaultRegionRight       = 0.90
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"

	// minRegionSpan keeps the crop area from collapsing to a sliver.
	minRegionSpan = 0.05
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Segmentation: Segmentation{
			MinSentenceTimeMS: defaultMinSentenceTimeMS,
		},
		Similarity: Similarity{
			StripChars:       defaultStripChars,
			FillerChars:      defaultFillerChars,
			ExactMaxLen:      defaultExactMaxLen,
			ShortMaxLen:      defaultShortMaxLen,
			ShortMaxDistance: defaultShortMaxDistance,
			LongMaxDistance:  defaultLongMaxDistance,
		},
		Normalize: Normalize{
			NoiseChars: defaultNoiseChars,
		},
		Sampling: Sampling{
			Stride: defaultSamplingStride,
		},
		Region: Region{
			Top:    defaultRegionTop,
			Bottom: defaultRegionBottom,
			Left:   defaultRegionLeft,
			Right:  defaultRegionRight,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
