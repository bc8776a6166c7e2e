package module

import "cmsradar/internal/platform/config"

// Options holds configuration settings for the detect module
type Options struct {
	Record   bool
	Workers  int
	MaxBatch int
	Scores   bool
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	df := cfg.Prefix("CORE_DETECT_")
	return Options{
		Record:   df.MayBool("RECORD", true),
		Workers:  df.MayPositiveInt("WORKERS", 4),
		MaxBatch: df.MayPositiveInt("MAX_BATCH", 20),
		Scores:   df.MayBool("SCORES", false),
	}
}
