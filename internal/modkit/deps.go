package modkit

import (
	"cmsradar/internal/modkit/repokit"
	"cmsradar/internal/platform/config"
	"cmsradar/internal/platform/logger"
)

// Deps holds the shared dependencies handed to every module
// PG is nil when the process runs without a database
type Deps struct {
	Log *logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}

// HasPG reports whether a store is wired
func (d Deps) HasPG() bool { return d.PG != nil }

// Logger returns Log or a component logger named after the module
func (d Deps) Logger(component string) *logger.Logger {
	if d.Log != nil {
		l := d.Log.With().Str("component", component).Logger()
		return &l
	}
	return logger.Named(component)
}
