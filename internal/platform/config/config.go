// Package config reads application configuration from environment variables
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"cmsradar/internal/platform/logger"
)

// Conf is a namespaced view over environment variables
// New() reads bare keys, Prefix("CORE_API_") scopes a module
type Conf struct{ prefix string }

// New creates a root Conf with no prefix
func New() Conf { return Conf{} }

// Prefix creates a child Conf, e.g. cfg.Prefix("CORE_").Prefix("FETCH_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

// lookup returns the trimmed value and the fully qualified key
func (c Conf) lookup(k string) (string, string) {
	full := c.key(k)
	return strings.TrimSpace(os.Getenv(full)), full
}

func missing(key string) {
	logger.Get().Panic().Str("key", key).Msg("missing required env")
}

func invalid(key, value, what string) {
	logger.Get().Panic().Str("key", key).Str("value", value).Msg(what)
}

// MustString panics if the key is missing or empty
func (c Conf) MustString(key string) string {
	v, full := c.lookup(key)
	if v == "" {
		missing(full)
	}
	return v
}

// MustInt panics if the key is missing or not an int
func (c Conf) MustInt(key string) int {
	s := c.MustString(key)
	v, err := strconv.Atoi(s)
	if err != nil {
		invalid(c.key(key), s, "invalid int value")
	}
	return v
}

// MustBool panics if the key is missing or not a bool
func (c Conf) MustBool(key string) bool {
	s := c.MustString(key)
	v, err := strconv.ParseBool(s)
	if err != nil {
		invalid(c.key(key), s, "invalid bool value")
	}
	return v
}

// MustDuration panics if the key is missing or not a Go duration
func (c Conf) MustDuration(key string) time.Duration {
	s := c.MustString(key)
	d, err := time.ParseDuration(s)
	if err != nil {
		invalid(c.key(key), s, "invalid duration (e.g. 250ms, 2s, 1h)")
	}
	return d
}

// MustPort returns a listen addr like ":4000" after checking 1..65535
func (c Conf) MustPort(key string) string {
	s := c.MustString(key)
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		invalid(c.key(key), s, "invalid TCP port, expected 1..65535")
	}
	return ":" + s
}

// Require panics on the first missing key
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		if v, full := c.lookup(k); v == "" {
			missing(full)
		}
	}
}

// MayString returns the value or def when unset
func (c Conf) MayString(key, def string) string {
	if v, _ := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def when unset, invalid values log and fall back
func (c Conf) MayInt(key string, def int) int {
	s, full := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Warn().Str("key", full).Str("value", s).Int("default", def).Msg("invalid int, using default")
		return def
	}
	return v
}

// MayPositiveInt is MayInt that also rejects values below 1
func (c Conf) MayPositiveInt(key string, def int) int {
	v := c.MayInt(key, def)
	if v < 1 {
		logger.Get().Warn().Str("key", c.key(key)).Int("value", v).Int("default", def).Msg("non positive int, using default")
		return def
	}
	return v
}

// MayBool returns the value or def when unset, invalid values log and fall back
func (c Conf) MayBool(key string, def bool) bool {
	s, full := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		logger.Get().Warn().Str("key", full).Str("value", s).Bool("default", def).Msg("invalid bool, using default")
		return def
	}
	return v
}

// MayDuration returns the value or def when unset, invalid values log and fall back
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s, full := c.lookup(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Get().Warn().Str("key", full).Str("value", s).Dur("default", def).Msg("invalid duration, using default")
		return def
	}
	return d
}

// MayCSV splits a comma separated value, blanks dropped, def when nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	s, _ := c.lookup(key)
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
