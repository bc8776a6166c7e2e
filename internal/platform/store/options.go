package store

import (
	"errors"

	"cmsradar/internal/platform/logger"
)

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger used by subclients
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithPG installs a ready made TxRunner, for tests and embedding
func WithPG(tx TxRunner) Option {
	return func(s *Store) error {
		if tx == nil {
			return errors.New("store: nil pg runner")
		}
		s.PG = tx
		return nil
	}
}
