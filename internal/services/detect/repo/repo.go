// Package repo provides repository implementations for the detect service
package repo

import (
	"context"

	"cmsradar/internal/modkit/repokit"
	"cmsradar/internal/platform/store"
	"cmsradar/internal/services/detect/domain"

	"github.com/google/uuid"
)

// binder implements repokit.Binder[domain.StorageRepo]
type binder struct{}

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.StorageRepo { return &pg{q: q} }

type pg struct{ q repokit.Queryer }

// Insert stores one detection, ID must be a uuid
func (s *pg) Insert(ctx context.Context, r domain.Record) error {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return err
	}
	indicators := r.Indicators
	if indicators == nil {
		indicators = []string{}
	}
	const q = `
		INSERT INTO detections
			(id, url, detected, platform, confidence, indicators, title, generator, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	return store.ExecOne(ctx, s.q, q,
		id, r.URL, r.Detected, r.Platform, r.Confidence, indicators, r.Title, r.Generator, r.CreatedAt.UTC())
}

// Recent returns the newest detections first
func (s *pg) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	const q = `
		SELECT id, url, detected, platform, confidence, indicators, title, generator, created_at
		FROM detections
		ORDER BY created_at DESC, id
		LIMIT $1`
	return store.Many(ctx, s.q, func(row repokit.Row) (domain.Record, error) {
		var (
			r  domain.Record
			id uuid.UUID
		)
		err := row.Scan(&id, &r.URL, &r.Detected, &r.Platform, &r.Confidence, &r.Indicators, &r.Title, &r.Generator, &r.CreatedAt)
		r.ID = id.String()
		return r, err
	}, q, limit)
}
