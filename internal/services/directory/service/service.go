// Package service contains the CMS directory workflows
package service

import (
	"context"
	"errors"
	"strings"

	"cmsradar/internal/core/slug"
	"cmsradar/internal/modkit/repokit"
	perr "cmsradar/internal/platform/errors"
	"cmsradar/internal/platform/logger"
	"cmsradar/internal/services/directory/domain"
	"cmsradar/internal/services/directory/repo"

	"github.com/google/uuid"
)

// compare bounds
const (
	MinCompare = 2
	MaxCompare = 4
)

// Service is the directory contract the module exposes
type Service interface {
	domain.ServicePort
	domain.LookupPort
}

// Svc implements Service
type Svc struct {
	Repo  repo.Repo
	log   logger.Logger
	newID func() uuid.UUID
}

// New builds the directory service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("directory.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("directory.Service requires a non nil Repo binder")
	}
	return &Svc{
		Repo:  binder.Bind(db),
		log:   *logger.Named("directory"),
		newID: uuid.New,
	}
}

// List returns published entries, featured first then by name
func (s *Svc) List(ctx context.Context, in domain.ListInput) ([]domain.CMS, error) {
	rows, err := s.Repo.List(ctx, strings.TrimSpace(in.Tag), in.Featured)
	if err != nil {
		return nil, perr.FromPostgres(err, "list cms")
	}
	return toCMS(rows), nil
}

// GetBySlug returns one published entry by slug
func (s *Svc) GetBySlug(ctx context.Context, sl string) (domain.CMS, error) {
	sl = strings.ToLower(strings.TrimSpace(sl))
	if !slug.Valid(sl) {
		return domain.CMS{}, perr.NotFoundf("cms %q not found", sl)
	}
	row, err := s.Repo.BySlug(ctx, sl)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.CMS{}, perr.NotFoundf("cms %q not found", sl)
	}
	if err != nil {
		return domain.CMS{}, perr.FromPostgres(err, "get cms")
	}
	return fromRow(row), nil
}

// Compare returns 2..4 published entries in the order they were asked for
// repeated slugs count once
func (s *Svc) Compare(ctx context.Context, in domain.CompareInput) ([]domain.CMS, error) {
	want := make([]string, 0, len(in.Slugs))
	seen := map[string]bool{}
	for _, raw := range in.Slugs {
		sl := strings.ToLower(strings.TrimSpace(raw))
		if sl == "" || seen[sl] {
			continue
		}
		seen[sl] = true
		want = append(want, sl)
	}
	if len(want) < MinCompare || len(want) > MaxCompare {
		return nil, perr.WithField(perr.Validationf("compare needs between %d and %d distinct slugs", MinCompare, MaxCompare), "slugs")
	}

	rows, err := s.Repo.BySlugs(ctx, want)
	if err != nil {
		return nil, perr.FromPostgres(err, "compare cms")
	}
	bySlug := make(map[string]repo.RowCMS, len(rows))
	for _, r := range rows {
		bySlug[r.Slug] = r
	}
	out := make([]domain.CMS, 0, len(want))
	for _, sl := range want {
		r, ok := bySlug[sl]
		if !ok {
			return nil, perr.WithField(perr.NotFoundf("cms %q not found", sl), "slugs")
		}
		out = append(out, fromRow(r))
	}
	return out, nil
}

// Tags lists every tag used by a published entry
func (s *Svc) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.Repo.Tags(ctx)
	if err != nil {
		return nil, perr.FromPostgres(err, "list tags")
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// LookupByName finds a published entry by case insensitive name
func (s *Svc) LookupByName(ctx context.Context, name string) (domain.Summary, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Summary{}, false, nil
	}
	row, err := s.Repo.ByName(ctx, name)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.Summary{}, false, nil
	}
	if err != nil {
		return domain.Summary{}, false, perr.FromPostgres(err, "lookup cms")
	}
	return domain.Summary{Slug: row.Slug, Name: row.Name}, true, nil
}

func fromRow(r repo.RowCMS) domain.CMS {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.CMS{
		ID:          r.ID.String(),
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Website:     r.Website,
		ImageURL:    r.ImageURL,
		MarketShare: r.MarketShare,
		Tags:        tags,
		Featured:    r.Featured,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func toCMS(rows []repo.RowCMS) []domain.CMS {
	out := make([]domain.CMS, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out
}
