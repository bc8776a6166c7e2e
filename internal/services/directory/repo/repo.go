// Package repo provides postgres access for the CMS directory
package repo

import (
	"context"
	"time"

	"cmsradar/internal/modkit/repokit"
	"cmsradar/internal/platform/store"

	"github.com/google/uuid"
)

// Repo is the directory persistence contract
type Repo interface {
	List(ctx context.Context, tag string, featured *bool) ([]RowCMS, error)
	BySlug(ctx context.Context, slug string) (RowCMS, error)
	BySlugs(ctx context.Context, slugs []string) ([]RowCMS, error)
	ByName(ctx context.Context, name string) (RowCMS, error)
	Tags(ctx context.Context) ([]string, error)

	Insert(ctx context.Context, in InsertCMS) error
	StartImport(ctx context.Context, id uuid.UUID, actor string, total int) error
	FinishImport(ctx context.Context, in FinishImport) error
}

// RowCMS is a cms row
type RowCMS struct {
	ID          uuid.UUID
	Slug        string
	Name        string
	Description string
	Website     string
	ImageURL    string
	MarketShare float64
	Tags        []string
	Featured    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InsertCMS is an unpublished entry created by an import
type InsertCMS struct {
	ID          uuid.UUID
	Slug        string
	Name        string
	Description string
	Website     string
	MarketShare float64
	Tags        []string
}

// FinishImport closes an import job
// Failures is the JSON encoded row error list
type FinishImport struct {
	ID        uuid.UUID
	Status    string
	Processed int
	Failed    int
	Failures  []byte
}

type (
	// PG implements Repo on Postgres
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG returns the Postgres binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds q to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const cmsColumns = `id, slug, name, description, website, image_url, market_share, tags, featured, created_at, updated_at`

func scanCMS(r repokit.Row) (RowCMS, error) {
	var c RowCMS
	err := r.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.Website, &c.ImageURL,
		&c.MarketShare, &c.Tags, &c.Featured, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *queries) List(ctx context.Context, tag string, featured *bool) ([]RowCMS, error) {
	const sql = `
select ` + cmsColumns + `
from cms
where published
and ($1 = '' or $1 = any(tags))
and ($2::boolean is null or featured = $2)
order by featured desc, name
`
	return store.Many(ctx, r.q, scanCMS, sql, tag, featured)
}

func (r *queries) BySlug(ctx context.Context, slug string) (RowCMS, error) {
	const sql = `select ` + cmsColumns + ` from cms where published and slug = $1`
	return store.One(ctx, r.q, scanCMS, sql, slug)
}

func (r *queries) BySlugs(ctx context.Context, slugs []string) ([]RowCMS, error) {
	const sql = `select ` + cmsColumns + ` from cms where published and slug = any($1)`
	return store.Many(ctx, r.q, scanCMS, sql, slugs)
}

func (r *queries) ByName(ctx context.Context, name string) (RowCMS, error) {
	const sql = `select ` + cmsColumns + ` from cms where published and lower(name) = lower($1)`
	return store.One(ctx, r.q, scanCMS, sql, name)
}

func (r *queries) Tags(ctx context.Context) ([]string, error) {
	const sql = `
select distinct t
from cms, unnest(tags) as t
where published
order by t
`
	return store.Many(ctx, r.q, func(row repokit.Row) (string, error) {
		var s string
		return s, row.Scan(&s)
	}, sql)
}

func (r *queries) Insert(ctx context.Context, in InsertCMS) error {
	const sql = `
insert into cms (id, slug, name, description, website, market_share, tags, published)
values ($1, $2, $3, $4, $5, $6, $7, false)
`
	return store.ExecOne(ctx, r.q, sql, in.ID, in.Slug, in.Name, in.Description, in.Website, in.MarketShare, in.Tags)
}

func (r *queries) StartImport(ctx context.Context, id uuid.UUID, actor string, total int) error {
	const sql = `
insert into cms_imports (id, actor, status, records_total)
values ($1, $2, 'processing', $3)
`
	return store.ExecOne(ctx, r.q, sql, id, actor, total)
}

func (r *queries) FinishImport(ctx context.Context, in FinishImport) error {
	const sql = `
update cms_imports
set status = $2, records_processed = $3, records_failed = $4, failures = $5::jsonb, updated_at = now()
where id = $1
`
	failures := in.Failures
	if len(failures) == 0 {
		failures = []byte("[]")
	}
	return store.ExecOne(ctx, r.q, sql, in.ID, in.Status, in.Processed, in.Failed, string(failures))
}
