package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"

	perr "cmsradar/internal/platform/errors"
	"cmsradar/internal/modkit/repokit"
	"cmsradar/internal/platform/logger"
	kit "cmsradar/internal/platform/testkit"
	"cmsradar/internal/services/directory/domain"
	"cmsradar/internal/services/directory/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRepo struct {
	rows     []repo.RowCMS
	inserted []repo.InsertCMS
	started  []uuid.UUID
	finished []repo.FinishImport

	insertErr func(in repo.InsertCMS) error
	listErr   error
}

func (f *fakeRepo) List(_ context.Context, tag string, featured *bool) ([]repo.RowCMS, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []repo.RowCMS
	for _, r := range f.rows {
		if tag != "" && !contains(r.Tags, tag) {
			continue
		}
		if featured != nil && r.Featured != *featured {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepo) BySlug(_ context.Context, slug string) (repo.RowCMS, error) {
	for _, r := range f.rows {
		if r.Slug == slug {
			return r, nil
		}
	}
	return repo.RowCMS{}, perr.ErrNotFound
}

func (f *fakeRepo) BySlugs(_ context.Context, slugs []string) ([]repo.RowCMS, error) {
	var out []repo.RowCMS
	for _, r := range f.rows {
		if contains(slugs, r.Slug) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ByName(_ context.Context, name string) (repo.RowCMS, error) {
	for _, r := range f.rows {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return repo.RowCMS{}, perr.ErrNotFound
}

func (f *fakeRepo) Tags(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, r := range f.rows {
		for _, t := range r.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeRepo) Insert(_ context.Context, in repo.InsertCMS) error {
	if f.insertErr != nil {
		if err := f.insertErr(in); err != nil {
			return err
		}
	}
	f.inserted = append(f.inserted, in)
	return nil
}

func (f *fakeRepo) StartImport(_ context.Context, id uuid.UUID, _ string, _ int) error {
	f.started = append(f.started, id)
	return nil
}

func (f *fakeRepo) FinishImport(_ context.Context, in repo.FinishImport) error {
	f.finished = append(f.finished, in)
	return nil
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func newSvc(f *fakeRepo) *Svc {
	return &Svc{Repo: f, log: *logger.Named("directory-test"), newID: uuid.New}
}

func seeded() *fakeRepo {
	return &fakeRepo{rows: []repo.RowCMS{
		{ID: uuid.New(), Slug: "wordpress", Name: "WordPress", MarketShare: 43.1, Tags: []string{"php", "blog"}, Featured: true},
		{ID: uuid.New(), Slug: "drupal", Name: "Drupal", MarketShare: 1.2, Tags: []string{"php"}},
		{ID: uuid.New(), Slug: "ghost", Name: "Ghost", Tags: nil},
		{ID: uuid.New(), Slug: "webflow", Name: "Webflow", Tags: []string{"saas"}},
	}}
}

type nopRunner struct{ repokit.Queryer }

func (nopRunner) Tx(context.Context, func(repokit.Queryer) error) error { return nil }

func TestNew_PanicsOnNil(t *testing.T) {
	kit.MustPanic(t, func() { New(nil, repo.NewPG()) })
	kit.MustPanic(t, func() { New(nopRunner{}, nil) })
}

func TestNew_BindsRepoToRunner(t *testing.T) {
	db := nopRunner{}
	fake := seeded()
	var bound repokit.Queryer
	s := New(db, repokit.BindFunc[repo.Repo](func(q repokit.Queryer) repo.Repo {
		bound = q
		return fake
	}))
	if bound != db {
		t.Fatalf("bound to %#v", bound)
	}
	items, err := s.List(context.Background(), domain.ListInput{})
	if err != nil || len(items) != len(fake.rows) {
		t.Fatalf("list through bound repo: %d %v", len(items), err)
	}
}

func TestList_Filters(t *testing.T) {
	s := newSvc(seeded())
	ctx := context.Background()

	all, err := s.List(ctx, domain.ListInput{})
	if err != nil || len(all) != 4 {
		t.Fatalf("all = %d, %v", len(all), err)
	}
	if all[2].Tags == nil {
		t.Fatal("nil tags should render as an empty list")
	}

	php, _ := s.List(ctx, domain.ListInput{Tag: " php "})
	if len(php) != 2 {
		t.Fatalf("php = %d", len(php))
	}

	yes := true
	feat, _ := s.List(ctx, domain.ListInput{Featured: &yes})
	if len(feat) != 1 || feat[0].Slug != "wordpress" {
		t.Fatalf("featured = %+v", feat)
	}
}

func TestList_DBError(t *testing.T) {
	f := seeded()
	f.listErr = &pgconn.PgError{Code: "57P01"}
	_, err := newSvc(f).List(context.Background(), domain.ListInput{})
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("unexpected code %v for %v", perr.CodeOf(err), err)
	}
}

func TestGetBySlug(t *testing.T) {
	s := newSvc(seeded())
	ctx := context.Background()

	got, err := s.GetBySlug(ctx, " WordPress ")
	if err != nil || got.Name != "WordPress" {
		t.Fatalf("got %+v, %v", got, err)
	}

	for _, sl := range []string{"missing", "not a slug!"} {
		_, err := s.GetBySlug(ctx, sl)
		if !perr.IsCode(err, perr.ErrorCodeNotFound) {
			t.Fatalf("%q: expected NotFound, got %v", sl, err)
		}
	}
}

func TestCompare(t *testing.T) {
	s := newSvc(seeded())
	ctx := context.Background()

	got, err := s.Compare(ctx, domain.CompareInput{Slugs: []string{"ghost", "WordPress", "ghost", " "}})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(got) != 2 || got[0].Slug != "ghost" || got[1].Slug != "wordpress" {
		t.Fatalf("order not kept: %+v", got)
	}

	cases := map[string][]string{
		"one":  {"ghost"},
		"dupe": {"ghost", "ghost"},
		"five": {"a", "b", "c", "d", "e"},
	}
	for name, slugs := range cases {
		_, err := s.Compare(ctx, domain.CompareInput{Slugs: slugs})
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("%s: expected Validation, got %v", name, err)
		}
		if e, _ := perr.As(err); e.Field() != "slugs" {
			t.Fatalf("%s: field %q", name, e.Field())
		}
	}

	_, err = s.Compare(ctx, domain.CompareInput{Slugs: []string{"ghost", "joomla"}})
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	kit.MustContain(t, err.Error(), "joomla")
}

func TestTags(t *testing.T) {
	tags, err := newSvc(seeded()).Tags(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	kit.MustEqual(t, tags, []string{"blog", "php", "saas"})

	empty, _ := newSvc(&fakeRepo{}).Tags(context.Background())
	if empty == nil || len(empty) != 0 {
		t.Fatalf("want empty non nil slice, got %#v", empty)
	}
}

func TestLookupByName(t *testing.T) {
	s := newSvc(seeded())
	ctx := context.Background()

	sum, ok, err := s.LookupByName(ctx, "wordpress")
	if err != nil || !ok || sum.Slug != "wordpress" {
		t.Fatalf("got %+v %v %v", sum, ok, err)
	}
	if _, ok, err := s.LookupByName(ctx, "Joomla"); ok || err != nil {
		t.Fatalf("unknown: ok=%v err=%v", ok, err)
	}
	if _, ok, err := s.LookupByName(ctx, "  "); ok || err != nil {
		t.Fatalf("blank: ok=%v err=%v", ok, err)
	}
}

const importCSV = `name,description,website,market_share,tags
Ghost CMS,Publishing,https://ghost.org,2.5,node,blog,node
,no name,,,
Strapi,Headless,ftp://strapi.io,,
Payload,Headless,https://payloadcms.com,101,
Sanity,,,, 

Craft CMS,,https://craftcms.com,,php
`

func TestImport_CountsRowsAndFailures(t *testing.T) {
	f := &fakeRepo{}
	s := newSvc(f)

	res, err := s.Import(context.Background(), domain.ImportInput{CSV: importCSV}, "admin")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Status != domain.ImportCompleted || res.Total != 6 || res.Processed != 3 || res.Failed != 3 {
		t.Fatalf("unexpected result %+v", res)
	}

	rows := map[int]string{}
	for _, fe := range res.Failures {
		rows[fe.Row] = fe.Reason
	}
	kit.MustContain(t, rows[3], "name is required")
	kit.MustContain(t, rows[4], "http or https")
	kit.MustContain(t, rows[5], "between 0 and 100")

	if len(f.inserted) != 3 {
		t.Fatalf("inserted %d", len(f.inserted))
	}
	ghost := f.inserted[0]
	if ghost.Slug != "ghost-cms" || ghost.MarketShare != 2.5 {
		t.Fatalf("ghost %+v", ghost)
	}
	kit.MustEqual(t, ghost.Tags, []string{"node", "blog"})
	if f.inserted[2].Slug != "craft-cms" {
		t.Fatalf("craft %+v", f.inserted[2])
	}

	if len(f.started) != 1 || len(f.finished) != 1 || f.finished[0].ID != f.started[0] {
		t.Fatalf("job bookkeeping started=%v finished=%v", f.started, f.finished)
	}
	fin := f.finished[0]
	if fin.Status != domain.ImportCompleted || fin.Processed != 3 || fin.Failed != 3 {
		t.Fatalf("finish %+v", fin)
	}
	var stored []domain.ImportRowError
	if err := json.Unmarshal(fin.Failures, &stored); err != nil || len(stored) != 3 {
		t.Fatalf("stored failures %s: %v", fin.Failures, err)
	}
}

func TestImport_DuplicateAndRetry(t *testing.T) {
	calls := map[string]int{}
	f := &fakeRepo{insertErr: func(in repo.InsertCMS) error {
		calls[in.Slug]++
		switch in.Slug {
		case "wordpress":
			return &pgconn.PgError{Code: "23505"}
		case "drupal":
			if calls[in.Slug] == 1 {
				return &pgconn.PgError{Code: "40001"}
			}
		}
		return nil
	}}

	res, err := newSvc(f).Import(context.Background(), domain.ImportInput{CSV: "name\nWordPress\nDrupal\n"}, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed != 1 || res.Failed != 1 {
		t.Fatalf("result %+v", res)
	}
	kit.MustContain(t, res.Failures[0].Reason, "already exists")
	if calls["drupal"] != 2 || calls["wordpress"] != 1 {
		t.Fatalf("calls %v", calls)
	}
}

func TestImport_DocumentErrors(t *testing.T) {
	s := newSvc(&fakeRepo{})
	ctx := context.Background()

	cases := map[string]string{
		"empty":     "",
		"bad quote": "name\n\"Ghost,x\n",
		"too long":  "name\n" + strings.Repeat("x\n", MaxImportRows+1),
	}
	for name, doc := range cases {
		_, err := s.Import(ctx, domain.ImportInput{CSV: doc}, "admin")
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("%s: expected Validation, got %v", name, err)
		}
	}
}

func TestImport_CanceledMarksJobFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeRepo{insertErr: func(repo.InsertCMS) error {
		cancel()
		return context.Canceled
	}}

	_, err := newSvc(f).Import(ctx, domain.ImportInput{CSV: "name\nGhost\nDrupal\n"}, "admin")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if len(f.finished) != 1 || f.finished[0].Status != domain.ImportFailed {
		t.Fatalf("finish %+v", f.finished)
	}
}
