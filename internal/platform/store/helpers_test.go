package store

import (
	"context"
	"errors"
	"testing"

	perr "cmsradar/internal/platform/errors"
)

type fakeTag int64

func (f fakeTag) String() string      { return "UPDATE" }
func (f fakeTag) RowsAffected() int64 { return int64(f) }

type fakeRows struct {
	data [][]any
	i    int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dst ...any) error {
	row := r.data[r.i-1]
	for i := range dst {
		switch d := dst[i].(type) {
		case *string:
			*d = row[i].(string)
		case *int:
			*d = row[i].(int)
		}
	}
	return nil
}

func (r *fakeRows) Err() error        { return r.err }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return []string{"slug", "n"} }

type fakeQuerier struct {
	tag      CommandTag
	execErr  error
	rows     *fakeRows
	queryErr error
	lastSQL  string
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	f.lastSQL = sql
	return f.tag, f.execErr
}

func (f *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (Rows, error) {
	f.lastSQL = sql
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, _ ...any) Row {
	f.lastSQL = sql
	return f.rows
}

type item struct {
	Slug string
	N    int
}

func scanItem(r Row) (item, error) {
	var it item
	err := r.Scan(&it.Slug, &it.N)
	return it, err
}

func TestExecOne(t *testing.T) {
	ctx := context.Background()

	if err := ExecOne(ctx, &fakeQuerier{tag: fakeTag(1)}, "UPDATE cms_imports SET status = 'completed'"); err != nil {
		t.Fatalf("one row: %v", err)
	}
	if err := ExecOne(ctx, &fakeQuerier{tag: fakeTag(0)}, "UPDATE"); err == nil {
		t.Fatal("expected error for zero rows")
	}
	if err := ExecOne(ctx, &fakeQuerier{tag: fakeTag(11)}, "UPDATE"); err == nil {
		t.Fatal("expected error for eleven rows")
	}
	boom := errors.New("boom")
	if err := ExecOne(ctx, &fakeQuerier{execErr: boom}, "UPDATE"); !errors.Is(err, boom) {
		t.Fatalf("expected boom got %v", err)
	}
	if tag, err := Exec(ctx, &fakeQuerier{tag: fakeTag(3)}, "DELETE"); err != nil || tag.RowsAffected() != 3 {
		t.Fatalf("exec passthrough %v %v", tag, err)
	}
}

func TestScalar(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][]any{{"ghost"}}}}
	q.rows.Next()
	got, err := Scalar[string](context.Background(), q, "SELECT slug FROM cms LIMIT 1")
	if err != nil || got != "ghost" {
		t.Fatalf("scalar %q %v", got, err)
	}
}

func TestOne(t *testing.T) {
	ctx := context.Background()

	got, err := One(ctx, &fakeQuerier{rows: &fakeRows{data: [][]any{{"ghost", 1}}}}, scanItem, "SELECT")
	if err != nil || got != (item{"ghost", 1}) {
		t.Fatalf("one %+v %v", got, err)
	}

	_, err = One(ctx, &fakeQuerier{rows: &fakeRows{}}, scanItem, "SELECT")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found got %v", err)
	}

	_, err = One(ctx, &fakeQuerier{rows: &fakeRows{data: [][]any{{"a", 1}, {"b", 2}}}}, scanItem, "SELECT")
	if err == nil {
		t.Fatal("expected error for two rows")
	}

	boom := errors.New("conn reset")
	if _, err = One(ctx, &fakeQuerier{rows: &fakeRows{err: boom}}, scanItem, "SELECT"); !errors.Is(err, boom) {
		t.Fatalf("expected rows error got %v", err)
	}
}

func TestMany(t *testing.T) {
	ctx := context.Background()

	got, err := Many(ctx, &fakeQuerier{rows: &fakeRows{data: [][]any{{"ghost", 1}, {"wordpress", 2}}}}, scanItem, "SELECT")
	if err != nil || len(got) != 2 || got[1].Slug != "wordpress" {
		t.Fatalf("many %+v %v", got, err)
	}

	empty, err := Many(ctx, &fakeQuerier{rows: &fakeRows{}}, scanItem, "SELECT")
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty %+v %v", empty, err)
	}

	boom := errors.New("boom")
	if _, err := Many(ctx, &fakeQuerier{queryErr: boom}, scanItem, "SELECT"); !errors.Is(err, boom) {
		t.Fatalf("expected boom got %v", err)
	}
}
