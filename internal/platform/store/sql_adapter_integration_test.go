//go:build integration_pg

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"cmsradar/internal/platform/store/pg"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}
	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("mapped port: %v", err)
	}
	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
}

type countingTracer struct {
	mu  sync.Mutex
	sql []string
}

func (c *countingTracer) OnQuery(_ context.Context, ev pg.QueryEvent) {
	c.mu.Lock()
	c.sql = append(c.sql, ev.SQL)
	c.mu.Unlock()
}

func TestSQLAdapter_Integration_TxAndTrace(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s, err := Open(ctx, Config{AppName: "cmsradar-store-it", PG: PGConfig{Enabled: true, URL: dsn, MaxConns: 2}},
		WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Guard(ctx); err != nil {
		t.Fatalf("guard: %v", err)
	}

	tr := &countingTracer{}
	a := s.PG.(*pgAdapter)
	a.tracer = tr

	if _, err := Exec(ctx, s.PG, `CREATE TABLE platforms (slug text PRIMARY KEY, weight int NOT NULL)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	err = s.PG.Tx(ctx, func(q RowQuerier) error {
		if err := ExecOne(ctx, q, `INSERT INTO platforms VALUES ($1, $2)`, "ghost", 1); err != nil {
			return err
		}
		return errors.New("abort")
	})
	if err == nil || err.Error() != "abort" {
		t.Fatalf("expected abort got %v", err)
	}
	n, err := Scalar[int64](ctx, s.PG, `SELECT count(*) FROM platforms`)
	if err != nil || n != 0 {
		t.Fatalf("rollback left %d rows (%v)", n, err)
	}

	err = s.PG.Tx(ctx, func(q RowQuerier) error {
		for i, slug := range []string{"wordpress", "ghost"} {
			if err := ExecOne(ctx, q, `INSERT INTO platforms VALUES ($1, $2)`, slug, i+1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	type p struct {
		Slug   string
		Weight int
	}
	got, err := Many(ctx, s.PG, func(r Row) (p, error) {
		var x p
		return x, r.Scan(&x.Slug, &x.Weight)
	}, `SELECT slug, weight FROM platforms ORDER BY slug`)
	if err != nil || len(got) != 2 || got[0].Slug != "ghost" || got[1].Weight != 1 {
		t.Fatalf("many %+v %v", got, err)
	}

	rs, err := s.PG.Query(ctx, `SELECT slug, weight FROM platforms LIMIT 1`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	cols := rs.Columns()
	rs.Close()
	if len(cols) != 2 || cols[0] != "slug" {
		t.Fatalf("columns %v", cols)
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.sql) < 6 {
		t.Fatalf("expected traced statements inside and outside tx, got %d", len(tr.sql))
	}
}
