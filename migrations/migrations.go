// Package migrations embeds the Postgres schema and applies it in order
package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"cmsradar/internal/platform/logger"
	"cmsradar/internal/platform/store"
)

//go:embed *.sql
var files embed.FS

// Migration is one embedded file, Version is its name without .sql
type Migration struct {
	Version string
	SQL     string
}

// Load returns the embedded migrations sorted by version
func Load() ([]Migration, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, Migration{Version: strings.TrimSuffix(name, ".sql"), SQL: string(data)})
	}
	return out, nil
}

const (
	ensureTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    text PRIMARY KEY,
    applied_at timestamptz NOT NULL DEFAULT now()
)`
	// serialises concurrent boots of several api replicas
	lockSQL    = `SELECT pg_advisory_xact_lock(7315003)`
	appliedSQL = `SELECT count(1) FROM schema_migrations WHERE version = $1`
	recordSQL  = `INSERT INTO schema_migrations (version) VALUES ($1)`
)

// Apply runs every migration not yet recorded, all inside one transaction
// it returns the versions it applied
func Apply(ctx context.Context, db store.TxRunner) ([]string, error) {
	ms, err := Load()
	if err != nil {
		return nil, err
	}
	log := logger.C(ctx)

	var applied []string
	err = db.Tx(ctx, func(q store.RowQuerier) error {
		if _, err := q.Exec(ctx, lockSQL); err != nil {
			return fmt.Errorf("lock migrations: %w", err)
		}
		if _, err := q.Exec(ctx, ensureTable); err != nil {
			return fmt.Errorf("ensure schema_migrations: %w", err)
		}
		for _, m := range ms {
			n, err := store.Scalar[int64](ctx, q, appliedSQL, m.Version)
			if err != nil {
				return fmt.Errorf("check migration %s: %w", m.Version, err)
			}
			if n > 0 {
				continue
			}
			if _, err := q.Exec(ctx, m.SQL); err != nil {
				return fmt.Errorf("apply migration %s: %w", m.Version, err)
			}
			if _, err := q.Exec(ctx, recordSQL, m.Version); err != nil {
				return fmt.Errorf("record migration %s: %w", m.Version, err)
			}
			applied = append(applied, m.Version)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(applied) > 0 {
		log.Info().Strs("versions", applied).Msg("migrations applied")
	}
	return applied, nil
}
