// @title         cmsradar API
// @version       0.1.0
// @description   CMS detection and directory endpoints

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"cmsradar/internal/modkit/repokit"
	"cmsradar/internal/platform/config"
	"cmsradar/internal/platform/logger"
	phttp "cmsradar/internal/platform/net/http"
	"cmsradar/internal/platform/net/middleware"
	"cmsradar/internal/platform/store"
	"cmsradar/migrations"

	"cmsradar/internal/services/api"

	"github.com/go-chi/chi/v5"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	logger.Init(logger.FromEnv())
	l := logger.Get()

	// postgres is optional, without SERVICE_PGSQL_DBURL only detection runs
	pgCfg := store.FromEnv(root, "cmsradar-api")
	st, err := store.Open(ctx, pgCfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if st.PG != nil {
		gctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		repokit.MustGuard(gctx, st)
		cancel()

		if root.Prefix("SERVICE_PGSQL_").MayBool("MIGRATE", true) {
			if _, err := migrations.Apply(ctx, st.PG); err != nil {
				l.Panic().Err(err).Msg("migrations failed")
			}
		}
	}

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg, func(m *chi.Mux) {
		m.Use(middleware.Heartbeat("/healthz"))
	})

	opts := api.FromConfig(root)
	opts.Store = st
	opts.Logger = l
	mods := api.Mount(srv.Router(), opts)
	l.Info().Int("modules", len(mods)).Bool("pg", st.PG != nil).Msg("api mounted")

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
	l.Info().Msg("bye")
}
