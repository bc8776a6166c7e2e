// Package api provides the HTTP API for the application
package api

import (
	"time"

	"cmsradar/internal/platform/config"
	"cmsradar/internal/platform/logger"
	phttp "cmsradar/internal/platform/net/http"
	"cmsradar/internal/platform/store"

	"cmsradar/internal/modkit"
	"cmsradar/internal/modkit/httpkit"
	"cmsradar/internal/modkit/module"
	"cmsradar/internal/modkit/swaggerkit"

	metamod "cmsradar/internal/services/api/meta/module"
	detectdom "cmsradar/internal/services/detect/domain"
	detectmod "cmsradar/internal/services/detect/module"
	dirmod "cmsradar/internal/services/directory/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store // nil runs detection only
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	CORSOrigins    []string
	Timeout        time.Duration
	SlowRequest    time.Duration
}

// FromConfig reads CORE_API_* into Options, Store and Logger stay unset
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_API_")
	return Options{
		Config:         cfg,
		EnableSwagger:  c.MayBool("SWAGGER", true),
		EnableProfiler: c.MayBool("PROFILER", false),
		CORSOrigins:    c.MayCSV("CORS_ORIGINS", []string{"*"}),
		Timeout:        c.MayDuration("TIMEOUT", 60*time.Second),
		SlowRequest:    c.MayDuration("SLOW_REQUEST", 2*time.Second),
	}
}

// Mount mounts the API service onto the given router and returns the mounted modules
func Mount(r phttp.Router, opt Options) []module.Module {
	deps := modkit.Deps{
		Log: opt.Logger,
		Cfg: opt.Config,
	}
	if opt.Store != nil && opt.Store.PG != nil {
		deps.PG = opt.Store.PG
	}

	mods := []module.Module{metamod.New(deps)}

	// the directory owns the lookup port detect links results through
	var detectPorts detectdom.Ports
	if deps.HasPG() {
		dir := dirmod.New(deps)
		detectPorts.Directory = module.MustPortsOf[dirmod.Ports](dir).Lookup
		mods = append(mods, dir)
	} else {
		deps.Logger("api").Warn().Msg("no database configured, cms directory and detection history are off")
	}
	mods = append(mods, detectmod.New(deps, modkit.WithPorts(detectPorts)))

	httpkit.MountAPIV1(r, httpkit.CommonStack(httpkit.StackOptions{
		CORSOrigins: opt.CORSOrigins,
		Timeout:     opt.Timeout,
		SlowRequest: opt.SlowRequest,
	}), func(api httpkit.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	swaggerkit.Mount(r, swaggerkit.Options{Enabled: opt.EnableSwagger})
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	return mods
}
