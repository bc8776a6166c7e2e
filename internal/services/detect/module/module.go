// Package module implements the detect module
package module

import (
	"cmsradar/internal/adapters/fetch"
	"cmsradar/internal/core/fingerprint"
	"cmsradar/internal/modkit"
	"cmsradar/internal/modkit/httpkit"
	str "cmsradar/internal/platform/strings"
	"cmsradar/internal/services/detect/domain"
	detecthttp "cmsradar/internal/services/detect/http"
	detectrepo "cmsradar/internal/services/detect/repo"
	"cmsradar/internal/services/detect/service"
)

// Ports exposed by the detect module
type Ports struct {
	Service domain.ServicePort
}

// Module implements modkit.Module
type Module struct {
	b     modkit.Built
	svc   *service.Service
	ports Ports
}

// New constructs the detect module
// WithPorts(domain.Ports) is optional, a missing Fetcher gets the default fetch client
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("detect"),
		modkit.WithPrefix("/detect"),
	}, opts...)...)

	var ports domain.Ports
	if b.Ports != nil {
		p, ok := b.Ports.(domain.Ports)
		if !ok {
			panic("detect module: expected WithPorts(detect/domain.Ports)")
		}
		ports = p
	}
	if ports.Fetcher == nil {
		ports.Fetcher = fetch.NewClient(fetch.FromConfig(deps.Cfg))
	}

	cfg := FromConfig(deps.Cfg)
	var repo domain.StorageRepo
	if cfg.Record && deps.HasPG() {
		repo = detectrepo.NewPG().Bind(deps.PG)
	}
	deps.Logger("detect").Info().
		Bool("record", repo != nil).
		Bool("directory", ports.Directory != nil).
		Int("workers", cfg.Workers).
		Int("max_batch", cfg.MaxBatch).
		Msg("detect module ready")

	svc := service.New(fingerprint.New(fingerprint.MustLoad()), ports, repo, service.Config{
		Workers:       cfg.Workers,
		MaxBatch:      cfg.MaxBatch,
		IncludeScores: cfg.Scores,
	})
	return &Module{b: b, svc: svc, ports: Ports{Service: svc}}
}

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { detecthttp.Register(rr, m.svc) })
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }
