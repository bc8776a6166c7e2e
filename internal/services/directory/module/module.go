// Package module wires the CMS directory into the API using modkit
package module

import (
	modkit "cmsradar/internal/modkit"
	"cmsradar/internal/modkit/httpkit"
	str "cmsradar/internal/platform/strings"
	dirhttp "cmsradar/internal/services/directory/http"
	dirrepo "cmsradar/internal/services/directory/repo"
	dirsvc "cmsradar/internal/services/directory/service"
)

// AdminSubject names whoever holds the admin token in import records
const AdminSubject = "admin"

// Module implements modkit.Module
type Module struct {
	b     modkit.Built
	svc   dirsvc.Service
	auth  *httpkit.Port
	ports Ports
}

// New builds the directory module, deps.PG is required
// the import route is locked unless CORE_API_ADMIN_TOKEN is set
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("cms"), modkit.WithPrefix("/cms")}, opts...)...)

	if !deps.HasPG() {
		panic("directory module requires a database")
	}
	svc := dirsvc.New(deps.PG, dirrepo.NewPG())

	token := deps.Cfg.Prefix("CORE_API_").MayString("ADMIN_TOKEN", "")
	if token == "" {
		deps.Logger("directory").Warn().Msg("CORE_API_ADMIN_TOKEN is empty, cms import is locked")
	}

	return &Module{
		b:     b,
		svc:   svc,
		auth:  httpkit.StaticToken(token, AdminSubject),
		ports: Ports{Service: svc, Lookup: svc},
	}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		dirhttp.Register(rr, m.svc, m.auth)
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }
