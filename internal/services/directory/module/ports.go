package module

import "cmsradar/internal/services/directory/domain"

// Ports are what other modules may consume from the directory
type Ports struct {
	Service domain.ServicePort
	Lookup  domain.LookupPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
