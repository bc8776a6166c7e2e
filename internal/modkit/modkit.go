// Package modkit provides module wiring and the deps modules are built from
package modkit

import "cmsradar/internal/modkit/module"

// Module is the surface the API mounts, see module.Module
type Module = module.Module

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module
