// Package module defines the contract every API module satisfies and a
// small port registry for cross module wiring
package module

import (
	phttp "cmsradar/internal/platform/net/http"
)

// Module mounts routes and exposes the ports other modules may consume
// kept apart from modkit so a module can export its ports type without import knots
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
