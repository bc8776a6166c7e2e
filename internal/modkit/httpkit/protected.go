package httpkit

import "cmsradar/internal/platform/net/middleware"

// Protected registers fn's routes in a group behind bearer auth
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		fn(gr)
	})
}
