// Package swaggerkit serves the OpenAPI document and the Swagger UI
package swaggerkit

import (
	"net/http"

	phttp "cmsradar/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Options configures Mount
type Options struct {
	Enabled     bool
	TitleSuffix string
}

// Mount serves /api/docs when enabled
func Mount(r phttp.Router, o Options) {
	if !o.Enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON(o.TitleSuffix))
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("cmsradar"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
