// Package http provides http transport for the CMS directory
package http

import (
	"io"
	"mime"
	stdhttp "net/http"
	"strings"

	"cmsradar/internal/modkit/httpkit"
	perr "cmsradar/internal/platform/errors"
	"cmsradar/internal/platform/net/middleware"
	"cmsradar/internal/services/directory/domain"
)

// MaxImportBytes caps an import body
const MaxImportBytes = 2 << 20

// Register mounts the public directory endpoints and the protected import
func Register(r httpkit.Router, s domain.ServicePort, auth middleware.AuthPort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/tags", h.tags)
	httpkit.Get(r, "/compare", h.compare)
	httpkit.Get(r, "/{slug}", h.get)
	httpkit.Protected(r, auth, func(pr httpkit.Router) {
		httpkit.PostRaw(pr, "/import", h.importCSV)
	})
}

type handlers struct{ svc domain.ServicePort }

// @Summary List published CMS entries
// @Tags CMS
// @Produce json
// @Param tag query string false "Only entries carrying this tag"
// @Param featured query bool false "Only featured or only regular entries"
// @Success 200 {array} domain.CMS "ok"
// @Router /cms [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	featured, err := httpkit.QueryBool(r, "featured")
	if err != nil {
		return nil, err
	}
	items, err := h.svc.List(r.Context(), domain.ListInput{
		Tag:      r.URL.Query().Get("tag"),
		Featured: featured,
	})
	if err != nil {
		return nil, err
	}
	return httpkit.List(items, len(items), 0), nil
}

// @Summary Tags used by published entries
// @Tags CMS
// @Produce json
// @Success 200 {array} string "ok"
// @Router /cms/tags [get]
func (h *handlers) tags(r *stdhttp.Request) (any, error) {
	return h.svc.Tags(r.Context())
}

// @Summary Compare two to four entries side by side
// @Tags CMS
// @Produce json
// @Param slugs query string true "Comma separated slugs"
// @Success 200 {array} domain.CMS "ok"
// @Router /cms/compare [get]
func (h *handlers) compare(r *stdhttp.Request) (any, error) {
	return h.svc.Compare(r.Context(), domain.CompareInput{Slugs: httpkit.QueryCSV(r, "slugs")})
}

// @Summary One published entry
// @Tags CMS
// @Produce json
// @Param slug path string true "Entry slug"
// @Success 200 {object} domain.CMS "ok"
// @Router /cms/{slug} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.GetBySlug(r.Context(), httpkit.Param(r, "slug"))
}

// @Summary Import entries from CSV
// @Tags CMS
// @Accept text/csv,json
// @Produce json
// @Security bearerAuth
// @Success 201 {object} domain.ImportResult "created"
// @Router /cms/import [post]
func (h *handlers) importCSV(r *stdhttp.Request) (any, error) {
	actor, err := httpkit.Subject(r)
	if err != nil {
		return nil, err
	}
	in, err := readImport(r)
	if err != nil {
		return nil, err
	}
	res, err := h.svc.Import(r.Context(), in, actor)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(res), nil
}

// readImport accepts a raw text/csv body or JSON {"csv": "..."}
func readImport(r *stdhttp.Request) (domain.ImportInput, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		r.Body = stdhttp.MaxBytesReader(nil, r.Body, MaxImportBytes)
		return httpkit.Bind[domain.ImportInput](r)
	}
	if mt != "" && mt != "text/csv" && mt != "text/plain" {
		return domain.ImportInput{}, perr.WithField(perr.InvalidArgf("unsupported content type %q, send text/csv or application/json", mt), "content_type")
	}

	raw, err := io.ReadAll(stdhttp.MaxBytesReader(nil, r.Body, MaxImportBytes))
	if err != nil {
		return domain.ImportInput{}, perr.WithField(perr.Validationf("csv body is unreadable or larger than %d bytes", MaxImportBytes), "csv")
	}
	in := domain.ImportInput{CSV: strings.TrimPrefix(string(raw), "\ufeff")}
	if err := httpkit.Validate(in); err != nil {
		return domain.ImportInput{}, err
	}
	return in, nil
}
