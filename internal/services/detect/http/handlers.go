// Package http provides http transport for detection
package http

import (
	stdhttp "net/http"

	"cmsradar/internal/modkit/httpkit"
	"cmsradar/internal/services/detect/domain"
	svc "cmsradar/internal/services/detect/service"
)

// Register mounts detect endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.DetectURLInput](r, "/url", h.url)
	httpkit.PostJSON[domain.DetectHTMLInput](r, "/html", h.html)
	httpkit.PostJSON[domain.DetectBatchInput](r, "/batch", h.batch)
	httpkit.Get(r, "/recent", h.recent)
	httpkit.Get(r, "/signatures", h.signatures)
}

type handlers struct{ svc domain.ServicePort }

// @Summary Detect the CMS behind a public URL
// @Tags Detect
// @Accept json
// @Produce json
// @Param payload body domain.DetectURLInput true "Page"
// @Success 200 {object} domain.Detection "ok"
// @Router /detect/url [post]
func (h *handlers) url(r *stdhttp.Request, in domain.DetectURLInput) (any, error) {
	return h.svc.DetectURL(r.Context(), in)
}

// @Summary Detect the CMS from raw HTML
// @Tags Detect
// @Accept json
// @Produce json
// @Param payload body domain.DetectHTMLInput true "Markup"
// @Success 200 {object} domain.Detection "ok"
// @Router /detect/html [post]
func (h *handlers) html(r *stdhttp.Request, in domain.DetectHTMLInput) (any, error) {
	return h.svc.DetectHTML(r.Context(), in)
}

// @Summary Detect several URLs at once
// @Tags Detect
// @Accept json
// @Produce json
// @Param payload body domain.DetectBatchInput true "Pages"
// @Success 200 {object} domain.BatchResult "ok"
// @Router /detect/batch [post]
func (h *handlers) batch(r *stdhttp.Request, in domain.DetectBatchInput) (any, error) {
	return h.svc.DetectBatch(r.Context(), in)
}

// @Summary Recently recorded detections
// @Tags Detect
// @Produce json
// @Param limit query int false "1..100, default 20"
// @Success 200 {array} domain.Detection "ok"
// @Router /detect/recent [get]
func (h *handlers) recent(r *stdhttp.Request) (any, error) {
	limit, err := httpkit.QueryInt(r, "limit", svc.DefaultRecent, 1, svc.MaxRecent)
	if err != nil {
		return nil, err
	}
	items, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		return nil, err
	}
	return httpkit.List(items, len(items), limit), nil
}

// @Summary Active signature table
// @Tags Detect
// @Produce json
// @Success 200 {object} domain.Signatures "ok"
// @Router /detect/signatures [get]
func (h *handlers) signatures(*stdhttp.Request) (any, error) {
	return h.svc.Signatures(), nil
}
