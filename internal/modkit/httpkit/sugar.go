package httpkit

import (
	"net/http"

	phttp "cmsradar/internal/platform/net/http"
)

// Get mounts a body-less handler under GET
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	phttp.GetJSON(r, path, h)
}

// PostJSON mounts a handler that binds and validates a T body
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	phttp.PostJSON(r, path, h)
}

// PostRaw mounts a POST handler that reads the body itself, e.g. text/csv
func PostRaw(r Router, path string, h func(*http.Request) (any, error)) {
	phttp.PostRaw(r, path, h)
}
