// Package httpkit re-exports the platform http surface for modules so they
// never import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "cmsradar/internal/platform/net/http"
)

type (
	// Envelope is the transport envelope type
	Envelope = phttp.Envelope

	// Page is the listing metadata type
	Page = phttp.Page

	// Response is what return style handlers hand back
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Created returns a 201 response
func Created(data any) Response { return phttp.Created(data) }

// Error returns a response whose status comes from the error code
func Error(err error) Response { return phttp.Error(err) }

// List returns a 200 response with a page block
func List(items any, total, limit int) Response { return phttp.List(items, total, limit) }

// Handle adapts a Response returning function
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Param reads a path parameter such as {slug}
func Param(r *http.Request, name string) string { return phttp.Param(r, name) }
