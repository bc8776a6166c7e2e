package httpkit

import (
	"net/http"
	"strings"

	perr "cmsradar/internal/platform/errors"
	pnet "cmsradar/internal/platform/net"
)

// Subject returns the authenticated caller set by the auth middleware
func Subject(r *http.Request) (string, error) {
	s := pnet.Subject(r.Context())
	if s == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	return s, nil
}

// Bearer returns the raw token from Authorization, the scheme is case insensitive
func Bearer(r *http.Request) (string, error) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	tok := strings.TrimSpace(s[len(prefix):])
	if tok == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	return tok, nil
}
