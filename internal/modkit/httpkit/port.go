package httpkit

import (
	"crypto/subtle"
	"net/http"

	perr "cmsradar/internal/platform/errors"
)

// TokenFunc maps a bearer token to a subject
type TokenFunc func(token string) (subject string, err error)

// Port implements middleware.AuthPort over a TokenFunc
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a parser function
func NewPortFunc(fn TokenFunc) *Port { return &Port{parse: fn} }

// StaticToken accepts exactly one shared token and names its holder subject
// an empty token locks the routes
func StaticToken(token, subject string) *Port {
	return NewPortFunc(func(got string) (string, error) {
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return "", perr.Unauthorizedf("invalid bearer token")
		}
		return subject, nil
	})
}

// Parse reads the bearer token and hands it to the parser
// every failure is Unauthorized
func (p *Port) Parse(r *http.Request) (string, error) {
	tok, err := Bearer(r)
	if err != nil {
		return "", err
	}
	if p == nil || p.parse == nil {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	sub, err := p.parse(tok)
	if err != nil || sub == "" {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	return sub, nil
}
