package httpkit

import (
	"net/http"
	"strings"

	"cmsradar/internal/platform/net/http/bind"
)

// QueryInt reads an integer query parameter bounded to lo..hi
func QueryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	return bind.QueryInt(r, key, def, lo, hi)
}

// QueryBool reads an optional boolean query parameter
func QueryBool(r *http.Request, key string) (*bool, error) { return bind.QueryBool(r, key) }

// QueryCSV reads a comma separated query parameter, repeated keys are merged
func QueryCSV(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.URL.Query()[key] {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Bind decodes and validates a JSON body into T
func Bind[T any](r *http.Request) (T, error) { return bind.ParseJSON[T](r) }

// Validate runs struct validation on v
func Validate(v any) error { return bind.Validate(v) }
