package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cmsradar/internal/core/fingerprint"
	"cmsradar/internal/modkit/httpkit"
	phttp "cmsradar/internal/platform/net/http"
	kit "cmsradar/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

var started = time.Date(2026, 10, 1, 13, 0, 0, 0, time.UTC)

func get[T any](t *testing.T, d Deps, path string) T {
	t.Helper()
	mux := chi.NewRouter()
	phttp.AdaptChi(mux).Route("/meta", func(r httpkit.Router) {
		h := &handlers{deps: d, now: func() time.Time { return started.Add(5 * time.Minute) }}
		httpkit.Get(r, "/health", h.health)
		httpkit.Get(r, "/ready", h.ready)
		httpkit.Get(r, "/version", h.version)
		httpkit.Get(r, "/service", h.service)
		httpkit.Get(r, "/detector", h.detector)
	})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("%s: status %d", path, rec.Code)
	}
	env := kit.MustJSON[struct {
		Data json.RawMessage `json:"data"`
	}](t, rec.Body.Bytes())
	return kit.MustJSON[T](t, env.Data)
}

func TestHealthAndService(t *testing.T) {
	d := Deps{ServiceName: "cmsradar-api", StartedAt: started, Modules: func() []string { return []string{"meta", "cms", "detect"} }}

	h := get[HealthResponse](t, d, "/meta/health")
	if !h.OK || h.Service != "cmsradar-api" || h.Now != "2026-10-01T13:05:00Z" {
		t.Fatalf("health %+v", h)
	}

	s := get[ServiceResponse](t, d, "/meta/service")
	if s.Uptime != 300 || s.Started != "2026-10-01T13:00:00Z" {
		t.Fatalf("service %+v", s)
	}
	kit.MustEqual(t, s.Modules, []string{"cms", "detect", "meta"})
}

func TestReady(t *testing.T) {
	cases := []struct {
		name   string
		pg     any
		status string
		check  string
	}{
		{"no store", nil, "degraded", "skipped"},
		{"ok", pinger{}, "ok", "ok"},
		{"down", pinger{err: errors.New("connection refused")}, "fail", "fail"},
		{"not a pinger", struct{}{}, "degraded", "unknown"},
	}
	for _, tc := range cases {
		r := get[ReadyResponse](t, Deps{PG: tc.pg}, "/meta/ready")
		if r.Status != tc.status || len(r.Checks) != 1 || r.Checks[0].Status != tc.check {
			t.Fatalf("%s: %+v", tc.name, r)
		}
	}
}

func TestDetector(t *testing.T) {
	tbl := fingerprint.MustLoad()
	r := get[DetectorResponse](t, Deps{Table: tbl}, "/meta/detector")
	if r.Signatures != len(tbl.Signatures) || r.Indicators != tbl.IndicatorCount() || r.Threshold != fingerprint.Threshold {
		t.Fatalf("detector %+v", r)
	}
	kit.MustEqual(t, r.Platforms, tbl.Platforms())
	if r.Build.Service == "" {
		t.Fatal("build info missing")
	}

	empty := get[DetectorResponse](t, Deps{}, "/meta/detector")
	if empty.Signatures != 0 || empty.Platforms == nil {
		t.Fatalf("no table %+v", empty)
	}
}

func TestVersion(t *testing.T) {
	v := get[map[string]string](t, Deps{}, "/meta/version")
	if v["service"] == "" || v["version"] == "" {
		t.Fatalf("version %v", v)
	}
}
