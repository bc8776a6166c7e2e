package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	perr "cmsradar/internal/platform/errors"
	pnet "cmsradar/internal/platform/net"
	"cmsradar/internal/platform/net/middleware"
	kit "cmsradar/internal/platform/testkit"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestRecoverJSON_WritesEnvelope(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("kaboom") })
	h := chimw.RequestID(middleware.RecoverJSON(boom))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(chimw.RequestIDHeader, "rid-9")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") != "rid-9" {
		t.Fatalf("request id header %q", rr.Header().Get("X-Request-ID"))
	}
	env := kit.MustJSON[pnet.Wire](t, rr.Body.Bytes())
	if env.Code != perr.ErrorCodePanic || env.Error != "internal error" || env.RequestID != "rid-9" {
		t.Fatalf("envelope %+v", env)
	}
}

func TestRecoverJSON_AbortHandlerPropagates(t *testing.T) {
	abort := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) })
	kit.MustPanic(t, func() {
		middleware.RecoverJSON(abort).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	})
}

func TestRecoverJSON_NoPanic(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rr := httptest.NewRecorder()
	middleware.RecoverJSON(ok).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusTeapot {
		t.Fatalf("status %d", rr.Code)
	}
}
