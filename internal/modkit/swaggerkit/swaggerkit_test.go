package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "cmsradar/internal/platform/net/http"
	kit "cmsradar/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

func TestDocument_Defaults(t *testing.T) {
	spec, err := Document("(staging)")
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi %v", spec["openapi"])
	}
	servers, _ := spec["servers"].([]any)
	if len(servers) != 1 {
		t.Fatalf("servers %v", spec["servers"])
	}
	info := spec["info"].(map[string]any)
	if info["title"] != "cmsradar API (staging)" {
		t.Fatalf("title %v", info["title"])
	}

	op := spec["paths"].(map[string]any)["/detect/url"].(map[string]any)["post"].(map[string]any)
	resp := op["responses"].(map[string]any)
	for _, code := range []string{"200", "400", "500"} {
		if _, ok := resp[code]; !ok {
			t.Fatalf("missing %s response on /detect/url", code)
		}
	}
	schemas := spec["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["ErrorResponse"]; !ok {
		t.Fatal("ErrorResponse schema missing")
	}
}

func TestDocument_MutatorsAndBrokenDoc(t *testing.T) {
	kit.Serial(t)

	saved := mutators
	t.Cleanup(func() { mutators = saved })
	Register(nil)
	Register(func(spec map[string]any) { spec["x-mutated"] = true })

	spec, err := Document("")
	if err != nil || spec["x-mutated"] != true {
		t.Fatalf("mutator not applied: %v %v", spec["x-mutated"], err)
	}

	kit.Swap(t, &docReader, func() []byte { return []byte("{") })
	if _, err := Document(""); err == nil {
		t.Fatal("expected parse error")
	}
	r := chi.NewRouter()
	Mount(phttp.AdaptChi(r), Options{Enabled: true})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("broken doc status %d", rec.Code)
	}
}

func TestMount(t *testing.T) {
	off := chi.NewRouter()
	Mount(phttp.AdaptChi(off), Options{})
	rec := httptest.NewRecorder()
	off.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("disabled docs status %d", rec.Code)
	}

	on := chi.NewRouter()
	Mount(phttp.AdaptChi(on), Options{Enabled: true})

	rec = httptest.NewRecorder()
	on.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs", nil))
	if rec.Code != http.StatusPermanentRedirect || rec.Header().Get("Location") != "/api/docs/" {
		t.Fatalf("redirect %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	on.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json status %d", rec.Code)
	}
	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("doc.json body: %v", err)
	}
	if _, ok := spec["paths"].(map[string]any)["/cms/import"]; !ok {
		t.Fatal("import path missing from served doc")
	}
}
