package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "immiwatch/internal/platform/net/http"
	"immiwatch/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

func TestPrepare(t *testing.T) {
	spec, err := Prepare(`{"openapi":"3.1.0","paths":{"/monthly/status":{"get":{"responses":{"200":{"description":"ok"}}}}}}`)
	if err != nil {
		t.Fatal(err)
	}
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
	servers, _ := spec["servers"].([]any)
	if len(servers) != 1 || servers[0].(map[string]any)["url"] != "/api/v1" {
		t.Fatalf("servers = %v", spec["servers"])
	}
	op := spec["paths"].(map[string]any)["/monthly/status"].(map[string]any)["get"].(map[string]any)
	if _, ok := op["responses"].(map[string]any)["500"]; !ok {
		t.Fatal("500 response not injected")
	}
	if _, ok := spec["components"].(map[string]any)["schemas"].(map[string]any)[envelopeRef]; !ok {
		t.Fatal("Envelope schema missing")
	}

	if _, err := Prepare(`{`); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestPrepare_LiftsSwagger2(t *testing.T) {
	spec, err := Prepare(`{"swagger":"2.0","paths":{}}`)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := spec["swagger"]; ok || spec["openapi"] != "3.0.3" {
		t.Fatalf("spec = %v", spec)
	}
}

func TestMount(t *testing.T) {
	off := phttp.AdaptChi(chi.NewRouter())
	Mount(off, false)
	rr := httptest.NewRecorder()
	off.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, SpecPath, nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("disabled = %d", rr.Code)
	}

	on := phttp.AdaptChi(chi.NewRouter())
	Mount(on, true)

	rr = httptest.NewRecorder()
	on.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, SpecPath, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("spec = %d %s", rr.Code, rr.Body.String())
	}
	var spec map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &spec); err != nil {
		t.Fatal(err)
	}
	if _, ok := spec["paths"].(map[string]any)["/monthly/webhook"]; !ok {
		t.Fatalf("generated paths missing: %v", spec["paths"])
	}

	rr = httptest.NewRecorder()
	on.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, DocsPath, nil))
	if rr.Code != http.StatusPermanentRedirect {
		t.Fatalf("redirect = %d", rr.Code)
	}
}

func TestServeSpec_BadDocument(t *testing.T) {
	testkit.Swap(t, &readDoc, func() string { return "not json" })
	rr := httptest.NewRecorder()
	serveSpec(rr, httptest.NewRequest(http.MethodGet, SpecPath, nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}
