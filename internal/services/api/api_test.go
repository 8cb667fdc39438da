package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"immiwatch/internal/modkit/module"
	"immiwatch/internal/platform/config"
	"immiwatch/internal/platform/metrics"
	phttp "immiwatch/internal/platform/net/http"
)

func TestMount_ServesModules(t *testing.T) {
	root := t.TempDir()
	t.Setenv("CORE_MONTHLY_STORE", "file")
	t.Setenv("CORE_MONTHLY_DATA_DIR", root+"/data")
	t.Setenv("CORE_MONTHLY_OUTPUT_DIR", root+"/out")
	t.Setenv("CORE_MONTHLY_LOCATION", "UTC")
	t.Setenv("CORE_NOTIFY_SLACK_WEBHOOK_URL", "")
	t.Setenv("CORE_WEBHOOK_SECRET", "")
	t.Cleanup(module.Reset)

	mux := chi.NewRouter()
	mounted := Mount(phttp.AdaptChi(mux), Options{Config: config.New(), Metrics: metrics.New()})
	t.Cleanup(mounted.Wait)

	cases := []struct {
		method, path string
		want         int
		contains     string
	}{
		{http.MethodGet, "/api/v1/meta/health", http.StatusOK, `"immiwatch-api"`},
		{http.MethodGet, "/api/v1/meta/programs", http.StatusOK, `"healthcare"`},
		{http.MethodGet, "/api/v1/monthly/status", http.StatusOK, `"buckets"`},
		{http.MethodGet, "/api/v1/drawcheck/state", http.StatusNotFound, `"status_code":404`},
		{http.MethodGet, "/", http.StatusOK, `"api":"/api/v1"`},
		{http.MethodGet, "/metrics", http.StatusOK, "immiwatch_render_failures_total"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
		if rr.Code != tc.want || !strings.Contains(rr.Body.String(), tc.contains) {
			t.Fatalf("%s %s = %d %s", tc.method, tc.path, rr.Code, rr.Body.String())
		}
	}

	if _, ok := module.PortsAs[any]("monthly"); !ok {
		t.Fatal("monthly ports not registered")
	}
}
