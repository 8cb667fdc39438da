package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"immiwatch/internal/modkit/httpkit"
	phttp "immiwatch/internal/platform/net/http"
	kit "immiwatch/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

func header(name, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add(name, value)
			next.ServeHTTP(w, r)
		})
	}
}

func TestBuild_LaterOptionsWin(t *testing.T) {
	b := Build(WithName("monthly"), WithPrefix("/monthly"), WithName("reports"), WithPrefix("reports/"))
	if b.Name() != "reports" {
		t.Fatalf("Name = %q", b.Name())
	}
	if b.Prefix() != "/reports" {
		t.Fatalf("Prefix = %q", b.Prefix())
	}
}

func TestBuild_MissingNamePanics(t *testing.T) {
	b := Build(WithPrefix("/x"))
	kit.MustPanic(t, func() { _ = b.Name() })
	kit.MustPanic(t, func() { _ = Build().Prefix() })
}

func TestWithPorts_Injected(t *testing.T) {
	type ingestPorts struct{ N int }
	b := Build(WithPorts(ingestPorts{N: 3}))
	got, ok := b.Injected().(ingestPorts)
	if !ok || got.N != 3 {
		t.Fatalf("Injected = %#v", b.Injected())
	}
	if Build().Injected() != nil {
		t.Fatal("no WithPorts should inject nothing")
	}
}

func TestBuilt_MountScopesMiddlewareInOrder(t *testing.T) {
	b := Build(
		WithName("monthly"),
		WithPrefix("/monthly"),
		WithMiddlewares(header("X-Order", "a")),
		WithMiddlewares(header("X-Order", "b")),
	)
	r := phttp.AdaptChi(chi.NewRouter())
	b.Mount(r, func(sub httpkit.Router) {
		httpkit.Get(sub, "/status", func(*http.Request) (any, error) { return "ok", nil })
	})
	httpkit.Get(r, "/other", func(*http.Request) (any, error) { return "ok", nil })

	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/monthly/status", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Values("X-Order"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("X-Order = %q", got)
	}

	rr = httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/other", nil))
	if len(rr.Header().Values("X-Order")) != 0 {
		t.Fatal("module middleware leaked outside its prefix")
	}
}
