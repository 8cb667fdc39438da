package module

import (
	"strings"
	"sync"
	"testing"

	phttp "immiwatch/internal/platform/net/http"
)

type IngestPort interface{ Ingest() int }

type ingester struct{ n int }

func (i ingester) Ingest() int { return i.n }

type stub struct {
	name  string
	ports any
}

func (s stub) MountRoutes(phttp.Router) {}
func (s stub) Ports() any               { return s.ports }
func (s stub) Name() string             { return s.name }

func TestPortsOf(t *testing.T) {
	type bundle struct {
		Service any
		Ingest  IngestPort
	}
	type hidden struct {
		ingest IngestPort
	}
	cases := []struct {
		name  string
		ports any
		want  int
		ok    bool
	}{
		{"nil", nil, 0, false},
		{"direct", IngestPort(ingester{n: 1}), 1, true},
		{"exported field", bundle{Ingest: ingester{n: 2}}, 2, true},
		{"unexported field", hidden{ingest: ingester{n: 3}}, 0, false},
		{"non struct", 42, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PortsOf[IngestPort](stub{name: tc.name, ports: tc.ports})
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got.Ingest() != tc.want {
				t.Fatalf("Ingest = %d, want %d", got.Ingest(), tc.want)
			}
		})
	}
}

func TestMustPortsOf_PanicNamesModule(t *testing.T) {
	defer func() {
		msg, _ := recover().(string)
		if !strings.Contains(msg, "drawcheck") {
			t.Fatalf("panic = %q", msg)
		}
	}()
	_ = MustPortsOf[IngestPort](stub{name: "drawcheck"})
}

func TestRegistry(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	Register("monthly", ingester{n: 1})
	Register("monthly", ingester{n: 2})
	got, ok := PortsAs[IngestPort]("monthly")
	if !ok || got.Ingest() != 2 {
		t.Fatalf("PortsAs = %v, %v", got, ok)
	}
	if _, ok := PortsAs[string]("monthly"); ok {
		t.Fatal("type mismatch should miss")
	}
	if _, ok := PortsAs[IngestPort]("meta"); ok {
		t.Fatal("unknown name should miss")
	}

	Reset()
	if _, ok := PortsAs[IngestPort]("monthly"); ok {
		t.Fatal("Reset should clear entries")
	}
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	t.Cleanup(Reset)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() { defer wg.Done(); Register("drawcheck", ingester{n: i}) }()
		go func() { defer wg.Done(); _, _ = PortsAs[IngestPort]("drawcheck") }()
	}
	wg.Wait()
	if _, ok := PortsAs[IngestPort]("drawcheck"); !ok {
		t.Fatal("expected an entry after concurrent registers")
	}
}
