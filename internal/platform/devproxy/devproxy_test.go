package devproxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRoutes_SkipsEmptyTargets(t *testing.T) {
	routes, err := Routes(map[string]string{
		"/staff":   "http://localhost:5000",
		"/admin":   "https://admin.internal",
		"/records": "",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	if routes[0].Prefix != "/admin" || routes[1].Prefix != "/staff" {
		t.Errorf("expected routes sorted by prefix, got %s, %s", routes[0].Prefix, routes[1].Prefix)
	}
	if routes[1].Target.Host != "localhost:5000" {
		t.Errorf("unexpected target %s", routes[1].Target)
	}
}

func TestRoutes_RejectsBadInput(t *testing.T) {
	if _, err := Routes(map[string]string{"/billing": "http://localhost:5000"}); err == nil {
		t.Error("expected error for unknown prefix")
	}
	if _, err := Routes(map[string]string{"/staff": "localhost:5000"}); err == nil {
		t.Error("expected error for target without scheme")
	}
	if _, err := Routes(map[string]string{"/staff": "ftp://files"}); err == nil {
		t.Error("expected error for non-http scheme")
	}
}

func TestMount_ForwardsToUpstream(t *testing.T) {
	var gotPath, gotHost string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotHost = r.URL.Path, r.Host
		io.WriteString(w, "from upstream")
	}))
	defer upstream.Close()

	u, _ := url.Parse(upstream.URL)
	e := echo.New()
	Mount(e, []Route{{Prefix: "/staff", Target: u}}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/staff/list?dept=icu", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "from upstream" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if gotPath != "/staff/list" {
		t.Errorf("expected path to be forwarded unchanged, got %q", gotPath)
	}
	if gotHost != u.Host {
		t.Errorf("expected Host %q, got %q", u.Host, gotHost)
	}
}

func TestMount_UnconfiguredPrefixNotMounted(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call for %s", r.URL.Path)
	}))
	defer upstream.Close()

	u, _ := url.Parse(upstream.URL)
	e := echo.New()
	Mount(e, []Route{{Prefix: "/staff", Target: u}}, zerolog.Nop())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/42", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
