package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func svgHandler(c echo.Context) error {
	return c.Blob(http.StatusOK, "image/svg+xml", []byte("<svg></svg>"))
}

func TestETag_SetsHeader(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/chart", nil), rec)

	if err := ETag()(svgHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("expected ETag header")
	}
	if rec.Body.String() != "<svg></svg>" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestETag_NotModified(t *testing.T) {
	e := echo.New()
	first := httptest.NewRecorder()
	if err := ETag()(svgHandler)(e.NewContext(httptest.NewRequest(http.MethodGet, "/chart", nil), first)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	etag := first.Header().Get("ETag")

	req := httptest.NewRequest(http.MethodGet, "/chart", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	if err := ETag()(svgHandler)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotModified {
		t.Errorf("expected 304, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestETag_SkipsWrites(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPut, "/chart", nil), rec)

	if err := ETag()(svgHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get("ETag") != "" {
		t.Error("expected no ETag on PUT")
	}
}

func TestEtagMatch(t *testing.T) {
	if !etagMatch(`"abc"`, `W/"abc"`) {
		t.Error("expected weak comparison to match")
	}
	if !etagMatch(`W/"x", W/"abc"`, `W/"abc"`) {
		t.Error("expected list match")
	}
	if !etagMatch("*", `W/"abc"`) {
		t.Error("expected wildcard match")
	}
	if etagMatch(`W/"x"`, `W/"abc"`) {
		t.Error("expected mismatch")
	}
}
