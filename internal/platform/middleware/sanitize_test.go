package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newSanitizeEcho() *echo.Echo {
	e := echo.New()
	e.Use(Sanitize(zerolog.Nop()))
	e.GET("/*", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func TestSanitize_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
	}{
		{"dot dot", "/api/v1/widgets/../../etc/passwd", ""},
		{"encoded dot dot", "/api/v1/widgets/%2e%2e/secret", ""},
		{"encoded null", "/api/v1/widgets/abc%00", ""},
		{"script in query", "/api/v1/widgets?year=%3Cscript%3Ealert(1)", ""},
		{"handler in query", "/api/v1/widgets?x=onload%3Dfoo", ""},
		{"null in query", "/api/v1/widgets?year=2024%00", ""},
		{"oversized header", "/api/v1/widgets", strings.Repeat("a", maxHeaderValueSize+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newSanitizeEcho()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-Note", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestSanitize_Passes(t *testing.T) {
	e := newSanitizeEcho()
	for _, target := range []string{
		"/api/v1/widgets",
		"/api/v1/widgets?year=2024&limit=10",
		"/api/v1/widgets/3f6c/chart?format=svg",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", target, rec.Code)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	tests := map[string]string{
		"  Dr. Rao  ":         "Dr. Rao",
		"Ward\x00 7":          "Ward 7",
		"line1\nline2":        "line1\nline2",
		"bell\x07 ringer\x1b": "bell ringer",
		"":                    "",
	}
	for in, want := range tests {
		if got := SanitizeString(in); got != want {
			t.Errorf("SanitizeString(%q) = %q, want %q", in, got, want)
		}
	}
}
