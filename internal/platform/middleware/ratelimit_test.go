package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRateLimit_RequestsWithinLimit(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		if err := handler(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit 10, got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsLimit(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 2; i++ {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if err := handler(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Error("expected X-RateLimit-Remaining 0")
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})(func(c echo.Context) error {
		return nil
	})

	send := func(ip string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	if err := send("10.0.0.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := send("10.0.0.1"); err == nil {
		t.Error("expected second request from the same client to be limited")
	}
	if err := send("10.0.0.2"); err != nil {
		t.Errorf("expected another client to have its own bucket, got %v", err)
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	start := time.Now()
	b := &tokenBucket{tokens: 1, maxTokens: 1, refillRate: 2, lastSeen: start}

	if ok, _ := b.take(start); !ok {
		t.Fatal("expected first take to succeed")
	}
	ok, retry := b.take(start)
	if ok {
		t.Fatal("expected empty bucket")
	}
	if retry != 1 {
		t.Errorf("expected retry after 1s, got %d", retry)
	}
	if ok, _ := b.take(start.Add(600 * time.Millisecond)); !ok {
		t.Error("expected bucket to refill after 600ms at 2/s")
	}
}

func TestBucketStore_SweepsIdleClients(t *testing.T) {
	start := time.Now()
	s := &bucketStore{
		cfg:       RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1, IdleTTL: time.Minute},
		buckets:   make(map[string]*tokenBucket),
		lastSweep: start,
	}
	s.take("a", start)
	s.take("b", start.Add(2*time.Minute))

	if _, ok := s.buckets["a"]; ok {
		t.Error("expected idle bucket to be swept")
	}
	if _, ok := s.buckets["b"]; !ok {
		t.Error("expected active bucket to remain")
	}
}
