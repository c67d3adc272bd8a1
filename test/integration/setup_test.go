package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hms/dashboard/internal/config"
	"github.com/hms/dashboard/internal/platform/appinit"
	"github.com/hms/dashboard/internal/server"
)

// testServer is the assembled dashboard behind a real listener, shared by
// every test in the package. A fake backend stands in for the proxied hosts.
type testServer struct {
	URL     string
	Backend *httptest.Server
	srv     *server.Server
	http    *httptest.Server
}

var globalServer *testServer

func TestMain(m *testing.M) {
	ts, cleanup, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start dashboard: %v\n", err)
		os.Exit(1)
	}
	globalServer = ts
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func startServer() (*testServer, func(), error) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"path": r.URL.Path,
			"host": r.Host,
		})
	}))

	cfg := &config.Config{
		Env:                   "test",
		CORSOrigins:           []string{"http://localhost:3000"},
		RateLimitRPS:          1000,
		RateLimitBurst:        1000,
		BodyLimit:             "1M",
		FrameLimit:            "2M",
		ChartBackend:          "gochart",
		ChartFormat:           "svg",
		ChartWidth:            640,
		ChartHeight:           320,
		YearOptions:           4,
		SampleSeed:            42,
		ProxyStaffURL:         backend.URL,
		ProxyRecordsURL:       backend.URL,
		FirebaseAPIKey:        "test-key",
		FirebaseAuthDomain:    "hms-test.firebaseapp.com",
		FirebaseProjectID:     "hms-test",
		FirebaseStorageBucket: "hms-test.appspot.com",
		FirebaseAppID:         "1:1:web:1",
	}
	if err := cfg.Validate(); err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	var boot appinit.Initializer
	app, err := boot.Init(server.AppConfig(cfg))
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	srv, err := server.New(cfg, app, zerolog.Nop())
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	hs := httptest.NewServer(srv.Echo)

	ts := &testServer{URL: hs.URL, Backend: backend, srv: srv, http: hs}
	return ts, func() {
		hs.Close()
		srv.Close()
		backend.Close()
	}, nil
}

// do sends a request and decodes a JSON response into out when out is not
// nil. It returns the response with its body already read.
func do(t *testing.T, method, path string, body []byte, out any) (*http.Response, []byte) {
	t.Helper()
	return send(t, method, path, "application/json", body, out)
}

func send(t *testing.T, method, path, contentType string, body []byte, out any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, globalServer.URL+path, r)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s %s (%d): %v: %s", method, path, resp.StatusCode, err, raw)
		}
	}
	return resp, raw
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected %d, got %d", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode)
	}
}
