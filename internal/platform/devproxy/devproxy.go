// Package devproxy forwards the backend path prefixes to their upstream
// hosts so the dashboard can be served from one origin during development.
package devproxy

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Prefixes are the backend paths the dashboard calls.
var Prefixes = []string{
	"/admin",
	"/staff",
	"/recep-patient",
	"/records",
	"/doctor-fetch",
	"/fingerprint-api",
}

type Route struct {
	Prefix string
	Target *url.URL
}

// Routes parses the configured upstreams. Prefixes with an empty target are
// skipped; unknown prefixes and malformed URLs are errors.
func Routes(targets map[string]string) ([]Route, error) {
	known := make(map[string]bool, len(Prefixes))
	for _, p := range Prefixes {
		known[p] = true
	}

	routes := make([]Route, 0, len(targets))
	for prefix, raw := range targets {
		if raw == "" {
			continue
		}
		if !known[prefix] {
			return nil, fmt.Errorf("unknown proxy prefix %q", prefix)
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("proxy target for %s: %w", prefix, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("proxy target for %s must be an absolute http(s) URL, got %q", prefix, raw)
		}
		routes = append(routes, Route{Prefix: prefix, Target: u})
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Prefix < routes[j].Prefix })
	return routes, nil
}

// Mount installs one reverse proxy per route. The upstream sees its own host
// in the Host header and the request path unchanged.
func Mount(e *echo.Echo, routes []Route, logger zerolog.Logger) {
	for _, r := range routes {
		target := r.Target
		balancer := echomw.NewRoundRobinBalancer([]*echomw.ProxyTarget{{
			Name: strings.TrimPrefix(r.Prefix, "/"),
			URL:  target,
		}})
		e.Group(r.Prefix, rewriteHost(target.Host), echomw.ProxyWithConfig(echomw.ProxyConfig{
			Balancer: balancer,
		}))
		logger.Info().Str("prefix", r.Prefix).Str("target", target.String()).Msg("proxy mounted")
	}
}

func rewriteHost(host string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Request().Host = host
			return next(c)
		}
	}
}
