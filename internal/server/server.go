// Package server assembles the dashboard HTTP service.
package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/hms/dashboard/internal/config"
	"github.com/hms/dashboard/internal/domain/capture"
	"github.com/hms/dashboard/internal/domain/sample"
	"github.com/hms/dashboard/internal/domain/staff"
	"github.com/hms/dashboard/internal/domain/widget"
	"github.com/hms/dashboard/internal/platform/appinit"
	"github.com/hms/dashboard/internal/platform/chart"
	"github.com/hms/dashboard/internal/platform/devproxy"
	"github.com/hms/dashboard/internal/platform/middleware"
)

const Version = "0.1.0"

type Server struct {
	Echo     *echo.Echo
	Widgets  *widget.Service
	Captures *capture.Service
}

// ChartLibrary returns the backend selected by CHART_BACKEND and
// CHART_FORMAT.
func ChartLibrary(backend, format string) (chart.Library, error) {
	switch backend {
	case "", "gochart":
		f := chart.SVG
		if format != "" {
			var err error
			if f, err = chart.ParseFormat(format); err != nil {
				return nil, err
			}
		}
		return chart.GoChart{Format: f}, nil
	case "echarts":
		return chart.ECharts{}, nil
	}
	return nil, fmt.Errorf("unknown chart backend %q", backend)
}

// Generator returns a seeded generator for seed > 0 and a random one
// otherwise.
func Generator(seed uint64) *sample.Generator {
	if seed > 0 {
		return sample.NewSeeded(seed)
	}
	return sample.NewRandom()
}

// AppConfig extracts the auth provider client configuration.
func AppConfig(cfg *config.Config) appinit.Config {
	return appinit.Config{
		APIKey:            cfg.FirebaseAPIKey,
		AuthDomain:        cfg.FirebaseAuthDomain,
		ProjectID:         cfg.FirebaseProjectID,
		StorageBucket:     cfg.FirebaseStorageBucket,
		MessagingSenderID: cfg.FirebaseMessagingSenderID,
		AppID:             cfg.FirebaseAppID,
	}
}

// New wires the services, middleware and routes. app may be nil, in which
// case /api/v1/app-config answers 503.
func New(cfg *config.Config, app *appinit.App, logger zerolog.Logger) (*Server, error) {
	lib, err := ChartLibrary(cfg.ChartBackend, cfg.ChartFormat)
	if err != nil {
		return nil, err
	}
	routes, err := devproxy.Routes(cfg.ProxyTargets())
	if err != nil {
		return nil, err
	}

	adapter := chart.NewAdapter(lib, logger)
	widgets := widget.NewService(adapter, Generator(cfg.SampleSeed), widget.Options{
		Width:     cfg.ChartWidth,
		Height:    cfg.ChartHeight,
		YearCount: cfg.YearOptions,
	}, logger)
	captures := capture.NewService(logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Sanitize(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader, "If-None-Match"},
		ExposeHeaders: []string{middleware.RequestIDHeader, echo.HeaderContentDisposition, "ETag"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": Version,
		})
	})

	devproxy.Mount(e, routes, logger)

	rateLimitCfg := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rateLimitCfg.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rateLimitCfg.BurstSize = cfg.RateLimitBurst
	}

	api := e.Group("/api/v1")
	api.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(middleware.BodyLimit(cfg.BodyLimit, cfg.FrameLimit))
	api.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	widget.NewHandler(widgets).RegisterRoutes(api)
	staff.NewHandler().RegisterRoutes(api)
	capture.NewHandler(captures, middleware.ParseLimit(cfg.FrameLimit)).RegisterRoutes(api)
	appinit.NewHandler(app).RegisterRoutes(api)

	return &Server{Echo: e, Widgets: widgets, Captures: captures}, nil
}

// Close releases every mounted widget's chart and ends all capture sessions.
func (s *Server) Close() error {
	s.Captures.CloseAll()
	return s.Widgets.Close()
}
