package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/dashboard/internal/config"
	"github.com/hms/dashboard/internal/domain/widget"
	"github.com/hms/dashboard/internal/platform/appinit"
	"github.com/hms/dashboard/internal/platform/chart"
	"github.com/hms/dashboard/internal/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-dashboard",
		Short: "Hospital dashboard widget server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(env, level string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	app, err := appinit.Init(server.AppConfig(cfg))
	if err != nil {
		return err
	}
	if !app.Config().Complete() {
		logger.Warn().Msg("auth provider config incomplete; /api/v1/app-config will answer 503")
	}

	srv, err := server.New(cfg, app, logger)
	if err != nil {
		return err
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("chart_backend", cfg.ChartBackend).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = srv.Echo.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.Echo.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Echo.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	if err := srv.Close(); err != nil {
		logger.Error().Err(err).Msg("releasing widgets failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func renderCmd() *cobra.Command {
	var (
		widgetID string
		seed     uint64
		format   string
		out      string
		year     int
		width    int
		height   int
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one widget's chart to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeFn, err := openOutput(out, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeFn()
			return renderWidget(w, renderOptions{
				Widget: widgetID,
				Seed:   seed,
				Format: format,
				Year:   year,
				Width:  width,
				Height: height,
			})
		},
	}
	cmd.Flags().StringVar(&widgetID, "widget", "revenue", "catalog id of the widget")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "sample data seed (0 = random)")
	cmd.Flags().StringVar(&format, "format", "svg", "svg, png or html")
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	cmd.Flags().IntVar(&year, "year", 0, "year to select after mounting (0 = current)")
	cmd.Flags().IntVar(&width, "width", 800, "chart width in pixels")
	cmd.Flags().IntVar(&height, "height", 400, "chart height in pixels")
	return cmd
}

type renderOptions struct {
	Widget string
	Seed   uint64
	Format string
	Year   int
	Width  int
	Height int
}

func libraryFor(format string) (chart.Library, error) {
	if format == "html" {
		return server.ChartLibrary("echarts", "")
	}
	return server.ChartLibrary("gochart", format)
}

func renderWidget(w io.Writer, opts renderOptions) error {
	lib, err := libraryFor(opts.Format)
	if err != nil {
		return err
	}
	svc := widget.NewService(chart.NewAdapter(lib, zerolog.Nop()), server.Generator(opts.Seed), widget.Options{
		Width:  opts.Width,
		Height: opts.Height,
	}, zerolog.Nop())
	defer svc.Close()

	snap, err := svc.Mount(opts.Widget)
	if err != nil {
		return err
	}
	if opts.Year != 0 && opts.Year != snap.Year {
		if _, err := svc.SelectYear(snap.ID, opts.Year); err != nil {
			return err
		}
	}
	_, err = svc.Render(snap.ID, w)
	return err
}

func exportCmd() *cobra.Command {
	var (
		seed    uint64
		out     string
		widgets []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export widgets with sample data to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeFn, err := openOutput(out, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeFn()
			return exportWorkbook(w, seed, widgets)
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "sample data seed (0 = random)")
	cmd.Flags().StringVar(&out, "out", "dashboard.xlsx", "output file, - for stdout")
	cmd.Flags().StringSliceVar(&widgets, "widgets", nil, "catalog ids to export (default: whole catalog)")
	return cmd
}

func exportWorkbook(w io.Writer, seed uint64, ids []string) error {
	svc := widget.NewService(chart.NewAdapter(chart.GoChart{}, zerolog.Nop()), server.Generator(seed), widget.Options{}, zerolog.Nop())
	defer svc.Close()

	if len(ids) == 0 {
		for _, def := range svc.Catalog() {
			ids = append(ids, def.ID)
		}
	}
	for _, id := range ids {
		if _, err := svc.Mount(id); err != nil {
			return err
		}
	}
	return svc.Export(w)
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
