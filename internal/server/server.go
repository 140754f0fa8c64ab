package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mohammad-safakhou/deepresearch/internal/pipeline"
	"github.com/mohammad-safakhou/deepresearch/internal/runtime"
	"github.com/mohammad-safakhou/deepresearch/internal/store"
	"github.com/mohammad-safakhou/deepresearch/models"
)

// Planner turns a research query into a plan.
type Planner interface {
	MakePlan(query, sector string) models.Plan
}

// Exporter renders a Markdown report as PDF.
type Exporter interface {
	Export(ctx context.Context, title, md string) ([]byte, error)
}

type Deps struct {
	Planner Planner
	Store   *store.Store
	Runner  *pipeline.Runner
	PDF     Exporter // nil disables PDF export
	Metrics *runtime.Metrics
	Logger  *slog.Logger
}

type Options struct {
	CORSOrigins    []string
	Dashboard      bool
	MetricsEnabled bool
}

type Server struct {
	Deps
	opts Options
	echo *echo.Echo
}

// router is satisfied by both *echo.Echo and *echo.Group.
type router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

func New(deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.Logger = deps.Logger.With("component", "http")
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{Deps: deps, opts: opts, echo: echo.New()}
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.Logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if opts.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}
	if opts.Dashboard {
		e.GET("/", s.dashboard)
	}
	s.register(e)
	s.register(e.Group("/api"))
	return s
}

func (s *Server) register(r router) {
	r.POST("/plan", s.createPlan)
	r.GET("/plan/:id", s.getPlan)
	r.POST("/approve", s.approve)
	r.POST("/run", s.run)
	r.GET("/logs/:id", s.logs)
	r.GET("/report/:id", s.report)
	r.GET("/report/:id/html", s.reportHTML)
	r.GET("/report/:id/pdf", s.reportPDF)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// handleError writes every failure as {"error": msg}.
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	req := c.Request()
	level := slog.LevelWarn
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.Logger.Log(req.Context(), level, "request failed", "status", code, "method", req.Method, "path", req.URL.Path, "remote", c.RealIP(), "error", err)
	if !c.Response().Committed {
		_ = c.JSON(code, map[string]any{"error": msg})
	}
}
