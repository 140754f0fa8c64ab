package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/mohammad-safakhou/deepresearch/config"
	"github.com/mohammad-safakhou/deepresearch/internal/agent"
	"github.com/mohammad-safakhou/deepresearch/internal/cache"
	"github.com/mohammad-safakhou/deepresearch/internal/pipeline"
	"github.com/mohammad-safakhou/deepresearch/internal/planner"
	"github.com/mohammad-safakhou/deepresearch/internal/report"
	"github.com/mohammad-safakhou/deepresearch/internal/runtime"
	"github.com/mohammad-safakhou/deepresearch/internal/server"
	"github.com/mohammad-safakhou/deepresearch/internal/store"
	"github.com/mohammad-safakhou/deepresearch/tools/quote"
	"github.com/mohammad-safakhou/deepresearch/tools/web_fetch"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search"
)

// app holds the process-wide dependencies shared by every command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *runtime.Metrics
	planner *planner.Planner
	store   *store.Store
	runner  *pipeline.Runner
	pdf     *report.PDFExporter // nil when export is disabled

	closers []func() error
}

func newApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := runtime.NewLogger(cfg.General, os.Stderr)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []func() error{closeLog}}

	if cfg.Telemetry.MetricsEnabled {
		a.metrics = runtime.NewMetrics()
	}

	c, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("cache: %w", err)
	}
	if c != nil {
		a.closers = append(a.closers, c.Close)
	}

	quotes, err := quote.NewProvider(quote.YahooProvider, quote.Options{
		BaseURL:   cfg.Quote.BaseURL,
		UserAgent: cfg.Quote.UserAgent,
		Timeout:   cfg.Quote.Timeout,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	quotes = quote.WithCache(quotes, c, cfg.Cache.TTL, logger.With("component", "quote-cache"))

	searcher, err := newSearcher(cfg.Search)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("search: %w", err)
	}
	if web_search.IsMock(searcher) {
		logger.Warn("no search credential configured, using mock sources", "provider", cfg.Search.Provider)
	}

	news := agent.NewsAgent{
		Searcher:    searcher,
		MaxResults:  cfg.Search.MaxResults,
		MaxExcerpts: cfg.News.MaxExcerpts,
		MaxChars:    cfg.News.MaxChars,
		Logger:      logger.With("component", "news"),
	}
	if cfg.News.FetchExcerpts {
		fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.News.Fetcher), cfg.News.Timeout, cfg.News.MaxChars)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("fetcher: %w", err)
		}
		news.Fetcher = fetcher
	}

	a.planner, err = planner.New()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store = store.New()

	mode, err := pipeline.ParseMode(cfg.Pipeline.Mode)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.runner = pipeline.NewRunner(pipeline.Deps{
		Store:       a.store,
		News:        news,
		Technical:   agent.TechnicalAgent{Quotes: quotes},
		Fundamental: agent.FundamentalAgent{Quotes: quotes},
		KPI:         agent.KPIAgent{Quotes: quotes},
		Tickers:     a.planner,
		Metrics:     a.metrics,
		Logger:      logger,
	}, pipeline.Options{
		DefaultMode: mode,
		MaxRetries:  cfg.Pipeline.MaxRetries,
		RunTimeout:  cfg.Pipeline.RunTimeout,
	})

	if cfg.Export.PDFEnabled {
		a.pdf = report.NewPDFExporter(cfg.Export.Timeout)
	}
	return a, nil
}

func newSearcher(cfg config.SearchConfig) (web_search.WebSearcher, error) {
	var creds config.APIKeyConfig
	switch web_search.Provider(cfg.Provider) {
	case web_search.TavilyProvider:
		creds = cfg.Tavily
	case web_search.BraveProvider:
		creds = cfg.Brave
	case web_search.SerperProvider:
		creds = cfg.Serper
	}
	var client *http.Client
	if cfg.Timeout > 0 {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return web_search.NewWebSearcher(web_search.Provider(cfg.Provider), creds.APIKey, web_search.Options{
		Endpoint:   creds.Endpoint,
		HTTPClient: client,
	})
}

func (a *app) server() *server.Server {
	deps := server.Deps{
		Planner: a.planner,
		Store:   a.store,
		Runner:  a.runner,
		Metrics: a.metrics,
		Logger:  a.logger,
	}
	if a.pdf != nil {
		deps.PDF = a.pdf
	}
	return server.New(deps, server.Options{
		CORSOrigins:    a.cfg.Server.CORSOrigins,
		Dashboard:      a.cfg.Server.Dashboard,
		MetricsEnabled: a.cfg.Telemetry.MetricsEnabled,
	})
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
