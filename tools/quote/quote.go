package quote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/deepresearch/internal/cache"
	"github.com/mohammad-safakhou/deepresearch/tools/quote/models"
	"github.com/mohammad-safakhou/deepresearch/tools/quote/yahoo"
)

type Provider interface {
	Quote(ctx context.Context, symbol string) (models.Quote, error)
	History(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
}

type ProviderType string

const (
	YahooProvider ProviderType = "yahoo"
)

type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

var ErrUnsupportedProvider = &Error{"unsupported quote provider"}

type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

func NewProvider(p ProviderType, opts Options) (Provider, error) {
	switch p {
	case YahooProvider, "":
		var client *http.Client
		if opts.Timeout > 0 {
			client = &http.Client{Timeout: opts.Timeout}
		}
		return yahoo.New(opts.BaseURL, opts.UserAgent, client), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// Cached serves quotes and histories from c for ttl before asking next again.
// Cache failures are logged and bypassed.
type Cached struct {
	next   Provider
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// WithCache decorates p. A nil cache returns p unchanged.
func WithCache(p Provider, c cache.Cache, ttl time.Duration, logger *slog.Logger) Provider {
	if c == nil {
		return p
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{next: p, cache: c, ttl: ttl, logger: logger}
}

func (c *Cached) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	key := "quote:" + strings.ToUpper(symbol)
	var q models.Quote
	if c.load(ctx, key, &q) {
		return q, nil
	}
	q, err := c.next.Quote(ctx, symbol)
	if err != nil {
		return q, err
	}
	c.store(ctx, key, q)
	return q, nil
}

func (c *Cached) History(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	key := "history:" + strings.ToUpper(symbol) + ":" + from.Format("2006-01-02") + ":" + to.Format("2006-01-02")
	var bars []models.Bar
	if c.load(ctx, key, &bars) {
		return bars, nil
	}
	bars, err := c.next.History(ctx, symbol, from, to)
	if err != nil {
		return bars, err
	}
	c.store(ctx, key, bars)
	return bars, nil
}

func (c *Cached) load(ctx context.Context, key string, out any) bool {
	b, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("quote cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		c.logger.Warn("quote cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cached) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
		c.logger.Warn("quote cache write failed", "key", key, "error", err)
	}
}
