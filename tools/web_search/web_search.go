package web_search

import (
	"context"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/deepresearch/tools/web_search/brave"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search/duckduckgo"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search/mock"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search/models"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search/serper"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search/tavily"
)

type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	TavilyProvider     Provider = "tavily"
	SerperProvider     Provider = "serper"
	BraveProvider      Provider = "brave"
	DuckDuckGoProvider Provider = "duckduckgo"
	MockProvider       Provider = "mock"
)

type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

var ErrUnsupportedProvider = &Error{"unsupported provider"}

// Options tunes provider construction. Zero values keep provider defaults.
type Options struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewWebSearcher builds the searcher for provider. Keyed providers without an
// API key fall back to the deterministic mock.
func NewWebSearcher(provider Provider, apiKey string, opts Options) (WebSearcher, error) {
	provider = Provider(strings.ToLower(strings.TrimSpace(string(provider))))
	keyed := provider == TavilyProvider || provider == SerperProvider || provider == BraveProvider
	if keyed && strings.TrimSpace(apiKey) == "" {
		return mock.Search{}, nil
	}

	switch provider {
	case TavilyProvider:
		return tavily.New(apiKey, opts.Endpoint, opts.HTTPClient), nil
	case SerperProvider:
		return serper.New(apiKey, opts.Endpoint, opts.HTTPClient), nil
	case BraveProvider:
		return brave.New(apiKey, opts.Endpoint, opts.HTTPClient), nil
	case DuckDuckGoProvider:
		return duckduckgo.New(opts.HTTPClient)
	case MockProvider:
		return mock.Search{}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// IsMock reports whether s is the deterministic fallback searcher.
func IsMock(s WebSearcher) bool {
	_, ok := s.(mock.Search)
	return ok
}
