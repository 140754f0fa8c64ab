package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/deepresearch/internal/helpers"
	"github.com/mohammad-safakhou/deepresearch/models"
	"github.com/mohammad-safakhou/deepresearch/tools/web_fetch"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search"
	wsmodels "github.com/mohammad-safakhou/deepresearch/tools/web_search/models"
)

const defaultMaxResults = 5

// NoResultsSource stands in for the source list when the search provider fails.
var NoResultsSource = models.Source{Title: "No results", URL: ""}

// NewsQuery is the query the research graph issues for a sector.
func NewsQuery(sector string) string {
	return fmt.Sprintf("%s sector India outlook 2025 2026 news trends", sector)
}

// OutlookQuery is the query of the quick research note.
func OutlookQuery(sector string) string {
	return fmt.Sprintf("%s sector India outlook 2025 2026", sector)
}

// Summary is the canned executive summary for a sector.
func Summary(sector string) string {
	return fmt.Sprintf("Recent news indicates strong momentum in the %s sector, driven by digital transformation and global demand. Key themes include AI adoption and supply chain resilience.", sector)
}

// NewsAgent searches the web for sector coverage.
type NewsAgent struct {
	Searcher    web_search.WebSearcher
	Fetcher     web_fetch.WebFetcher // nil disables excerpts
	MaxResults  int
	MaxExcerpts int
	MaxChars    int
	Logger      *slog.Logger
}

// Search runs query and never returns an empty-handed failure: a provider
// error yields the single NoResultsSource together with the wrapped error.
func (a NewsAgent) Search(ctx context.Context, query, focus string) ([]models.Source, error) {
	k := a.MaxResults
	if k <= 0 {
		k = defaultMaxResults
	}
	results, err := a.Searcher.Discover(ctx, query, k)
	if err != nil {
		return []models.Source{NoResultsSource}, goerr.Wrap(err, "search failed", goerr.V("query", query))
	}
	// the placeholder sources keep their fixed order
	if web_search.IsMock(a.Searcher) {
		return toSources(results), nil
	}
	ranked, rerr := RankByFocus(results, focus)
	if rerr != nil {
		a.logger().Warn("focus ranking skipped", "error", rerr)
	}
	return toSources(ranked), nil
}

// Analyze gathers sources (and optional excerpts) for sector.
func (a NewsAgent) Analyze(ctx context.Context, sector, focus string) (models.NewsResult, error) {
	sources, err := a.Search(ctx, NewsQuery(sector), focus)
	res := models.NewsResult{Summary: Summary(sector), Sources: sources}
	if err != nil {
		return res, err
	}
	res.Excerpts = a.excerpts(ctx, sources)
	return res, nil
}

func (a NewsAgent) excerpts(ctx context.Context, sources []models.Source) []models.Excerpt {
	if a.Fetcher == nil || a.MaxExcerpts <= 0 {
		return nil
	}
	var out []models.Excerpt
	for _, s := range sources {
		if len(out) >= a.MaxExcerpts {
			break
		}
		if !strings.HasPrefix(s.URL, "http") {
			continue
		}
		page, err := a.Fetcher.Exec(ctx, s.URL)
		if err != nil {
			a.logger().Debug("excerpt fetch failed", "url", s.URL, "error", err)
			continue
		}
		text := page.Excerpt
		if text == "" {
			text = page.Text
		}
		text = helpers.Truncate(strings.Join(strings.Fields(text), " "), a.MaxChars)
		if text == "" {
			continue
		}
		out = append(out, models.Excerpt{Title: s.Title, URL: s.URL, Text: text})
	}
	return out
}

func (a NewsAgent) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// toSources keeps the first result per canonical URL.
func toSources(results []wsmodels.Result) []models.Source {
	out := make([]models.Source, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		if key, ok := helpers.CanonicalURL(r.URL); ok {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, models.Source{Title: helpers.PlainText(r.Title), URL: r.URL})
	}
	return out
}
