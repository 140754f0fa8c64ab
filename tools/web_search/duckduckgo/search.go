package duckduckgo

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search/models"
	"github.com/tmc/langchaingo/tools/duckduckgo"
)

const noResults = "No good DuckDuckGo Search Results was found"

// Search is a keyless provider backed by the langchaingo DuckDuckGo tool.
type Search struct {
	client *http.Client
}

func New(client *http.Client) (Search, error) {
	return Search{client: client}, nil
}

func (s Search) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	if k <= 0 {
		k = 5
	}
	var opts []duckduckgo.Option
	if s.client != nil {
		opts = append(opts, duckduckgo.WithHTTPClient(s.client))
	}
	tool, err := duckduckgo.New(k, duckduckgo.DefaultUserAgent, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to init duckduckgo")
	}
	out, err := tool.Call(ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "duckduckgo search failed", goerr.V("query", q))
	}
	return Parse(out), nil
}

// Parse turns the tool's text listing ("Title:", "Description:", "URL:" lines
// separated by blank lines) back into results.
func Parse(out string) []models.Result {
	out = strings.TrimSpace(out)
	if out == "" || out == noResults {
		return nil
	}
	var results []models.Result
	for _, block := range strings.Split(out, "\n\n") {
		var r models.Result
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "Title:"):
				r.Title = strings.TrimSpace(strings.TrimPrefix(line, "Title:"))
			case strings.HasPrefix(line, "Description:"):
				r.Snippet = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
			case strings.HasPrefix(line, "URL:"):
				r.URL = strings.TrimSpace(strings.TrimPrefix(line, "URL:"))
			}
		}
		if r.Title == "" && r.URL == "" {
			continue
		}
		results = append(results, r)
	}
	return results
}
