package brave

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/deepresearch/internal/helpers"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search/models"
)

const DefaultEndpoint = "https://api.search.brave.com/res/v1/web/search"

type Search struct {
	ApiKey   string
	Endpoint string
	client   *helpers.HTTPClient
}

func New(apiKey, endpoint string, client *http.Client) Search {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return Search{ApiKey: apiKey, Endpoint: endpoint, client: helpers.NewHTTPClient(client, 0, 0)}
}

func (s Search) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	// https://api.search.brave.com/app/documentation/web-search
	endpoint := fmt.Sprintf("%s?q=%s&count=%d", s.Endpoint, url.QueryEscape(q), k)
	headers := map[string]string{
		"Accept":               "application/json",
		"X-Subscription-Token": s.ApiKey,
	}
	var raw struct {
		Web struct {
			Results []struct {
				Title   string `json:"title"`
				URL     string `json:"url"`
				Snippet string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := s.client.DoJSON(ctx, http.MethodGet, endpoint, headers, nil, &raw); err != nil {
		return nil, goerr.Wrap(err, "brave search failed", goerr.V("query", q))
	}
	var out []models.Result
	for i, r := range raw.Web.Results {
		if k > 0 && i >= k {
			break
		}
		out = append(out, models.Result{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
	}
	return out, nil
}
