package tavily

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/deepresearch/internal/helpers"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search/models"
)

const DefaultEndpoint = "https://api.tavily.com/search"

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

type request struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type response struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (s Search) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	// https://docs.tavily.com/documentation/api-reference/endpoint/search
	var raw response
	body := request{APIKey: s.ApiKey, Query: q, MaxResults: k}
	if err := s.client.DoJSON(ctx, http.MethodPost, s.Endpoint, nil, body, &raw); err != nil {
		return nil, goerr.Wrap(err, "tavily search failed", goerr.V("query", q))
	}

	out := make([]models.Result, 0, len(raw.Results))
	for i, r := range raw.Results {
		if k > 0 && i >= k {
			break
		}
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = "result"
		}
		out = append(out, models.Result{Title: title, URL: r.URL, Snippet: r.Content})
	}
	return out, nil
}
