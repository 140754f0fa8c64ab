package serper

import (
	"context"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/deepresearch/internal/helpers"
	"github.com/mohammad-safakhou/deepresearch/tools/web_search/models"
)

const DefaultEndpoint = "https://google.serper.dev/search"

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
	// https://serper.dev/ docs
	payload := map[string]any{"q": q, "num": k}
	var raw struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	headers := map[string]string{"X-API-KEY": s.ApiKey}
	if err := s.client.DoJSON(ctx, http.MethodPost, s.Endpoint, headers, payload, &raw); err != nil {
		return nil, goerr.Wrap(err, "serper search failed", goerr.V("query", q))
	}

	var out []models.Result
	for i, it := range raw.Organic {
		if k > 0 && i >= k {
			break
		}
		out = append(out, models.Result{Title: it.Title, URL: it.Link, Snippet: it.Snippet})
	}
	return out, nil
}
