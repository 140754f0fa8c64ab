package mock

import (
	"context"

	"github.com/mohammad-safakhou/deepresearch/tools/web_search/models"
)

// Search returns a fixed pair of placeholder sources regardless of the query.
type Search struct{}

func (Search) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	return []models.Result{
		{Title: "(mock) Industry brief", URL: "https://example.com/brief"},
		{Title: "(mock) Company earnings", URL: "https://example.com/earnings"},
	}, nil
}
