package agent

import (
	"strconv"
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/m-mizutani/goerr/v2"
	wsmodels "github.com/mohammad-safakhou/deepresearch/tools/web_search/models"
)

type rankDoc struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// RankByFocus moves results that match the focus note to the front, best
// match first. Non-matching results keep their original relative order. On
// any index error the input order is returned.
func RankByFocus(results []wsmodels.Result, focus string) ([]wsmodels.Result, error) {
	focus = strings.TrimSpace(focus)
	if focus == "" || len(results) < 2 {
		return results, nil
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return results, goerr.Wrap(err, "failed to create rank index")
	}
	defer index.Close()

	for i, r := range results {
		if err := index.Index(strconv.Itoa(i), rankDoc{Title: r.Title, Snippet: r.Snippet}); err != nil {
			return results, goerr.Wrap(err, "failed to index result", goerr.V("title", r.Title))
		}
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(focus), len(results), 0, false)
	res, err := index.Search(req)
	if err != nil {
		return results, goerr.Wrap(err, "rank search failed", goerr.V("focus", focus))
	}

	out := make([]wsmodels.Result, 0, len(results))
	picked := make(map[int]bool, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(results) || picked[i] {
			continue
		}
		picked[i] = true
		out = append(out, results[i])
	}
	for i, r := range results {
		if !picked[i] {
			out = append(out, r)
		}
	}
	return out, nil
}
