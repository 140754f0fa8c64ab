package http

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/deepresearch/tools/web_fetch/extract"
	"github.com/mohammad-safakhou/deepresearch/tools/web_fetch/models"
)

const userAgent = "DeepResearchBot/1.0 (+https://example.com/bot)"

// Fetch downloads pages with a plain GET. It does not run scripts.
type Fetch struct {
	Timeout  time.Duration
	MaxChars int
	Client   *nethttp.Client
}

func (f Fetch) Exec(ctx context.Context, url string) (models.Result, error) {
	if strings.TrimSpace(url) == "" {
		return models.Result{}, errors.New("invalid url")
	}
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	t0 := time.Now()

	client := f.Client
	if client == nil {
		client = nethttp.DefaultClient
	}
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, url, nil)
	if err != nil {
		return models.Result{URL: url}, goerr.Wrap(err, "bad request", goerr.V("url", url))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return models.Result{URL: url, Status: 599, RenderMS: elapsedMS(t0)}, goerr.Wrap(err, "fetch failed", goerr.V("url", url))
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return models.Result{URL: url, Status: resp.StatusCode, RenderMS: elapsedMS(t0)}, goerr.New("unexpected status", goerr.V("url", url), goerr.V("status", resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return models.Result{URL: url, Status: resp.StatusCode, RenderMS: elapsedMS(t0)}, goerr.Wrap(err, "read body failed", goerr.V("url", url))
	}

	res, err := extract.Article(url, string(body), f.MaxChars)
	res.Status = resp.StatusCode
	res.RenderMS = elapsedMS(t0)
	return res, err
}

func elapsedMS(t0 time.Time) int { return int(time.Since(t0) / time.Millisecond) }
