package chromedp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/m-mizutani/goerr/v2"

	"github.com/mohammad-safakhou/deepresearch/tools/web_fetch/extract"
	"github.com/mohammad-safakhou/deepresearch/tools/web_fetch/models"
)

const defaultUserAgent = "DeepResearchBot/1.0"

// renderStatus marks results whose page never rendered.
const renderStatus = 599

// Fetch renders a page in headless Chrome and extracts the article from the
// resulting DOM. Use it for news sites that build their content client-side.
type Fetch struct {
	Timeout   time.Duration
	MaxChars  int
	UserAgent string
}

func (f Fetch) Exec(ctx context.Context, rawURL string) (models.Result, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return models.Result{}, errors.New("invalid url")
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	started := time.Now()
	finalURL, doc, err := f.render(ctx, rawURL)
	elapsed := int(time.Since(started).Milliseconds())
	if err != nil {
		return models.Result{URL: rawURL, Status: renderStatus, RenderMS: elapsed},
			goerr.Wrap(err, "render failed", goerr.V("url", rawURL))
	}

	res, err := extract.Article(finalURL, doc, f.MaxChars)
	res.RenderMS = elapsed
	return res, err
}

// render returns the post-redirect location and the serialized DOM.
func (f Fetch) render(ctx context.Context, rawURL string) (string, string, error) {
	ua := f.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(ua),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	var location, doc string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &doc, chromedp.ByQuery),
	)
	if location == "" {
		location = rawURL
	}
	return location, doc, err
}
