package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/deepresearch/internal/helpers"
	"github.com/mohammad-safakhou/deepresearch/tools/quote/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultCookieURL = "https://fc.yahoo.com"
	DefaultUserAgent = "Mozilla/5.0"
)

// Client reads the public Yahoo Finance JSON endpoints. The quote summary
// endpoint requires a session cookie plus a matching crumb token; both are
// obtained lazily and refreshed once when rejected.
type Client struct {
	baseURL   string
	cookieURL string
	userAgent string
	client    *http.Client
	http      *helpers.HTTPClient

	mu    sync.Mutex
	crumb string
}

// New builds a client. The session cookie is fetched from DefaultCookieURL
// for the default base URL and from baseURL itself otherwise. client is copied
// and given a cookie jar when it has none.
func New(baseURL, userAgent string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	cookieURL := baseURL
	if baseURL == DefaultBaseURL {
		cookieURL = DefaultCookieURL
	}

	var hc http.Client
	if client != nil {
		hc = *client
	}
	if hc.Jar == nil {
		// cookiejar.New only fails on a bad public suffix list
		jar, _ := cookiejar.New(nil)
		hc.Jar = jar
	}
	return &Client{
		baseURL:   baseURL,
		cookieURL: cookieURL,
		userAgent: userAgent,
		client:    &hc,
		http:      helpers.NewHTTPClient(&hc, 0, 0),
	}
}

// sessionCrumb returns the cached crumb, running the cookie and crumb
// handshake when there is none.
func (c *Client) sessionCrumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crumb != "" {
		return c.crumb, nil
	}

	// the cookie response is usually a 404; only its Set-Cookie matters
	if _, _, err := c.get(ctx, c.cookieURL); err != nil {
		return "", goerr.Wrap(err, "cookie request failed")
	}
	status, body, err := c.get(ctx, c.baseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", goerr.Wrap(err, "crumb request failed")
	}
	crumb := strings.TrimSpace(string(body))
	if status != http.StatusOK || crumb == "" || strings.ContainsAny(crumb, "{<") {
		return "", goerr.New("crumb rejected", goerr.V("status", status))
	}
	c.crumb = crumb
	return crumb, nil
}

func (c *Client) resetCrumb() {
	c.mu.Lock()
	c.crumb = ""
	c.mu.Unlock()
}

func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	body, err := helpers.ReadAllAndClose(resp.Body, 4096)
	return resp.StatusCode, body, err
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

// value maps missing and zero readings to nil; Yahoo reports 0 for unknown.
func (v *rawValue) value() *float64 {
	if v == nil || v.Raw == nil || *v.Raw == 0 {
		return nil
	}
	f := *v.Raw
	return &f
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				RegularMarketPrice *rawValue `json:"regularMarketPrice"`
				MarketCap          *rawValue `json:"marketCap"`
			} `json:"price"`
			SummaryDetail *struct {
				TrailingPE *rawValue `json:"trailingPE"`
				MarketCap  *rawValue `json:"marketCap"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				TrailingEps *rawValue `json:"trailingEps"`
			} `json:"defaultKeyStatistics"`
			AssetProfile *struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Accept":     "application/json",
		"User-Agent": c.userAgent,
	}
}

// Quote reads price, valuation and profile fields. When the summary endpoint
// is unavailable the quote carries only the last price from the chart
// endpoint, which needs no crumb.
func (c *Client) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	q := models.Quote{Symbol: symbol}
	raw, err := c.summary(ctx, symbol)
	if err != nil {
		price, perr := c.chartPrice(ctx, symbol)
		if perr != nil {
			return q, goerr.Wrap(err, "quote request failed", goerr.V("symbol", symbol))
		}
		q.Price = price
		return q, nil
	}

	r := raw.QuoteSummary.Result[0]
	if r.Price != nil {
		q.Price = r.Price.RegularMarketPrice.value()
		q.MarketCap = r.Price.MarketCap.value()
	}
	if r.SummaryDetail != nil {
		q.TrailingPE = r.SummaryDetail.TrailingPE.value()
		if q.MarketCap == nil {
			q.MarketCap = r.SummaryDetail.MarketCap.value()
		}
	}
	if r.DefaultKeyStatistics != nil {
		q.EPS = r.DefaultKeyStatistics.TrailingEps.value()
	}
	if r.AssetProfile != nil && strings.TrimSpace(r.AssetProfile.Sector) != "" {
		s := strings.TrimSpace(r.AssetProfile.Sector)
		q.Sector = &s
	}
	return q, nil
}

func (c *Client) summary(ctx context.Context, symbol string) (*quoteSummaryResponse, error) {
	var raw quoteSummaryResponse
	for attempt := 0; attempt < 2; attempt++ {
		crumb, err := c.sessionCrumb(ctx)
		if err != nil {
			return nil, err
		}
		endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,summaryDetail,defaultKeyStatistics,assetProfile&crumb=%s",
			c.baseURL, url.PathEscape(symbol), url.QueryEscape(crumb))

		raw = quoteSummaryResponse{}
		err = c.http.DoJSON(ctx, http.MethodGet, endpoint, c.headers(), nil, &raw)
		var se *helpers.StatusError
		if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden) && attempt == 0 {
			c.resetCrumb()
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}
	if e := raw.QuoteSummary.Error; e != nil {
		return nil, goerr.New("quote rejected", goerr.V("symbol", symbol), goerr.V("code", e.Code), goerr.V("description", e.Description))
	}
	if len(raw.QuoteSummary.Result) == 0 {
		return nil, goerr.New("quote not found", goerr.V("symbol", symbol))
	}
	return &raw, nil
}

func (c *Client) chartPrice(ctx context.Context, symbol string) (*float64, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, url.PathEscape(symbol))
	var raw chartResponse
	if err := c.http.DoJSON(ctx, http.MethodGet, endpoint, c.headers(), nil, &raw); err != nil {
		return nil, err
	}
	if len(raw.Chart.Result) == 0 {
		return nil, goerr.New("chart not found", goerr.V("symbol", symbol))
	}
	m := raw.Chart.Result[0].Meta
	if m == nil || m.RegularMarketPrice == nil || *m.RegularMarketPrice == 0 {
		return nil, goerr.New("chart has no price", goerr.V("symbol", symbol))
	}
	p := *m.RegularMarketPrice
	return &p, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta *struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

// History returns daily closes between from and to in chronological order.
// Days without a close are skipped.
func (c *Client) History(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL, url.PathEscape(symbol), from.Unix(), to.Unix())

	var raw chartResponse
	if err := c.http.DoJSON(ctx, http.MethodGet, endpoint, c.headers(), nil, &raw); err != nil {
		return nil, goerr.Wrap(err, "history request failed", goerr.V("symbol", symbol))
	}
	if e := raw.Chart.Error; e != nil {
		return nil, goerr.New("history rejected", goerr.V("symbol", symbol), goerr.V("code", e.Code), goerr.V("description", e.Description))
	}
	if len(raw.Chart.Result) == 0 {
		return nil, goerr.New("history not found", goerr.V("symbol", symbol))
	}

	r := raw.Chart.Result[0]
	var closes []*float64
	if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}
	bars := make([]models.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		bars = append(bars, models.Bar{Date: time.Unix(ts, 0).UTC(), Close: *closes[i]})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}
