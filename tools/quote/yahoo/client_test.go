package yahoo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mohammad-safakhou/deepresearch/tools/quote/yahoo"
)

const summaryBody = `{"quoteSummary":{"result":[{
  "price":{"regularMarketPrice":{"raw":3500.5},"marketCap":{"raw":1.2e12}},
  "summaryDetail":{"trailingPE":{"raw":28.4}},
  "defaultKeyStatistics":{"trailingEps":{"raw":0}},
  "assetProfile":{"sector":"Technology"}}],"error":null}}`

const chartBody = `{"chart":{"result":[{"meta":{"regularMarketPrice":3490.25},"timestamp":[1704153600,1704240000,1704326400],
  "indicators":{"quote":[{"close":[100.0,null,110.0]}]}}],"error":null}}`

const testCrumb = "k9/Xy.z"

type fakeYahoo struct {
	crumbs    atomic.Int32
	summaries atomic.Int32
	noCrumb   bool
	// expireOnce rejects the first valid summary request as an expired crumb
	expireOnce atomic.Bool
}

// newServer mimics the session handshake: a cookie from the root path, a
// crumb for that cookie, and a summary endpoint that rejects anything else.
func newServer(t *testing.T, f *fakeYahoo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected a user agent header")
		}
		session, _ := r.Cookie("A3")
		switch {
		case r.URL.Path == "/":
			http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session-1", Path: "/"})
			http.NotFound(w, r)
		case r.URL.Path == "/v1/test/getcrumb":
			f.crumbs.Add(1)
			if f.noCrumb || session == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(testCrumb))
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			f.summaries.Add(1)
			if session == nil || r.URL.Query().Get("crumb") != testCrumb || f.expireOnce.CompareAndSwap(true, false) {
				http.Error(w, `{"finance":{"result":null,"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`, http.StatusUnauthorized)
				return
			}
			if !strings.HasSuffix(r.URL.Path, "/TCS.NS") {
				http.Error(w, `{"quoteSummary":{"result":null,"error":{"code":"Not Found"}}}`, http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(summaryBody))
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/TCS.NS"):
			if r.URL.Query().Get("interval") != "1d" {
				t.Errorf("expected daily interval")
			}
			_, _ = w.Write([]byte(chartBody))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestQuote(t *testing.T) {
	f := &fakeYahoo{}
	srv := newServer(t, f)
	defer srv.Close()
	c := yahoo.New(srv.URL, "", nil)

	q, err := c.Quote(context.Background(), "TCS.NS")
	gt.NoError(t, err)
	gt.Equal(t, *q.Price, 3500.5)
	gt.Equal(t, *q.MarketCap, 1.2e12)
	gt.Equal(t, *q.TrailingPE, 28.4)
	// zero is reported for unknown values
	gt.True(t, q.EPS == nil)
	gt.Equal(t, *q.Sector, "Technology")

	// the crumb is reused for later quotes
	_, err = c.Quote(context.Background(), "TCS.NS")
	gt.NoError(t, err)
	gt.Equal(t, f.crumbs.Load(), int32(1))
	gt.Equal(t, f.summaries.Load(), int32(2))
}

func TestQuoteFallsBackToChartPrice(t *testing.T) {
	srv := newServer(t, &fakeYahoo{noCrumb: true})
	defer srv.Close()
	c := yahoo.New(srv.URL, "", nil)

	q, err := c.Quote(context.Background(), "TCS.NS")
	gt.NoError(t, err)
	gt.Equal(t, *q.Price, 3490.25)
	gt.True(t, q.MarketCap == nil)
	gt.True(t, q.TrailingPE == nil)
	gt.True(t, q.Sector == nil)
}

func TestQuoteRefreshesRejectedCrumb(t *testing.T) {
	f := &fakeYahoo{}
	f.expireOnce.Store(true)
	srv := newServer(t, f)
	defer srv.Close()
	c := yahoo.New(srv.URL, "", nil)

	q, err := c.Quote(context.Background(), "TCS.NS")
	gt.NoError(t, err)
	gt.Equal(t, *q.TrailingPE, 28.4)
	gt.Equal(t, f.crumbs.Load(), int32(2))
	gt.Equal(t, f.summaries.Load(), int32(2))
}

func TestQuoteNotFound(t *testing.T) {
	srv := newServer(t, &fakeYahoo{})
	defer srv.Close()
	c := yahoo.New(srv.URL, "", nil)

	q, err := c.Quote(context.Background(), "NOPE.NS")
	gt.Error(t, err)
	gt.True(t, q.Price == nil)
}

func TestHistorySkipsMissingCloses(t *testing.T) {
	srv := newServer(t, &fakeYahoo{})
	defer srv.Close()
	c := yahoo.New(srv.URL, "", nil)

	to := time.Unix(1704326400, 0)
	bars, err := c.History(context.Background(), "TCS.NS", to.AddDate(-1, 0, 0), to)
	gt.NoError(t, err)
	gt.A(t, bars).Length(2)
	gt.Equal(t, bars[0].Close, 100.0)
	gt.Equal(t, bars[1].Close, 110.0)
	gt.True(t, bars[0].Date.Before(bars[1].Date))
}
