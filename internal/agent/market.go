package agent

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/deepresearch/models"
	"github.com/mohammad-safakhou/deepresearch/tools/quote"
	qmodels "github.com/mohammad-safakhou/deepresearch/tools/quote/models"
)

// TechnicalAgent reads the current price and the last year of closes.
type TechnicalAgent struct {
	Quotes quote.Provider
	Now    func() time.Time
}

// Analyze always returns a usable result; the error reports which upstream
// call failed so callers can log it.
func (a TechnicalAgent) Analyze(ctx context.Context, ticker string) (models.TechnicalResult, error) {
	var qp *qmodels.Quote
	q, qerr := a.Quotes.Quote(ctx, ticker)
	if qerr == nil {
		qp = &q
	}
	end := now(a.Now)
	bars, herr := a.Quotes.History(ctx, ticker, end.AddDate(-1, 0, 0), end)
	if herr != nil {
		bars = nil
	}
	res := BuildTechnical(ticker, qp, bars)
	if qerr != nil {
		return res, goerr.Wrap(qerr, "quote unavailable", goerr.V("ticker", ticker))
	}
	if herr != nil {
		return res, goerr.Wrap(herr, "history unavailable", goerr.V("ticker", ticker))
	}
	return res, nil
}

// FundamentalAgent reads valuation fields.
type FundamentalAgent struct {
	Quotes quote.Provider
}

func (a FundamentalAgent) Analyze(ctx context.Context, ticker string) (models.FundamentalResult, error) {
	q, err := a.Quotes.Quote(ctx, ticker)
	if err != nil {
		return BuildFundamental(ticker, nil), goerr.Wrap(err, "quote unavailable", goerr.V("ticker", ticker))
	}
	return BuildFundamental(ticker, &q), nil
}

// KPIAgent gathers the quick-note benchmarks over five years of closes.
type KPIAgent struct {
	Quotes quote.Provider
	Now    func() time.Time
}

func (a KPIAgent) Analyze(ctx context.Context, ticker string) (models.KPIResult, error) {
	q, err := a.Quotes.Quote(ctx, ticker)
	if err != nil {
		return BuildKPI(ticker, nil, nil), goerr.Wrap(err, "quote unavailable", goerr.V("ticker", ticker))
	}
	end := now(a.Now)
	bars, herr := a.Quotes.History(ctx, ticker, end.AddDate(-5, 0, 0), end)
	if herr != nil {
		return BuildKPI(ticker, &q, nil), goerr.Wrap(herr, "history unavailable", goerr.V("ticker", ticker))
	}
	return BuildKPI(ticker, &q, bars), nil
}

func now(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now()
	}
	return fn()
}
