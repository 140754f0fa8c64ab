package agent

import (
	"math"

	"github.com/mohammad-safakhou/deepresearch/models"
	qmodels "github.com/mohammad-safakhou/deepresearch/tools/quote/models"
)

const dateLayout = "2006-01-02"

// BuildTechnical turns a quote and a one-year daily history into a
// TechnicalResult. q may be nil when the quote call failed.
func BuildTechnical(ticker string, q *qmodels.Quote, bars []qmodels.Bar) models.TechnicalResult {
	res := models.TechnicalResult{Ticker: ticker, History: []models.PricePoint{}}
	if q != nil {
		res.Price = copyFloat(q.Price)
	}
	for _, b := range bars {
		res.History = append(res.History, models.PricePoint{Date: b.Date.Format(dateLayout), Price: b.Close})
	}
	res.Change1Y = TrailingReturn(bars)
	return res
}

// BuildFundamental copies the valuation fields of a quote.
func BuildFundamental(ticker string, q *qmodels.Quote) models.FundamentalResult {
	res := models.FundamentalResult{Ticker: ticker}
	if q == nil {
		return res
	}
	res.MarketCap = copyFloat(q.MarketCap)
	res.PERatio = copyFloat(q.TrailingPE)
	res.EPS = copyFloat(q.EPS)
	if q.Sector != nil {
		s := *q.Sector
		res.Sector = &s
	}
	return res
}

// BuildKPI combines a quote with a multi-year daily history.
func BuildKPI(ticker string, q *qmodels.Quote, bars []qmodels.Bar) models.KPIResult {
	res := models.KPIResult{Ticker: ticker}
	if q != nil {
		res.LastPrice = copyFloat(q.Price)
		res.MarketCap = copyFloat(q.MarketCap)
	}
	res.Price5yCAGR = CAGR(bars)
	return res
}

// TrailingReturn is last/first - 1 over the series. Nil when the series is
// empty or starts at a non-positive price.
func TrailingReturn(bars []qmodels.Bar) *float64 {
	if len(bars) == 0 {
		return nil
	}
	start, end := bars[0].Close, bars[len(bars)-1].Close
	if start <= 0 {
		return nil
	}
	r := end/start - 1
	return &r
}

// CAGR annualizes the price change over the span actually covered by bars,
// counting at least one year.
func CAGR(bars []qmodels.Bar) *float64 {
	if len(bars) == 0 {
		return nil
	}
	first, last := bars[0], bars[len(bars)-1]
	if first.Close <= 0 || last.Close <= 0 {
		return nil
	}
	years := last.Date.Sub(first.Date).Hours() / 24 / 365.25
	if years < 1 {
		years = 1
	}
	r := math.Pow(last.Close/first.Close, 1/years) - 1
	return &r
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
