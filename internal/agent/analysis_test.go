package agent

import (
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	qmodels "github.com/mohammad-safakhou/deepresearch/tools/quote/models"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTrailingReturn(t *testing.T) {
	bars := []qmodels.Bar{{Date: day(2024, 6, 3), Close: 100}, {Date: day(2024, 12, 2), Close: 90}, {Date: day(2025, 6, 2), Close: 120}}
	r := TrailingReturn(bars)
	gt.True(t, r != nil)
	gt.True(t, near(*r, 0.2))

	gt.True(t, TrailingReturn(nil) == nil)
	gt.True(t, TrailingReturn([]qmodels.Bar{{Close: 0}, {Close: 3}}) == nil)

	one := TrailingReturn([]qmodels.Bar{{Close: 50}})
	gt.True(t, one != nil && *one == 0)
}

func TestCAGRUsesActualSpan(t *testing.T) {
	five := []qmodels.Bar{{Date: day(2020, 6, 1), Close: 100}, {Date: day(2025, 6, 1), Close: 200}}
	r := CAGR(five)
	gt.True(t, r != nil)
	years := day(2025, 6, 1).Sub(day(2020, 6, 1)).Hours() / 24 / 365.25
	gt.True(t, near(*r, math.Pow(2, 1/years)-1))

	// shorter than a year counts as one year
	short := []qmodels.Bar{{Date: day(2025, 1, 1), Close: 100}, {Date: day(2025, 3, 1), Close: 110}}
	r = CAGR(short)
	gt.True(t, r != nil && near(*r, 0.1))

	gt.True(t, CAGR(nil) == nil)
}

func TestBuildTechnicalWithoutQuote(t *testing.T) {
	res := BuildTechnical("TCS.NS", nil, []qmodels.Bar{{Date: day(2025, 1, 2), Close: 10}, {Date: day(2025, 1, 3), Close: 11}})
	gt.Equal(t, res.Ticker, "TCS.NS")
	gt.True(t, res.Price == nil)
	gt.A(t, res.History).Length(2)
	gt.Equal(t, res.History[0].Date, "2025-01-02")
	gt.True(t, res.Change1Y != nil)
}

func TestBuildTechnicalEmpty(t *testing.T) {
	res := BuildTechnical("TCS.NS", nil, nil)
	gt.True(t, res.History != nil)
	gt.A(t, res.History).Length(0)
	gt.True(t, res.Change1Y == nil)
}

func TestBuildFundamentalCopiesValues(t *testing.T) {
	pe, sector := 25.0, "Technology"
	q := &qmodels.Quote{Symbol: "INFY.NS", TrailingPE: &pe, Sector: &sector}
	res := BuildFundamental("INFY.NS", q)
	pe = 1
	gt.Equal(t, *res.PERatio, 25.0)
	gt.Equal(t, *res.Sector, "Technology")
	gt.True(t, res.MarketCap == nil)
	gt.True(t, res.EPS == nil)
}
