package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mohammad-safakhou/deepresearch/models"
)

func f(v float64) *float64 { return &v }

func TestComposeDeepReport(t *testing.T) {
	news := models.NewsResult{
		Summary: "Summary text.",
		Sources: []models.Source{{Title: "(mock) Industry brief", URL: "https://example.com/brief"}},
	}
	technicals := []models.TechnicalResult{
		{Ticker: "TCS.NS", Price: f(3500.456), Change1Y: f(0.1234)},
		{Ticker: "INFY.NS", Price: nil, Change1Y: f(-0.05)},
		{Ticker: "WIPRO.NS", Price: f(250)},
	}
	fundamentals := []models.FundamentalResult{
		{Ticker: "WIPRO.NS", MarketCap: f(1.3e12), PERatio: f(20)},
		{Ticker: "TCS.NS", MarketCap: f(1.25e13), PERatio: f(30)},
	}

	got := Compose("IT", news, technicals, fundamentals)
	want := `# IT Sector — Deep Research Report

## 1. Executive Summary
Summary text.

## 2. Market Data & Valuation
| Company | Price | Market Cap | P/E | 1y Return |
|---|---:|---:|---:|---:|
| TCS.NS | 3500.46 | 12500.00B | 30.00 | 12.34% |
| INFY.NS | N/A | N/A | N/A | -5.00% |
| WIPRO.NS | 250.00 | 1300.00B | 20.00 | N/A |


## 3. Analyst Thesis
Based on the multi-agent analysis:
- **Technicals**: 1 out of 3 companies are positive over the last year.
- **Fundamentals**: Average P/E ratio suggests fair valuation aligned with historical averages.

## 4. Sources
- [(mock) Industry brief](https://example.com/brief)
`
	gt.Equal(t, got, want)
}

func TestComposeRowsMatchTechnicals(t *testing.T) {
	technicals := []models.TechnicalResult{{Ticker: "A"}, {Ticker: "B"}}
	got := Compose("PHARMA", models.NewsResult{}, technicals, nil)
	gt.True(t, strings.HasPrefix(got, "# PHARMA Sector — Deep Research Report\n"))
	gt.Equal(t, strings.Count(got, "| A | N/A | N/A | N/A | N/A |"), 1)
	gt.Equal(t, strings.Count(got, "| B | N/A | N/A | N/A | N/A |"), 1)
	gt.True(t, strings.Contains(got, "Average P/E ratio suggests insufficient data."))
	gt.True(t, strings.Contains(got, "0 out of 2 companies"))
}

func TestComposeExcerpts(t *testing.T) {
	news := models.NewsResult{
		Summary:  "S.",
		Excerpts: []models.Excerpt{{Title: "Brief", URL: "https://x", Text: "Deal wins strong."}},
	}
	got := Compose("IT", news, nil, nil)
	gt.True(t, strings.Contains(got, "S.\n\nKey excerpts:\n- **Brief**: Deal wins strong.\n\n## 2."))
}

func TestValuationCommentBoundaries(t *testing.T) {
	cases := []struct {
		pes  []*float64
		want string
	}{
		{nil, "insufficient data"},
		{[]*float64{nil, nil}, "insufficient data"},
		{[]*float64{f(30)}, "fair valuation aligned with historical averages"},
		{[]*float64{f(30.01)}, "high growth expectations (Premium Valuation)"},
		{[]*float64{f(14.99)}, "potential undervaluation (Value Territory)"},
		{[]*float64{f(15)}, "fair valuation aligned with historical averages"},
		{[]*float64{f(40), nil, f(20)}, "fair valuation aligned with historical averages"},
	}
	for _, tc := range cases {
		var funds []models.FundamentalResult
		for _, pe := range tc.pes {
			funds = append(funds, models.FundamentalResult{Ticker: "X", PERatio: pe})
		}
		gt.Equal(t, ValuationComment(funds), tc.want)
	}
}

func TestComposeQuickNote(t *testing.T) {
	got := ComposeQuickNote("IT",
		[]models.Source{{Title: "Outlook", URL: "https://a"}, {Title: "No results", URL: ""}},
		[]models.KPIResult{{Ticker: "TCS.NS", LastPrice: f(3500), MarketCap: f(1.25e13), Price5yCAGR: f(0.0812)}, {Ticker: "INFY.NS"}},
	)
	want := `# IT Sector — Quick Research Note

## Executive Summary
Auto-generated note based on real-time search and market KPIs. Replace with your sector template later.

## Benchmarks (Yahoo Finance)
| Company | Last Price | Market Cap | 5y Price CAGR |
|---|---:|---:|---:|
| TCS.NS | 3500.00 | 12500.00B | 8.12% |
| INFY.NS | N/A | N/A | N/A |


## Sources
- Outlook — https://a
- No results — 
`
	gt.Equal(t, got, want)
}

func TestRenderHTMLTablesAndSanitizing(t *testing.T) {
	md := "# IT\n\n| A | B |\n|---|---:|\n| 1 | 2 |\n\n<script>alert(1)</script>\n\n- [brief](https://example.com/brief)\n"
	out, err := RenderHTML(md)
	gt.NoError(t, err)
	gt.True(t, strings.Contains(out, "<table>"))
	gt.True(t, strings.Contains(out, "<h1"))
	gt.False(t, strings.Contains(out, "<script>"))
	gt.True(t, strings.Contains(out, `href="https://example.com/brief"`))
}

func TestRenderPageEscapesTitle(t *testing.T) {
	out, err := RenderPage("<IT>", "# IT")
	gt.NoError(t, err)
	gt.True(t, strings.Contains(out, "<title>&lt;IT&gt;</title>"))
}

func TestPDFExportPrintFailure(t *testing.T) {
	x := NewPDFExporter(0)
	var printed string
	x.print = func(ctx context.Context, html string) ([]byte, error) {
		printed = html
		return nil, errors.New("no browser")
	}
	_, err := x.Export(context.Background(), "IT report", "# IT")
	gt.Error(t, err)
	gt.True(t, strings.Contains(printed, "<title>IT report</title>"))
}
