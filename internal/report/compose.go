package report

import (
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/deepresearch/models"
)

const na = "N/A"

const (
	commentInsufficient = "insufficient data"
	commentPremium      = "high growth expectations (Premium Valuation)"
	commentValue        = "potential undervaluation (Value Territory)"
	commentFair         = "fair valuation aligned with historical averages"
)

// Compose renders the deep research report. One table row is written per
// technical result, joined with the fundamental result of the same ticker.
func Compose(sector string, news models.NewsResult, technicals []models.TechnicalResult, fundamentals []models.FundamentalResult) string {
	var table strings.Builder
	table.WriteString("| Company | Price | Market Cap | P/E | 1y Return |\n|---|---:|---:|---:|---:|\n")
	for _, tech := range technicals {
		fund := findFundamental(fundamentals, tech.Ticker)
		var mc, pe *float64
		if fund != nil {
			mc, pe = fund.MarketCap, fund.PERatio
		}
		fmt.Fprintf(&table, "| %s | %s | %s | %s | %s |\n",
			tech.Ticker, decimal(tech.Price), billions(mc), decimal(pe), percent(tech.Change1Y))
	}

	positive := 0
	for _, t := range technicals {
		if t.Change1Y != nil && *t.Change1Y > 0 {
			positive++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Sector — Deep Research Report\n\n", sector)
	b.WriteString("## 1. Executive Summary\n")
	b.WriteString(news.Summary)
	b.WriteString("\n")
	if len(news.Excerpts) > 0 {
		b.WriteString("\nKey excerpts:\n")
		for _, e := range news.Excerpts {
			fmt.Fprintf(&b, "- **%s**: %s\n", e.Title, e.Text)
		}
	}
	b.WriteString("\n## 2. Market Data & Valuation\n")
	b.WriteString(table.String())
	b.WriteString("\n\n## 3. Analyst Thesis\n")
	b.WriteString("Based on the multi-agent analysis:\n")
	fmt.Fprintf(&b, "- **Technicals**: %d out of %d companies are positive over the last year.\n", positive, len(technicals))
	fmt.Fprintf(&b, "- **Fundamentals**: Average P/E ratio suggests %s.\n", ValuationComment(fundamentals))
	b.WriteString("\n## 4. Sources\n")
	b.WriteString(sourceList(news.Sources, func(s models.Source) string { return fmt.Sprintf("- [%s](%s)", s.Title, s.URL) }))
	b.WriteString("\n")
	return b.String()
}

// ValuationComment classifies the mean of the reported P/E ratios.
func ValuationComment(fundamentals []models.FundamentalResult) string {
	var sum float64
	n := 0
	for _, f := range fundamentals {
		if f.PERatio == nil {
			continue
		}
		sum += *f.PERatio
		n++
	}
	if n == 0 {
		return commentInsufficient
	}
	avg := sum / float64(n)
	switch {
	case avg > 30:
		return commentPremium
	case avg < 15:
		return commentValue
	default:
		return commentFair
	}
}

func findFundamental(fundamentals []models.FundamentalResult, ticker string) *models.FundamentalResult {
	for i := range fundamentals {
		if fundamentals[i].Ticker == ticker {
			return &fundamentals[i]
		}
	}
	return nil
}

func sourceList(sources []models.Source, line func(models.Source) string) string {
	lines := make([]string, 0, len(sources))
	for _, s := range sources {
		lines = append(lines, line(s))
	}
	return strings.Join(lines, "\n")
}

func decimal(f *float64) string {
	if f == nil {
		return na
	}
	return fmt.Sprintf("%.2f", *f)
}

func billions(f *float64) string {
	if f == nil {
		return na
	}
	return fmt.Sprintf("%.2fB", *f/1e9)
}

func percent(f *float64) string {
	if f == nil {
		return na
	}
	return fmt.Sprintf("%.2f%%", *f*100)
}
