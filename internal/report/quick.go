package report

import (
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/deepresearch/models"
)

// ComposeQuickNote renders the short note produced by the linear pipeline.
func ComposeQuickNote(sector string, sources []models.Source, kpis []models.KPIResult) string {
	var table strings.Builder
	table.WriteString("| Company | Last Price | Market Cap | 5y Price CAGR |\n|---|---:|---:|---:|\n")
	for _, k := range kpis {
		fmt.Fprintf(&table, "| %s | %s | %s | %s |\n", k.Ticker, decimal(k.LastPrice), billions(k.MarketCap), percent(k.Price5yCAGR))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Sector — Quick Research Note\n\n", sector)
	b.WriteString("## Executive Summary\n")
	b.WriteString("Auto-generated note based on real-time search and market KPIs. Replace with your sector template later.\n\n")
	b.WriteString("## Benchmarks (Yahoo Finance)\n")
	b.WriteString(table.String())
	b.WriteString("\n\n## Sources\n")
	b.WriteString(sourceList(sources, func(s models.Source) string { return fmt.Sprintf("- %s — %s", s.Title, s.URL) }))
	b.WriteString("\n")
	return b.String()
}
