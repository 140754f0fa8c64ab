package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mohammad-safakhou/deepresearch/internal/agent"
	"github.com/mohammad-safakhou/deepresearch/internal/report"
	"github.com/mohammad-safakhou/deepresearch/models"
)

// runQuick is the linear variant: search, list sources, pull KPIs, write a short note.
func (r *Runner) runQuick(ctx context.Context, plan models.Plan, focus string, rec *recorder) (string, error) {
	sector := plan.PrimarySector()

	start := time.Now()
	rec.log(agentOrchestrator, "Searching latest sector outlook…", models.LogInfo)
	sources, err := r.News.Search(ctx, agent.OutlookQuery(sector), focus)
	if err != nil {
		r.Metrics.UpstreamFailure("search")
		rec.logger.Warn("outlook search degraded", "error", err)
	}
	rec.log(agentOrchestrator, "Reading sources…", models.LogInfo)
	for _, s := range sources {
		rec.log(agentNews, fmt.Sprintf("Source: %s | %s", s.Title, s.URL), models.LogInfo)
	}
	r.Metrics.ObserveStep(StepNews.String(), time.Since(start))

	start = time.Now()
	rec.log(agentOrchestrator, "Pulling tickers KPIs…", models.LogInfo)
	tickers := r.Tickers.Tickers(plan.Sectors)
	kpis := make([]models.KPIResult, len(tickers))
	var eg errgroup.Group
	for i, ticker := range tickers {
		eg.Go(guard(func() error {
			res, err := r.KPI.Analyze(ctx, ticker)
			if err != nil {
				r.Metrics.UpstreamFailure("quote")
				rec.logger.Warn("kpis unavailable", "ticker", ticker, "error", err)
				rec.log(agentKPI, "Market data unavailable for "+ticker, models.LogError)
			}
			kpis[i] = res
			rec.log(agentKPI, "Analyzed "+ticker, models.LogSuccess)
			return nil
		}))
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}
	r.Metrics.ObserveStep(StepQuantitative.String(), time.Since(start))

	note := report.ComposeQuickNote(sector, sources, kpis)
	rec.log(agentOrchestrator, "Research complete", models.LogSuccess)
	return note, nil
}
