package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/mohammad-safakhou/deepresearch/internal/report"
	"github.com/mohammad-safakhou/deepresearch/internal/store"
	"github.com/mohammad-safakhou/deepresearch/models"
)

// graphRun carries the state threaded through the research graph.
type graphRun struct {
	*Runner
	entry *store.Entry
	rec   *recorder

	sector  string
	focus   string
	tickers []string

	news         models.NewsResult
	technicals   []models.TechnicalResult
	fundamentals []models.FundamentalResult
	report       string
	critiques    int
	retry        bool
}

func (r *Runner) runGraph(ctx context.Context, e *store.Entry, plan models.Plan, focus string, rec *recorder) (string, error) {
	g := &graphRun{
		Runner:  r,
		entry:   e,
		rec:     rec,
		sector:  plan.PrimarySector(),
		focus:   focus,
		tickers: r.Tickers.Tickers(plan.Sectors),
	}

	step := StepNews
	for !step.Terminal() {
		start := time.Now()
		if err := g.exec(ctx, step); err != nil {
			return "", goerr.Wrap(err, "step failed", goerr.V("step", step.String()))
		}
		r.Metrics.ObserveStep(step.String(), time.Since(start))
		step = Next(step, g.retry)
	}
	return g.report, nil
}

func (g *graphRun) exec(ctx context.Context, step Step) error {
	switch step {
	case StepNews:
		return g.newsStep(ctx)
	case StepQuantitative:
		return g.quantitativeStep(ctx)
	case StepSynthesize:
		return g.synthesizeStep()
	case StepCritique:
		return g.critiqueStep()
	default:
		return fmt.Errorf("unexpected step %s", step)
	}
}

func (g *graphRun) newsStep(ctx context.Context) error {
	g.rec.log(agentNews, "Scanning market headlines...", models.LogThought)
	res, err := g.News.Analyze(ctx, g.sector, g.focus)
	if err != nil {
		g.Metrics.UpstreamFailure("search")
		g.rec.logger.Warn("news search degraded", "error", err)
	}
	if len(res.Sources) == 0 {
		g.rec.log(agentNews, "No sources found. Retrying with broader query...", models.LogError)
	}
	g.rec.log(agentNews, fmt.Sprintf("Found %d articles.", len(res.Sources)), models.LogSuccess)
	g.news = res
	return nil
}

func (g *graphRun) quantitativeStep(ctx context.Context) error {
	g.rec.log(agentOrchestrator, "Running Technical & Fundamental analysis in parallel...", models.LogInfo)

	technicals := make([]models.TechnicalResult, len(g.tickers))
	fundamentals := make([]models.FundamentalResult, len(g.tickers))
	var eg errgroup.Group
	for i, ticker := range g.tickers {
		eg.Go(guard(func() error {
			res, err := g.Technical.Analyze(ctx, ticker)
			if err != nil {
				g.upstreamFailed(agentTechnical, ticker, err)
			}
			technicals[i] = res
			g.rec.log(agentTechnical, "Analyzed "+ticker, models.LogSuccess)
			return nil
		}))
		eg.Go(guard(func() error {
			res, err := g.Fundamental.Analyze(ctx, ticker)
			if err != nil {
				g.upstreamFailed(agentFundamental, ticker, err)
			}
			fundamentals[i] = res
			g.rec.log(agentFundamental, "Analyzed "+ticker, models.LogSuccess)
			return nil
		}))
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	g.technicals, g.fundamentals = technicals, fundamentals
	return nil
}

func (g *graphRun) upstreamFailed(agent, ticker string, err error) {
	g.Metrics.UpstreamFailure("quote")
	g.rec.logger.Warn("market data unavailable", "agent", agent, "ticker", ticker, "error", err)
	g.rec.log(agent, "Market data unavailable for "+ticker, models.LogError)
}

func (g *graphRun) synthesizeStep() error {
	g.rec.log(agentSynthesizer, "Drafting report...", models.LogThought)
	g.report = report.Compose(g.sector, g.news, g.technicals, g.fundamentals)

	var charts []models.ChartSeries
	for _, t := range g.technicals {
		if len(t.History) == 0 {
			continue
		}
		charts = append(charts, models.ChartSeries{Ticker: t.Ticker, Data: append([]models.PricePoint(nil), t.History...)})
	}
	g.entry.Update(func(s *models.RunState) { s.Charts = charts })
	return nil
}

func (g *graphRun) critiqueStep() error {
	missing := 0
	for _, t := range g.technicals {
		if t.Price == nil {
			missing++
		}
	}
	if missing > 0 && g.critiques < g.opts.MaxRetries {
		g.critiques++
		count := g.critiques
		g.entry.Update(func(s *models.RunState) { s.RetryCount = count })
		g.Metrics.CritiqueRetry()
		g.rec.log(agentCritic, fmt.Sprintf("Found %d tickers with missing data. Requesting retry...", missing), models.LogError)
		g.retry = true
		return nil
	}
	g.rec.log(agentCritic, "Report looks solid. Approving.", models.LogSuccess)
	g.retry = false
	return nil
}
