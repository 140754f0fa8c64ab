package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/mohammad-safakhou/deepresearch/internal/runtime"
	"github.com/mohammad-safakhou/deepresearch/internal/store"
	"github.com/mohammad-safakhou/deepresearch/models"
)

type NewsAnalyzer interface {
	Analyze(ctx context.Context, sector, focus string) (models.NewsResult, error)
	Search(ctx context.Context, query, focus string) ([]models.Source, error)
}

type TechnicalAnalyzer interface {
	Analyze(ctx context.Context, ticker string) (models.TechnicalResult, error)
}

type FundamentalAnalyzer interface {
	Analyze(ctx context.Context, ticker string) (models.FundamentalResult, error)
}

type KPIAnalyzer interface {
	Analyze(ctx context.Context, ticker string) (models.KPIResult, error)
}

// TickerResolver maps plan sectors to the tickers to analyze.
type TickerResolver interface {
	Tickers(sectors []string) []string
}

type Deps struct {
	Store       *store.Store
	News        NewsAnalyzer
	Technical   TechnicalAnalyzer
	Fundamental FundamentalAnalyzer
	KPI         KPIAnalyzer
	Tickers     TickerResolver
	Metrics     *runtime.Metrics
	Logger      *slog.Logger
}

type Options struct {
	DefaultMode Mode
	MaxRetries  int
	RunTimeout  time.Duration
}

// Runner drives research runs over stored plans.
type Runner struct {
	Deps
	opts Options
	wg   sync.WaitGroup
}

func NewRunner(deps Deps, opts Options) *Runner {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.Logger = deps.Logger.With("component", "pipeline")
	if opts.DefaultMode == "" {
		opts.DefaultMode = ModeGraph
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.MaxRetries > 1 {
		opts.MaxRetries = 1
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 15 * time.Minute
	}
	return &Runner{Deps: deps, opts: opts}
}

func (r *Runner) Approve(planID, focus string) error {
	return r.Store.Approve(planID, focus)
}

// Run validates the plan, marks it queued and executes it in the background.
// It returns store.ErrNotFound or store.ErrInvalidState without touching the
// run state.
func (r *Runner) Run(planID string, mode Mode) error {
	e, err := r.prepare(planID)
	if err != nil {
		return err
	}
	mode = r.resolve(mode)
	gen := r.markQueued(e, mode)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.opts.RunTimeout)
		defer cancel()
		r.execute(ctx, e, mode, gen)
	}()
	return nil
}

// Execute runs the plan on the calling goroutine.
func (r *Runner) Execute(ctx context.Context, planID string, mode Mode) error {
	e, err := r.prepare(planID)
	if err != nil {
		return err
	}
	mode = r.resolve(mode)
	gen := r.markQueued(e, mode)
	ctx, cancel := context.WithTimeout(ctx, r.opts.RunTimeout)
	defer cancel()
	r.execute(ctx, e, mode, gen)
	return nil
}

// Wait blocks until every background run has finished.
func (r *Runner) Wait() { r.wg.Wait() }

func (r *Runner) prepare(planID string) (*store.Entry, error) {
	e, err := r.Store.Get(planID)
	if err != nil {
		return nil, err
	}
	if !e.Snapshot().Approved {
		return nil, store.ErrInvalidState
	}
	return e, nil
}

func (r *Runner) resolve(mode Mode) Mode {
	if mode == "" {
		return r.opts.DefaultMode
	}
	return mode
}

func (r *Runner) markQueued(e *store.Entry, mode Mode) uint64 {
	return e.StartRun(func(s *models.RunState) {
		s.Done = false
		s.Mode = string(mode)
	})
}

// execute runs generation gen of the plan once the run lock is free. A
// generation superseded while waiting is skipped, and a superseded run never
// publishes its outcome.
func (r *Runner) execute(ctx context.Context, e *store.Entry, mode Mode, gen uint64) {
	unlock := e.LockRun()
	defer unlock()

	plan := e.Plan()
	logger := r.Logger.With("plan_id", plan.PlanID, "mode", string(mode))
	var focus string
	current := e.UpdateRun(gen, func(s *models.RunState) {
		focus = s.Focus
		s.Logs = []models.LogEntry{}
		s.Report = nil
		s.Charts = nil
		s.RetryCount = 0
		s.Done = false
		s.Mode = string(mode)
	})
	if !current {
		logger.Debug("superseded run skipped")
		return
	}

	rec := &recorder{entry: e, planID: plan.PlanID, logger: logger}
	started := time.Now()
	logger.Info("research run started", "sectors", plan.Sectors)

	var (
		report string
		err    error
	)
	defer func() {
		if p := recover(); p != nil {
			logger.Error("research run panicked", "panic", p, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", p)
		}
		outcome := "success"
		if err != nil {
			outcome = "failure"
			rec.log(agentSystem, "Run failed: "+err.Error(), models.LogError)
			logger.Error("research run failed", "error", err, "elapsed", time.Since(started))
		} else {
			logger.Info("research run finished", "elapsed", time.Since(started))
		}
		published := e.UpdateRun(gen, func(s *models.RunState) {
			if err == nil {
				s.Report = &report
			}
			s.Done = true
		})
		if !published {
			logger.Debug("superseded run outcome dropped")
		}
		r.Metrics.RunFinished(string(mode), outcome)
	}()

	switch mode {
	case ModeQuick:
		report, err = r.runQuick(ctx, plan, focus, rec)
	default:
		report, err = r.runGraph(ctx, e, plan, focus, rec)
	}
}

// guard turns a panic in fn into an error so fan-out goroutines cannot crash
// the process.
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		return fn()
	}
}
