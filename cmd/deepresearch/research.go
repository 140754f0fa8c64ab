package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/deepresearch/internal/pipeline"
	"github.com/mohammad-safakhou/deepresearch/models"
)

type researchFlags struct {
	query  string
	sector string
	focus  string
	mode   string
	out    string
	pdf    string
}

func researchCMD(cfgPath *string) *cobra.Command {
	var f researchFlags
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Plan, approve and run one research job in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.research(ctx, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "research question")
	cmd.Flags().StringVar(&f.sector, "sector", "auto", "sector, or auto to classify the query")
	cmd.Flags().StringVar(&f.focus, "focus", "", "focus recorded at approval")
	cmd.Flags().StringVar(&f.mode, "mode", "", "graph or quick (default pipeline.mode)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the Markdown report to this file instead of stdout")
	cmd.Flags().StringVar(&f.pdf, "pdf", "", "also export the report as PDF to this file")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func (a *app) research(ctx context.Context, f researchFlags, stdout, stderr io.Writer) error {
	mode, err := pipeline.ParseMode(f.mode)
	if err != nil {
		return err
	}
	if f.pdf != "" && a.pdf == nil {
		return errors.New("pdf export disabled (export.pdf_enabled)")
	}

	plan := a.store.Create(f.query, a.planner.MakePlan(f.query, f.sector))
	a.metrics.PlanCreated()
	fmt.Fprintf(stderr, "plan %s sectors=%v\n", plan.PlanID, plan.Sectors)
	if err := a.runner.Approve(plan.PlanID, f.focus); err != nil {
		return err
	}
	if err := a.runner.Execute(ctx, plan.PlanID, mode); err != nil {
		return err
	}

	e, err := a.store.Get(plan.PlanID)
	if err != nil {
		return err
	}
	st := e.Snapshot()
	printLogs(stderr, st.Logs)
	if st.Report == nil {
		return errors.New("research run failed")
	}

	if f.out == "" {
		fmt.Fprint(stdout, *st.Report)
	} else if err := os.WriteFile(f.out, []byte(*st.Report), 0o644); err != nil {
		return err
	}
	if f.pdf != "" {
		raw, err := a.pdf.Export(ctx, "Research report "+plan.PlanID, *st.Report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.pdf, raw, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func printLogs(w io.Writer, logs []models.LogEntry) {
	for _, l := range logs {
		fmt.Fprintf(w, "[%s] %-17s %-7s %s\n", l.Timestamp, l.Agent, l.Type, l.Message)
	}
}
