package pipeline

import (
	"log/slog"

	"github.com/mohammad-safakhou/deepresearch/internal/store"
	"github.com/mohammad-safakhou/deepresearch/models"
)

const (
	agentNews         = "News Agent"
	agentTechnical    = "Technical Agent"
	agentFundamental  = "Fundamental Agent"
	agentKPI          = "KPI Agent"
	agentOrchestrator = "Orchestrator"
	agentSynthesizer  = "Synthesizer"
	agentCritic       = "Critic"
	agentSystem       = "System"
)

// recorder appends progress entries to a plan's run state. Safe for
// concurrent use.
type recorder struct {
	entry  *store.Entry
	planID string
	logger *slog.Logger
}

func (r *recorder) log(agent, message string, typ models.LogType) {
	r.entry.AppendLog(models.NewLogEntry(agent, message, typ))
	r.logger.Debug("run progress", "plan_id", r.planID, "agent", agent, "message", message, "type", string(typ))
}
