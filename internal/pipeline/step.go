package pipeline

import (
	"fmt"
	"strings"
)

// Step is a node of the research graph.
type Step int

const (
	StepNews Step = iota
	StepQuantitative
	StepSynthesize
	StepCritique
	StepDone
	StepFailed
)

var stepNames = [...]string{"news", "quantitative", "synthesize", "critique", "done", "failed"}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

func (s Step) Terminal() bool { return s == StepDone || s == StepFailed }

// Next is the graph's transition function. retry only matters after the
// critique step, where it sends the run back to the quantitative step.
func Next(s Step, retry bool) Step {
	switch s {
	case StepNews:
		return StepQuantitative
	case StepQuantitative:
		return StepSynthesize
	case StepSynthesize:
		return StepCritique
	case StepCritique:
		if retry {
			return StepQuantitative
		}
		return StepDone
	default:
		return s
	}
}

// Mode selects the pipeline a run executes.
type Mode string

const (
	ModeGraph Mode = "graph"
	ModeQuick Mode = "quick"
)

// ParseMode accepts "graph", "quick" and "" (the configured default).
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeGraph, ModeQuick:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}
