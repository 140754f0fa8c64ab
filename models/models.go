package models

import "time"

// Plan is the canned research plan returned by POST /plan. Immutable once stored.
type Plan struct {
	PlanID         string   `json:"plan_id"`
	Sectors        []string `json:"sectors"`
	Subquestions   []string `json:"subquestions"`
	Sources        []string `json:"sources"`
	Depth          string   `json:"depth"`
	ExpectedOutput string   `json:"expected_output"`
}

// PrimarySector is the sector the report is written for.
func (p Plan) PrimarySector() string {
	if len(p.Sectors) == 0 {
		return ""
	}
	return p.Sectors[0]
}

func (p Plan) Clone() Plan {
	p.Sectors = append([]string(nil), p.Sectors...)
	p.Subquestions = append([]string(nil), p.Subquestions...)
	p.Sources = append([]string(nil), p.Sources...)
	return p
}

type LogType string

const (
	LogInfo    LogType = "info"
	LogThought LogType = "thought"
	LogSuccess LogType = "success"
	LogError   LogType = "error"
)

type LogEntry struct {
	Timestamp string  `json:"timestamp"`
	Agent     string  `json:"agent"`
	Message   string  `json:"message"`
	Type      LogType `json:"type"`
}

// NewLogEntry stamps the entry with the local wall-clock time.
func NewLogEntry(agent, message string, typ LogType) LogEntry {
	return LogEntry{Timestamp: time.Now().Format("15:04:05"), Agent: agent, Message: message, Type: typ}
}

type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

type ChartSeries struct {
	Ticker string       `json:"ticker"`
	Data   []PricePoint `json:"data"`
}

type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Excerpt struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

type NewsResult struct {
	Summary  string    `json:"summary"`
	Sources  []Source  `json:"sources"`
	Excerpts []Excerpt `json:"excerpts,omitempty"`
}

type TechnicalResult struct {
	Ticker   string       `json:"ticker"`
	Price    *float64     `json:"price"`
	History  []PricePoint `json:"history"`
	Change1Y *float64     `json:"change_1y"`
}

type FundamentalResult struct {
	Ticker    string   `json:"ticker"`
	MarketCap *float64 `json:"market_cap"`
	PERatio   *float64 `json:"pe_ratio"`
	EPS       *float64 `json:"eps"`
	Sector    *string  `json:"sector"`
}

type KPIResult struct {
	Ticker      string   `json:"ticker"`
	LastPrice   *float64 `json:"last_price"`
	MarketCap   *float64 `json:"market_cap"`
	Price5yCAGR *float64 `json:"price_5y_cagr"`
}

// RunState is the mutable progress record of a plan.
type RunState struct {
	Approved   bool          `json:"approved"`
	Focus      string        `json:"focus"`
	Logs       []LogEntry    `json:"logs"`
	Done       bool          `json:"done"`
	Report     *string       `json:"report"`
	Charts     []ChartSeries `json:"charts,omitempty"`
	RetryCount int           `json:"retry_count"`
	Mode       string        `json:"mode,omitempty"`
}

// Clone returns a deep copy safe to hand to readers.
func (s RunState) Clone() RunState {
	out := s
	out.Logs = append([]LogEntry(nil), s.Logs...)
	if s.Report != nil {
		r := *s.Report
		out.Report = &r
	}
	if s.Charts != nil {
		out.Charts = make([]ChartSeries, len(s.Charts))
		for i, c := range s.Charts {
			out.Charts[i] = ChartSeries{Ticker: c.Ticker, Data: append([]PricePoint(nil), c.Data...)}
		}
	}
	return out
}
