package models

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestRunStateCloneIsDeep(t *testing.T) {
	report := "# IT"
	s := RunState{
		Logs:   []LogEntry{{Agent: "News Agent", Message: "Found 2 articles.", Type: LogSuccess}},
		Report: &report,
		Charts: []ChartSeries{{Ticker: "TCS.NS", Data: []PricePoint{{Date: "2025-01-01", Price: 1}}}},
	}
	c := s.Clone()
	c.Logs[0].Message = "changed"
	*c.Report = "changed"
	c.Charts[0].Data[0].Price = 99

	gt.Equal(t, s.Logs[0].Message, "Found 2 articles.")
	gt.Equal(t, *s.Report, "# IT")
	gt.Equal(t, s.Charts[0].Data[0].Price, 1.0)
}

func TestPlanPrimarySector(t *testing.T) {
	gt.Equal(t, Plan{Sectors: []string{"IT", "PHARMA"}}.PrimarySector(), "IT")
	gt.Equal(t, Plan{}.PrimarySector(), "")
}
