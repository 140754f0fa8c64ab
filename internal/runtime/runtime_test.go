package runtime

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mohammad-safakhou/deepresearch/config"
)

func TestNewLoggerFansOutToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "deepresearch.log")
	logger, closeFn, err := NewLogger(config.GeneralConfig{LogLevel: "debug", LogFile: path}, &buf)
	gt.NoError(t, err)

	logger.Debug("plan created", "plan_id", "ab12cd34")
	gt.NoError(t, closeFn())

	gt.True(t, strings.Contains(buf.String(), "plan_id=ab12cd34"))
	b, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.True(t, strings.Contains(string(b), `"plan_id":"ab12cd34"`))
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(config.GeneralConfig{LogLevel: "warn"}, &buf)
	gt.NoError(t, err)
	logger.Info("hidden")
	gt.Equal(t, buf.Len(), 0)

	_, _, err = NewLogger(config.GeneralConfig{LogLevel: "loud"}, &buf)
	gt.Error(t, err)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.PlanCreated()
	m.RunFinished("graph", "success")
	m.RunFinished("graph", "success")
	m.UpstreamFailure("quote")
	m.CritiqueRetry()
	m.ObserveStep("news", 20*time.Millisecond)

	gt.Equal(t, testutil.ToFloat64(m.plansCreated), 1.0)
	gt.Equal(t, testutil.ToFloat64(m.runs.WithLabelValues("graph", "success")), 2.0)
	gt.Equal(t, testutil.ToFloat64(m.upstreamFailures.WithLabelValues("quote")), 1.0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	gt.True(t, strings.Contains(rec.Body.String(), "deepresearch_critique_retries_total 1"))
	gt.True(t, strings.Contains(rec.Body.String(), `deepresearch_step_duration_seconds_count{step="news"} 1`))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.PlanCreated()
	m.RunFinished("quick", "failure")
	m.ObserveStep("critique", time.Second)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	gt.Equal(t, rec.Code, 404)
}
