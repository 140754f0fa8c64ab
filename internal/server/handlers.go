package server

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/deepresearch/internal/pipeline"
	"github.com/mohammad-safakhou/deepresearch/internal/report"
	"github.com/mohammad-safakhou/deepresearch/models"
)

//go:embed dashboard/index.html
var dashboardHTML []byte

var errReportNotReady = errors.New("report not ready; run first")

type planRequest struct {
	Query  string `json:"query"`
	Sector string `json:"sector"`
}

type approveRequest struct {
	PlanID string `json:"plan_id"`
	Focus  string `json:"focus"`
}

type runRequest struct {
	PlanID string `json:"plan_id"`
	Mode   string `json:"mode"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type logsResponse struct {
	Logs   []models.LogEntry    `json:"logs"`
	Done   bool                 `json:"done"`
	Charts []models.ChartSeries `json:"charts,omitempty"`
}

type reportResponse struct {
	Report string `json:"report"`
}

func (s *Server) createPlan(c echo.Context) error {
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Sector) == "" {
		req.Sector = "auto"
	}
	plan := s.Store.Create(req.Query, s.Planner.MakePlan(req.Query, req.Sector))
	s.Metrics.PlanCreated()
	s.Logger.Info("plan created", "plan_id", plan.PlanID, "sectors", plan.Sectors)
	return c.JSON(http.StatusOK, plan)
}

func (s *Server) getPlan(c echo.Context) error {
	plan, err := s.Store.Plan(c.Param("id"))
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (s *Server) approve(c echo.Context) error {
	var req approveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.Runner.Approve(req.PlanID, req.Focus); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "approved"})
}

func (s *Server) run(c echo.Context) error {
	var req runRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	mode, err := pipeline.ParseMode(req.Mode)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Runner.Run(req.PlanID, mode); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "started"})
}

func (s *Server) logs(c echo.Context) error {
	e, err := s.Store.Get(c.Param("id"))
	if err != nil {
		return notFound(err)
	}
	st := e.Snapshot()
	return c.JSON(http.StatusOK, logsResponse{Logs: st.Logs, Done: st.Done, Charts: st.Charts})
}

func (s *Server) report(c echo.Context) error {
	md, err := s.readyReport(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reportResponse{Report: md})
}

func (s *Server) reportHTML(c echo.Context) error {
	id := c.Param("id")
	md, err := s.readyReport(id)
	if err != nil {
		return err
	}
	page, err := report.RenderPage(reportTitle(id), md)
	if err != nil {
		return err
	}
	return c.HTML(http.StatusOK, page)
}

func (s *Server) reportPDF(c echo.Context) error {
	if s.PDF == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "pdf export disabled")
	}
	id := c.Param("id")
	md, err := s.readyReport(id)
	if err != nil {
		return err
	}
	raw, err := s.PDF.Export(c.Request().Context(), reportTitle(id), md)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "pdf export failed").SetInternal(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "research-report-"+id+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", raw)
}

func (s *Server) dashboard(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, dashboardHTML)
}

// readyReport returns the Markdown report, or a 404 when the plan is unknown
// or has not produced a report yet.
func (s *Server) readyReport(id string) (string, error) {
	e, err := s.Store.Get(id)
	if err != nil {
		return "", notFound(err)
	}
	st := e.Snapshot()
	if st.Report == nil {
		return "", notFound(errReportNotReady)
	}
	return *st.Report, nil
}

func reportTitle(id string) string { return "Research report " + id }

func notFound(err error) error {
	return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
}

