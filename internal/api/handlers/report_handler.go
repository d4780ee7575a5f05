package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/api/middleware"
	"github.com/andresuchdata/salesperf/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service *service.ReportService
	now     func() time.Time
}

func NewReportHandler(service *service.ReportService) *ReportHandler {
	return &ReportHandler{service: service, now: time.Now}
}

// GetReport evaluates every visible KPI for the requested window.
func (h *ReportHandler) GetReport(c *gin.Context) {
	window, err := parseWindow(c, h.now())
	if err != nil {
		respondError(c, err, "invalid window")
		return
	}

	report, err := h.service.RunReport(c.Request.Context(), window, middleware.CallerScope(c))
	if err != nil {
		respondError(c, err, "failed to run report")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetKPIResult(c *gin.Context) {
	window, err := parseWindow(c, h.now())
	if err != nil {
		respondError(c, err, "invalid window")
		return
	}

	result, err := h.service.RunKPI(c.Request.Context(), c.Param("shortKey"), window, middleware.CallerScope(c))
	if err != nil {
		respondError(c, err, "failed to evaluate kpi")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDrilldown resolves ?group=... (repeatable, one per reported key) to its contributions.
func (h *ReportHandler) GetDrilldown(c *gin.Context) {
	window, err := parseWindow(c, h.now())
	if err != nil {
		respondError(c, err, "invalid window")
		return
	}

	groups := groupValues(c)
	items, err := h.service.Drilldown(c.Request.Context(), c.Param("shortKey"), window, middleware.CallerScope(c), groups...)
	if err != nil {
		respondError(c, err, "failed to fetch drilldown")
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": groups, "items": items})
}

func (h *ReportHandler) GetDrilldownLines(c *gin.Context) {
	window, err := parseWindow(c, h.now())
	if err != nil {
		respondError(c, err, "invalid window")
		return
	}

	item := strings.TrimSpace(c.Query("item"))
	if item == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item parameter is required"})
		return
	}

	lines, err := h.service.DrilldownLines(c.Request.Context(), c.Param("shortKey"), window, middleware.CallerScope(c), groupValues(c), item)
	if err != nil {
		respondError(c, err, "failed to fetch drilldown lines")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": lines, "total": len(lines)})
}

func groupValues(c *gin.Context) []string {
	var out []string
	for _, v := range c.QueryArray("group") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
