package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/innovex/ideahub-api/internal/models"
	"github.com/innovex/ideahub-api/internal/service"
	"github.com/innovex/ideahub-api/pkg/response"
)

// StatsHandler exposes idea statistics endpoints.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func statsFilterFromQuery(c *gin.Context) models.StatsFilter {
	filter := models.StatsFilter{
		AcademicInfoID: c.Query("academicYearId"),
		SemesterID:     c.Query("semesterId"),
		DepartmentID:   c.Query("departmentId"),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.StartDate = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.EndDate = &t
		}
	}
	filter.SkipCache = c.Query("fresh") == "true"
	return filter
}

// Report godoc
// @Summary Idea statistics report
// @Description Counters and percentage breakdowns for the filtered idea set
// @Tags Statistics
// @Produce json
// @Param academicYearId query string false "Filter by academic year"
// @Param semesterId query string false "Filter by semester"
// @Param departmentId query string false "Filter by department"
// @Param from query string false "Submitted on or after (YYYY-MM-DD)"
// @Param to query string false "Submitted on or before (YYYY-MM-DD)"
// @Param fresh query bool false "Bypass the cached report"
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Report(c *gin.Context) {
	stats, err := h.stats.Report(c.Request.Context(), statsFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "idea statistics", stats, nil)
}

// ReportPDF godoc
// @Summary Idea statistics report as PDF
// @Tags Statistics
// @Produce application/pdf
// @Param academicYearId query string false "Filter by academic year"
// @Param semesterId query string false "Filter by semester"
// @Param departmentId query string false "Filter by department"
// @Success 200 {file} binary
// @Router /stats/pdf [get]
func (h *StatsHandler) ReportPDF(c *gin.Context) {
	payload, err := h.stats.ReportPDF(c.Request.Context(), statsFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="idea-statistics.pdf"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", payload)
}
