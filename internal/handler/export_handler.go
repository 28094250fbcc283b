package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/innovex/ideahub-api/internal/service"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
	"github.com/innovex/ideahub-api/pkg/response"
)

// ExportHandler exposes idea export endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Workbook godoc
// @Summary Export semester ideas as a spreadsheet
// @Tags Exports
// @Produce json
// @Param semesterId path string true "Semester ID"
// @Success 201 {object} response.Envelope
// @Router /exports/semesters/{semesterId}/workbook [post]
func (h *ExportHandler) Workbook(c *gin.Context) {
	result, err := h.exports.GenerateWorkbook(c.Request.Context(), c.Param("semesterId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "export generated", result)
}

// Archive godoc
// @Summary Export semester ideas and document manifest as a zip archive
// @Tags Exports
// @Produce json
// @Param semesterId path string true "Semester ID"
// @Success 201 {object} response.Envelope
// @Router /exports/semesters/{semesterId}/archive [post]
func (h *ExportHandler) Archive(c *gin.Context) {
	result, err := h.exports.GenerateArchive(c.Request.Context(), c.Param("semesterId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "export generated", result)
}

// AcademicWorkbook godoc
// @Summary Export an academic year's ideas, one worksheet per semester
// @Tags Exports
// @Produce json
// @Param academicYearId path string true "Academic year ID"
// @Success 201 {object} response.Envelope
// @Router /exports/academic-years/{academicYearId}/workbook [post]
func (h *ExportHandler) AcademicWorkbook(c *gin.Context) {
	result, err := h.exports.GenerateAcademicWorkbook(c.Request.Context(), c.Param("academicYearId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "export generated", result)
}

// AcademicArchive godoc
// @Summary Export an academic year's workbook and document manifests as a zip archive
// @Tags Exports
// @Produce json
// @Param academicYearId path string true "Academic year ID"
// @Success 201 {object} response.Envelope
// @Router /exports/academic-years/{academicYearId}/archive [post]
func (h *ExportHandler) AcademicArchive(c *gin.Context) {
	result, err := h.exports.GenerateAcademicArchive(c.Request.Context(), c.Param("academicYearId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "export generated", result)
}

// Download godoc
// @Summary Download a generated export by signed token
// @Tags Exports
// @Produce application/octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	_, relPath, _, err := h.exports.ParseToken(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token"))
		return
	}

	file, err := h.exports.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export no longer available"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(relPath)))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", file, nil)
}
