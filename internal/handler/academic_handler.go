package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/innovex/ideahub-api/internal/models"
	"github.com/innovex/ideahub-api/internal/service"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
	"github.com/innovex/ideahub-api/pkg/response"
)

// AcademicHandler exposes academic year and semester endpoints.
type AcademicHandler struct {
	academics *service.AcademicService
}

// NewAcademicHandler constructs AcademicHandler.
func NewAcademicHandler(academics *service.AcademicService) *AcademicHandler {
	return &AcademicHandler{academics: academics}
}

// List godoc
// @Summary List academic years
// @Tags Academic
// @Produce json
// @Param name query string false "Filter by name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /academic-years [get]
func (h *AcademicHandler) List(c *gin.Context) {
	var filter models.AcademicInfoFilter
	filter.Name = strings.TrimSpace(c.Query("name"))
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	years, pagination, err := h.academics.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "academic years", years, pagination)
}

// Get godoc
// @Summary Get academic year detail
// @Tags Academic
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id} [get]
func (h *AcademicHandler) Get(c *gin.Context) {
	year, err := h.academics.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "academic year", year, nil)
}

// Create godoc
// @Summary Create academic year with semesters
// @Tags Academic
// @Accept json
// @Produce json
// @Param payload body service.AcademicTermRequest true "Academic year payload"
// @Success 201 {object} response.Envelope
// @Router /academic-years [post]
func (h *AcademicHandler) Create(c *gin.Context) {
	var req service.AcademicTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.academics.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "academic year created", year)
}

// Update godoc
// @Summary Update academic year with semesters
// @Tags Academic
// @Accept json
// @Produce json
// @Param id path string true "Academic year ID"
// @Param payload body service.AcademicTermRequest true "Academic year payload"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id} [put]
func (h *AcademicHandler) Update(c *gin.Context) {
	var req service.AcademicTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.academics.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "academic year updated", year, nil)
}

// Delete godoc
// @Summary Delete academic year
// @Tags Academic
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 204
// @Router /academic-years/{id} [delete]
func (h *AcademicHandler) Delete(c *gin.Context) {
	if err := h.academics.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetSemester godoc
// @Summary Get semester detail
// @Tags Academic
// @Produce json
// @Param id path string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /semesters/{id} [get]
func (h *AcademicHandler) GetSemester(c *gin.Context) {
	semester, err := h.academics.GetSemester(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "semester", semester, nil)
}

// CurrentSemester godoc
// @Summary Get the ongoing semester
// @Tags Academic
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /semesters/current [get]
func (h *AcademicHandler) CurrentSemester(c *gin.Context) {
	semester, err := h.academics.CurrentSemester(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "current semester", semester, nil)
}
