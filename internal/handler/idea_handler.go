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

// IdeaHandler exposes idea endpoints.
type IdeaHandler struct {
	ideas *service.IdeaService
}

// NewIdeaHandler constructs IdeaHandler.
func NewIdeaHandler(ideas *service.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideas: ideas}
}

// List godoc
// @Summary List ideas
// @Tags Ideas
// @Produce json
// @Param title query string false "Search by title"
// @Param semesterId query string false "Filter by semester"
// @Param authorId query string false "Filter by author"
// @Param categoryId query string false "Filter by category"
// @Param hidden query bool false "Filter by hidden state (moderators only)"
// @Param sort query string false "Sort key: title, created_at, updated_at, voteResult, totalLikes, totalDisLikes, totalComments, totalViewCount"
// @Param order query string false "Sort order: asc or desc"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /ideas [get]
func (h *IdeaHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.IdeaFilter
	filter.Title = strings.TrimSpace(c.Query("title"))
	filter.SemesterID = c.Query("semesterId")
	filter.AuthorID = c.Query("authorId")
	filter.CategoryID = c.Query("categoryId")
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	// Hidden ideas are visible to moderators only.
	if isModerator(claims) {
		filter.IsHidden = boolQuery(c, "hidden")
	} else {
		visible := false
		filter.IsHidden = &visible
	}

	ideas, pagination, err := h.ideas.List(c.Request.Context(), filter, claims.StaffID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "ideas", ideas, pagination)
}

// Get godoc
// @Summary Get idea detail
// @Description Returns the idea with engagement counters and records a view
// @Tags Ideas
// @Produce json
// @Param id path string true "Idea ID"
// @Success 200 {object} response.Envelope
// @Router /ideas/{id} [get]
func (h *IdeaHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	idea, err := h.ideas.Get(c.Request.Context(), c.Param("id"), claims.StaffID, isModerator(claims))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "idea", idea, nil)
}

// Create godoc
// @Summary Submit an idea
// @Tags Ideas
// @Accept json
// @Produce json
// @Param payload body service.CreateIdeaRequest true "Idea payload"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /ideas [post]
func (h *IdeaHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	idea, err := h.ideas.Create(c.Request.Context(), claims.StaffID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "idea submitted", idea)
}

// Update godoc
// @Summary Update an idea
// @Tags Ideas
// @Accept json
// @Produce json
// @Param id path string true "Idea ID"
// @Param payload body service.UpdateIdeaRequest true "Idea payload"
// @Success 200 {object} response.Envelope
// @Router /ideas/{id} [put]
func (h *IdeaHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	idea, err := h.ideas.Update(c.Request.Context(), c.Param("id"), claims.StaffID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "idea updated", idea, nil)
}

// Delete godoc
// @Summary Delete an idea
// @Tags Ideas
// @Produce json
// @Param id path string true "Idea ID"
// @Success 204
// @Router /ideas/{id} [delete]
func (h *IdeaHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.ideas.Delete(c.Request.Context(), c.Param("id"), claims.StaffID, isModerator(claims)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddDocument godoc
// @Summary Attach a document to an idea
// @Tags Ideas
// @Accept json
// @Produce json
// @Param id path string true "Idea ID"
// @Param payload body service.AddIdeaDocumentRequest true "Document payload"
// @Success 201 {object} response.Envelope
// @Router /ideas/{id}/documents [post]
func (h *IdeaHandler) AddDocument(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.AddIdeaDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	document, err := h.ideas.AddDocument(c.Request.Context(), c.Param("id"), claims.StaffID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "document attached", document)
}
