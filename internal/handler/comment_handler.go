package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/innovex/ideahub-api/internal/models"
	"github.com/innovex/ideahub-api/internal/service"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
	"github.com/innovex/ideahub-api/pkg/response"
)

// CommentHandler exposes comment endpoints nested under ideas.
type CommentHandler struct {
	comments *service.CommentService
}

// NewCommentHandler constructs CommentHandler.
func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// List godoc
// @Summary List comments on an idea
// @Tags Comments
// @Produce json
// @Param id path string true "Idea ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /ideas/{id}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	var filter models.CommentFilter
	filter.IdeaID = c.Param("id")
	filter.AuthorID = c.Query("authorId")
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	comments, pagination, err := h.comments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "comments", comments, pagination)
}

// Create godoc
// @Summary Comment on an idea
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Idea ID"
// @Param payload body service.CommentRequest true "Comment payload"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /ideas/{id}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), c.Param("id"), claims.StaffID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "comment added", comment)
}

// Update godoc
// @Summary Edit a comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param commentId path string true "Comment ID"
// @Param payload body service.CommentRequest true "Comment payload"
// @Success 200 {object} response.Envelope
// @Router /comments/{commentId} [put]
func (h *CommentHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), c.Param("commentId"), claims.StaffID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "comment updated", comment, nil)
}

// Delete godoc
// @Summary Delete a comment
// @Tags Comments
// @Produce json
// @Param commentId path string true "Comment ID"
// @Success 204
// @Router /comments/{commentId} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.comments.Delete(c.Request.Context(), c.Param("commentId"), claims.StaffID, isModerator(claims)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
