package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/innovex/ideahub-api/internal/service"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
	"github.com/innovex/ideahub-api/pkg/response"
)

// VoteHandler exposes vote endpoints nested under ideas.
type VoteHandler struct {
	votes *service.VoteService
}

// NewVoteHandler constructs VoteHandler.
func NewVoteHandler(votes *service.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// Cast godoc
// @Summary Cast or flip a vote on an idea
// @Tags Votes
// @Accept json
// @Produce json
// @Param id path string true "Idea ID"
// @Param payload body service.CastVoteRequest true "Vote payload"
// @Success 200 {object} response.Envelope
// @Router /ideas/{id}/votes [put]
func (h *VoteHandler) Cast(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	status, err := h.votes.Cast(c.Request.Context(), claims.StaffID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "vote recorded", gin.H{"like_status": status}, nil)
}

// Retract godoc
// @Summary Retract a vote on an idea
// @Tags Votes
// @Produce json
// @Param id path string true "Idea ID"
// @Success 200 {object} response.Envelope
// @Router /ideas/{id}/votes [delete]
func (h *VoteHandler) Retract(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	status, err := h.votes.Retract(c.Request.Context(), claims.StaffID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "vote retracted", gin.H{"like_status": status}, nil)
}

// Status godoc
// @Summary Get the caller's vote on an idea
// @Tags Votes
// @Produce json
// @Param id path string true "Idea ID"
// @Success 200 {object} response.Envelope
// @Router /ideas/{id}/votes [get]
func (h *VoteHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	status, err := h.votes.Status(c.Request.Context(), claims.StaffID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "vote status", gin.H{"like_status": status}, nil)
}
