package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
)

type voteRepository interface {
	FindByStaffAndIdea(ctx context.Context, staffID, ideaID string) (*models.Vote, error)
	Upsert(ctx context.Context, vote *models.Vote) error
	Delete(ctx context.Context, staffID, ideaID string) error
}

type voteIdeaResolver interface {
	FindByID(ctx context.Context, id string) (*models.Idea, error)
}

// CastVoteRequest holds payload for casting or flipping a vote.
type CastVoteRequest struct {
	IsThumbUp *bool `json:"is_thumb_up" validate:"required"`
}

// VoteService implements the three-state vote toggle: like, dislike, none.
// Casting the same direction twice is idempotent; the opposite direction
// flips; retracting removes the row.
type VoteService struct {
	repo      voteRepository
	ideas     voteIdeaResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVoteService creates a vote service instance.
func NewVoteService(repo voteRepository, ideas voteIdeaResolver, validate *validator.Validate, logger *zap.Logger) *VoteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoteService{repo: repo, ideas: ideas, validator: validate, logger: logger}
}

// Cast creates or flips the caller's vote and returns the resulting status.
func (s *VoteService) Cast(ctx context.Context, staffID, ideaID string, req CastVoteRequest) (models.LikeStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.LikeStatusNone, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vote payload")
	}

	if _, err := s.ideas.FindByID(ctx, ideaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LikeStatusNone, appErrors.Clone(appErrors.ErrNotFound, "idea not found")
		}
		return models.LikeStatusNone, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea")
	}

	vote := &models.Vote{StaffID: staffID, IdeaID: ideaID, IsThumbUp: *req.IsThumbUp}

	existing, err := s.repo.FindByStaffAndIdea(ctx, staffID, ideaID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.LikeStatusNone, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vote")
	}
	if existing != nil {
		// Reuse the row so the unique constraint never fires a second insert.
		vote.ID = existing.ID
		vote.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Upsert(ctx, vote); err != nil {
		return models.LikeStatusNone, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store vote")
	}

	if vote.IsThumbUp {
		return models.LikeStatusLike, nil
	}
	return models.LikeStatusDislike, nil
}

// Retract removes the caller's vote; retracting a missing vote is a no-op.
func (s *VoteService) Retract(ctx context.Context, staffID, ideaID string) (models.LikeStatus, error) {
	if _, err := s.ideas.FindByID(ctx, ideaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LikeStatusNone, appErrors.Clone(appErrors.ErrNotFound, "idea not found")
		}
		return models.LikeStatusNone, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea")
	}

	if err := s.repo.Delete(ctx, staffID, ideaID); err != nil {
		return models.LikeStatusNone, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to retract vote")
	}
	return models.LikeStatusNone, nil
}

// Status returns the caller's current vote on an idea.
func (s *VoteService) Status(ctx context.Context, staffID, ideaID string) (models.LikeStatus, error) {
	vote, err := s.repo.FindByStaffAndIdea(ctx, staffID, ideaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LikeStatusNone, nil
		}
		return models.LikeStatusNone, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vote")
	}
	if vote.IsThumbUp {
		return models.LikeStatusLike, nil
	}
	return models.LikeStatusDislike, nil
}
