package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
)

type commentRepository interface {
	List(ctx context.Context, filter models.CommentFilter) ([]models.Comment, int, error)
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id string) error
}

type commentIdeaResolver interface {
	FindByID(ctx context.Context, id string) (*models.Idea, error)
}

type commentSemesterResolver interface {
	FindSemesterByID(ctx context.Context, id string) (*models.Semester, error)
}

type commentStaffResolver interface {
	FindByID(ctx context.Context, id string) (*models.Staff, error)
}

type commentNotifier interface {
	NotifyCommentAdded(ideaAuthor *models.Staff, commenter *models.Staff, idea *models.Idea, comment *models.Comment)
}

// CommentRequest holds payload for creating and editing comments.
type CommentRequest struct {
	Content     string `json:"content" validate:"required,min=1,max=2000"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// CommentService orchestrates comment workflows against the semester's
// final closure window.
type CommentService struct {
	repo      commentRepository
	ideas     commentIdeaResolver
	semesters commentSemesterResolver
	staff     commentStaffResolver
	notifier  commentNotifier
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCommentService creates a comment service instance.
func NewCommentService(
	repo commentRepository,
	ideas commentIdeaResolver,
	semesters commentSemesterResolver,
	staff commentStaffResolver,
	notifier commentNotifier,
	validate *validator.Validate,
	logger *zap.Logger,
) *CommentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{
		repo:      repo,
		ideas:     ideas,
		semesters: semesters,
		staff:     staff,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns paginated comments for an idea.
func (s *CommentService) List(ctx context.Context, filter models.CommentFilter) ([]models.Comment, *models.Pagination, error) {
	if filter.IdeaID != "" {
		if _, err := s.ideas.FindByID(ctx, filter.IdeaID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "idea not found")
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea")
		}
	}

	comments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	return comments, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Create adds a comment to an idea. Comments close at the semester's final
// closure date, later than the idea submission deadline.
func (s *CommentService) Create(ctx context.Context, ideaID, authorID string, req CommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	idea, err := s.ideas.FindByID(ctx, ideaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "idea not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea")
	}

	semester, err := s.semesters.FindSemesterByID(ctx, idea.SemesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea semester")
	}
	if s.now().After(semester.FinalClosureDate) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "commenting is closed for this semester")
	}

	comment := &models.Comment{
		IdeaID:      ideaID,
		AuthorID:    authorID,
		Content:     req.Content,
		IsAnonymous: req.IsAnonymous,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}

	s.notifyIdeaAuthor(ctx, idea, comment)
	return comment, nil
}

// Update edits a comment; only the comment author may change it.
func (s *CommentService) Update(ctx context.Context, id, actorID string, req CommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "comment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
	}
	if comment.AuthorID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author can edit a comment")
	}

	comment.Content = req.Content
	comment.IsAnonymous = req.IsAnonymous
	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update comment")
	}
	return comment, nil
}

// Delete removes a comment by its author or a moderator.
func (s *CommentService) Delete(ctx context.Context, id, actorID string, isModerator bool) error {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "comment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
	}
	if comment.AuthorID != actorID && !isModerator {
		return appErrors.Clone(appErrors.ErrForbidden, "not allowed to delete this comment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete comment")
	}
	return nil
}

func (s *CommentService) notifyIdeaAuthor(ctx context.Context, idea *models.Idea, comment *models.Comment) {
	if s.notifier == nil {
		return
	}
	ideaAuthor, err := s.staff.FindByID(ctx, idea.AuthorID)
	if err != nil {
		s.logger.Warn("failed to load idea author for notification", zap.Error(err))
		return
	}
	commenter, err := s.staff.FindByID(ctx, comment.AuthorID)
	if err != nil {
		s.logger.Warn("failed to load commenter for notification", zap.Error(err))
		return
	}
	s.notifier.NotifyCommentAdded(ideaAuthor, commenter, idea, comment)
}
