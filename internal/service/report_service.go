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

type reportRepository interface {
	List(ctx context.Context, filter models.ReportFilter) ([]models.Report, int, error)
	FindByID(ctx context.Context, id string) (*models.Report, error)
	ExistsByStaffAndIdea(ctx context.Context, staffID, ideaID string) (bool, error)
	Create(ctx context.Context, report *models.Report) error
	Resolve(ctx context.Context, id string, approved bool, reviewerID string) error
	Delete(ctx context.Context, id string) error
}

type reportIdeaModerator interface {
	FindByID(ctx context.Context, id string) (*models.Idea, error)
	SetHidden(ctx context.Context, id string, hidden bool) error
}

// CreateReportRequest holds payload for flagging an idea.
type CreateReportRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

// ReportService implements the moderation lifecycle. A report starts
// pending; a moderator approves or rejects it once. Resolving a report
// never touches idea visibility; hiding the reported idea is a separate
// call and affects only that idea, never other ideas by the same author.
type ReportService struct {
	repo      reportRepository
	ideas     reportIdeaModerator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService creates a report service instance.
func NewReportService(repo reportRepository, ideas reportIdeaModerator, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, ideas: ideas, validator: validate, logger: logger}
}

// List returns paginated reports with their ideas attached.
func (s *ReportService) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, *models.Pagination, error) {
	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	for i := range reports {
		idea, err := s.ideas.FindByID(ctx, reports[i].IdeaID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reported idea")
		}
		reports[i].Idea = idea
	}
	return reports, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get loads one report with its idea.
func (s *ReportService) Get(ctx context.Context, id string) (*models.Report, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if idea, err := s.ideas.FindByID(ctx, report.IdeaID); err == nil {
		report.Idea = idea
	}
	return report, nil
}

// Create flags an idea for moderation. Each staff member may report an
// idea once.
func (s *ReportService) Create(ctx context.Context, ideaID, reporterID string, req CreateReportRequest) (*models.Report, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	idea, err := s.ideas.FindByID(ctx, ideaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "idea not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea")
	}
	if idea.AuthorID == reporterID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot report your own idea")
	}

	exists, err := s.repo.ExistsByStaffAndIdea(ctx, reporterID, ideaID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing report")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "idea already reported by this staff member")
	}

	report := &models.Report{IdeaID: ideaID, ReportedByID: reporterID, Reason: req.Reason}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report")
	}
	return report, nil
}

// Approve upholds a pending report, stamping the reviewer and time.
// The reported idea stays visible until Hide is called explicitly.
func (s *ReportService) Approve(ctx context.Context, id, reviewerID string) (*models.Report, error) {
	return s.resolve(ctx, id, reviewerID, true)
}

// Reject dismisses a pending report.
func (s *ReportService) Reject(ctx context.Context, id, reviewerID string) (*models.Report, error) {
	return s.resolve(ctx, id, reviewerID, false)
}

func (s *ReportService) resolve(ctx context.Context, id, reviewerID string, approved bool) (*models.Report, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if report.State() != models.ReportStatePending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "report is already resolved")
	}

	if err := s.repo.Resolve(ctx, id, approved, reviewerID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve report")
	}
	return s.Get(ctx, id)
}

// Delete removes a report. The linked idea keeps whatever visibility it
// currently has.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete report")
	}
	return nil
}

// Hide hides the idea linked to a report without changing the report's
// lifecycle state.
func (s *ReportService) Hide(ctx context.Context, id string) error {
	return s.setHiddenByReport(ctx, id, true)
}

// Unhide restores the idea linked to a report.
func (s *ReportService) Unhide(ctx context.Context, id string) error {
	return s.setHiddenByReport(ctx, id, false)
}

func (s *ReportService) setHiddenByReport(ctx context.Context, id string, hidden bool) error {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}

	if _, err := s.ideas.FindByID(ctx, report.IdeaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "reported idea no longer exists")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reported idea")
	}

	if err := s.ideas.SetHidden(ctx, report.IdeaID, hidden); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update idea visibility")
	}
	return nil
}
