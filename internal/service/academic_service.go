package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
)

type academicRepository interface {
	List(ctx context.Context, filter models.AcademicInfoFilter) ([]models.AcademicInfo, int, error)
	FindByIDWithSemesters(ctx context.Context, id string) (*models.AcademicInfo, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	CreateWithSemesters(ctx context.Context, info *models.AcademicInfo, semesters []models.Semester) error
	UpdateWithSemesters(ctx context.Context, info *models.AcademicInfo, semesters []models.Semester) error
	Delete(ctx context.Context, id string) error
	FindSemesterByID(ctx context.Context, id string) (*models.Semester, error)
	FindCurrentSemester(ctx context.Context, now time.Time) (*models.Semester, error)
	CountIdeas(ctx context.Context, academicInfoID string) (int, error)
}

// SemesterRequest describes one semester inside an academic term payload.
type SemesterRequest struct {
	ID               string    `json:"id"`
	Name             string    `json:"name" validate:"required"`
	StartDate        time.Time `json:"start_date" validate:"required"`
	ClosureDate      time.Time `json:"closure_date" validate:"required"`
	FinalClosureDate time.Time `json:"final_closure_date" validate:"required"`
}

// AcademicTermRequest describes payload for creating and updating academic
// years together with their two semesters.
type AcademicTermRequest struct {
	Name      string            `json:"name" validate:"required"`
	StartDate time.Time         `json:"start_date" validate:"required"`
	EndDate   time.Time         `json:"end_date" validate:"required"`
	Semesters []SemesterRequest `json:"semesters" validate:"required,len=2,dive"`
}

// AcademicService orchestrates academic year workflows: term validation,
// status derivation and the current semester lookup.
type AcademicService struct {
	repo      academicRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAcademicService creates a new academic service instance.
func NewAcademicService(repo academicRepository, validate *validator.Validate, logger *zap.Logger) *AcademicService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicService{repo: repo, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns paginated academic years with derived statuses.
func (s *AcademicService) List(ctx context.Context, filter models.AcademicInfoFilter) ([]models.AcademicInfo, *models.Pagination, error) {
	infos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}
	now := s.now()
	for i := range infos {
		s.deriveStatuses(&infos[i], now)
	}
	return infos, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns an academic year with its semesters and derived statuses.
func (s *AcademicService) Get(ctx context.Context, id string) (*models.AcademicInfo, error) {
	info, err := s.repo.FindByIDWithSemesters(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	s.deriveStatuses(info, s.now())
	return info, nil
}

// Create validates and stores a new academic year with its semesters.
// Nothing is written if any term rule fails.
func (s *AcademicService) Create(ctx context.Context, req AcademicTermRequest) (*models.AcademicInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	if err := s.validateTerm(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check academic year name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateName, "academic year name already exists")
	}

	info := &models.AcademicInfo{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	semesters := make([]models.Semester, len(req.Semesters))
	for i, sem := range req.Semesters {
		semesters[i] = models.Semester{
			Name:             sem.Name,
			StartDate:        sem.StartDate,
			ClosureDate:      sem.ClosureDate,
			FinalClosureDate: sem.FinalClosureDate,
		}
	}

	if err := s.repo.CreateWithSemesters(ctx, info, semesters); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic year")
	}
	s.deriveStatuses(info, s.now())
	return info, nil
}

// Update validates the full replacement payload before any row is touched;
// the write is transactional so a failing rule leaves the stored term intact.
func (s *AcademicService) Update(ctx context.Context, id string, req AcademicTermRequest) (*models.AcademicInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	if err := s.validateTerm(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByIDWithSemesters(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check academic year name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateName, "academic year name already exists")
	}

	existing.Name = req.Name
	existing.StartDate = req.StartDate
	existing.EndDate = req.EndDate

	semesters := make([]models.Semester, len(req.Semesters))
	for i, sem := range req.Semesters {
		semesters[i] = models.Semester{
			ID:               sem.ID,
			Name:             sem.Name,
			StartDate:        sem.StartDate,
			ClosureDate:      sem.ClosureDate,
			FinalClosureDate: sem.FinalClosureDate,
			AcademicInfoID:   id,
		}
	}

	if err := s.repo.UpdateWithSemesters(ctx, existing, semesters); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update academic year")
	}
	s.deriveStatuses(existing, s.now())
	return existing, nil
}

// Delete removes an academic year that has no ideas attached to its
// semesters.
func (s *AcademicService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByIDWithSemesters(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}

	count, err := s.repo.CountIdeas(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count academic year ideas")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "academic year still has ideas attached")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete academic year")
	}
	return nil
}

// GetSemester returns one semester with its derived status.
func (s *AcademicService) GetSemester(ctx context.Context, id string) (*models.Semester, error) {
	semester, err := s.repo.FindSemesterByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	semester.Status = models.StatusForRange(s.now(), semester.StartDate, semester.FinalClosureDate)
	return semester, nil
}

// CurrentSemester resolves the semester whose span covers the current time.
// Idea submission depends on this; no ongoing semester means no submissions.
func (s *AcademicService) CurrentSemester(ctx context.Context) (*models.Semester, error) {
	now := s.now()
	semester, err := s.repo.FindCurrentSemester(ctx, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no ongoing semester")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve current semester")
	}
	semester.Status = models.StatusForRange(now, semester.StartDate, semester.FinalClosureDate)
	return semester, nil
}

// validateTerm enforces the academic term rules over a full payload:
// exactly two semesters, ordered closure dates inside each semester,
// containment within the year span, and no overlap between the two
// semesters. Date intervals are closed, so touching boundaries overlap.
func (s *AcademicService) validateTerm(req AcademicTermRequest) error {
	if !req.StartDate.Before(req.EndDate) {
		return appErrors.Clone(appErrors.ErrValidation, "academic year start date must precede end date")
	}
	if len(req.Semesters) != 2 {
		return appErrors.Clone(appErrors.ErrValidation, "academic year requires exactly two semesters")
	}

	for i, sem := range req.Semesters {
		if sem.ClosureDate.Before(sem.StartDate) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("semester %d closure date precedes its start date", i+1))
		}
		if sem.FinalClosureDate.Before(sem.ClosureDate) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("semester %d final closure date precedes its closure date", i+1))
		}
		if sem.StartDate.Before(req.StartDate) || sem.FinalClosureDate.After(req.EndDate) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("semester %d falls outside the academic year", i+1))
		}
	}

	first, second := req.Semesters[0], req.Semesters[1]
	if second.StartDate.Before(first.StartDate) {
		first, second = second, first
	}
	if !first.FinalClosureDate.Before(second.StartDate) {
		return appErrors.Clone(appErrors.ErrValidation, "semesters must not overlap")
	}

	return nil
}

func (s *AcademicService) deriveStatuses(info *models.AcademicInfo, now time.Time) {
	info.Status = models.StatusForRange(now, info.StartDate, info.EndDate)
	for i := range info.Semesters {
		sem := &info.Semesters[i]
		sem.Status = models.StatusForRange(now, sem.StartDate, sem.FinalClosureDate)
	}
}
