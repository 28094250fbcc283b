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

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	FindByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

type announcementStaffResolver interface {
	FindActive(ctx context.Context) ([]models.Staff, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Staff, error)
	FindByID(ctx context.Context, id string) (*models.Staff, error)
}

type announcementDispatcher interface {
	DispatchAnnouncement(announcement *models.Announcement, recipients []models.Staff)
}

// CreateAnnouncementRequest holds payload for broadcasting announcements.
// StaffIDs is required when the audience is SPECIFIC and ignored otherwise.
type CreateAnnouncementRequest struct {
	Subject      string              `json:"subject" validate:"required,min=3,max=200"`
	Content      string              `json:"content" validate:"required"`
	AudienceType models.AudienceType `json:"audience_type" validate:"required,oneof=ALL SPECIFIC"`
	StaffIDs     []string            `json:"staff_ids" validate:"omitempty,dive,uuid"`
}

// AnnouncementService resolves the audience and hands delivery to the
// notification queue; the HTTP response never waits on SMTP.
type AnnouncementService struct {
	repo       announcementRepository
	staff      announcementStaffResolver
	dispatcher announcementDispatcher
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAnnouncementService creates an announcement service instance.
func NewAnnouncementService(repo announcementRepository, staff announcementStaffResolver, dispatcher announcementDispatcher, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, staff: staff, dispatcher: dispatcher, validator: validate, logger: logger}
}

// List returns paginated announcements.
func (s *AnnouncementService) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, *models.Pagination, error) {
	announcements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return announcements, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get loads one announcement with its delivery records.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	announcement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	return announcement, nil
}

// Create stores an announcement and dispatches it to the resolved audience.
func (s *AnnouncementService) Create(ctx context.Context, announcerID string, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	if req.AudienceType == models.AudienceSpecific && len(req.StaffIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a specific audience requires at least one staff id")
	}

	recipients, err := s.resolveAudience(ctx, req)
	if err != nil {
		return nil, err
	}

	announcement := &models.Announcement{
		AnnouncerID:  announcerID,
		Subject:      req.Subject,
		Content:      req.Content,
		AudienceType: req.AudienceType,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}

	if s.dispatcher != nil {
		s.dispatcher.DispatchAnnouncement(announcement, recipients)
	}
	return announcement, nil
}

// Delete removes an announcement and its delivery records.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	return nil
}

func (s *AnnouncementService) resolveAudience(ctx context.Context, req CreateAnnouncementRequest) ([]models.Staff, error) {
	if req.AudienceType == models.AudienceSpecific {
		recipients, err := s.staff.FindByIDs(ctx, req.StaffIDs)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve audience")
		}
		if len(recipients) != len(req.StaffIDs) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "one or more audience staff not found")
		}
		return recipients, nil
	}

	recipients, err := s.staff.FindActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve audience")
	}
	return recipients, nil
}
