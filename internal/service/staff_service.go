package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error)
	FindByID(ctx context.Context, id string) (*models.Staff, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	CountActiveByRole(ctx context.Context, role models.StaffRole, departmentID, excludeID string) (int, error)
	Create(ctx context.Context, staff *models.Staff) error
	Update(ctx context.Context, staff *models.Staff) error
	Deactivate(ctx context.Context, id string) error
}

type staffTokenRevoker interface {
	RevokeAllForStaff(ctx context.Context, staffID string) error
}

// CreateStaffRequest holds payload for registering staff accounts.
type CreateStaffRequest struct {
	Email        string           `json:"email" validate:"required,email"`
	Name         string           `json:"name" validate:"required"`
	Role         models.StaffRole `json:"role" validate:"required,oneof=STAFF QA_COORDINATOR QA_MANAGER ADMIN"`
	DepartmentID *string          `json:"department_id"`
	Password     string           `json:"password" validate:"required,min=8"`
}

// UpdateStaffRequest holds payload for updating staff accounts.
type UpdateStaffRequest struct {
	Name         string           `json:"name" validate:"required"`
	Role         models.StaffRole `json:"role" validate:"required,oneof=STAFF QA_COORDINATOR QA_MANAGER ADMIN"`
	DepartmentID *string          `json:"department_id"`
	IsActive     *bool            `json:"is_active"`
}

// StaffService handles staff account management.
type StaffService struct {
	repo      staffRepository
	tokens    staffTokenRevoker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService creates a staff service instance.
func NewStaffService(repo staffRepository, tokens staffTokenRevoker, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StaffService{repo: repo, tokens: tokens, validator: validate, logger: logger}
}

// List returns paginated staff and pagination metadata.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, error) {
	staff, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	return staff, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a staff member by ID.
func (s *StaffService) Get(ctx context.Context, id string) (*models.Staff, error) {
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}
	return staff, nil
}

// Create registers a new staff account, enforcing the role occupancy rules.
func (s *StaffService) Create(ctx context.Context, req CreateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create staff payload")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
	}

	if err := s.checkRoleOccupancy(ctx, req.Role, req.DepartmentID, ""); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	staff := &models.Staff{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(req.Email),
		Name:         req.Name,
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
		IsActive:     true,
		PasswordHash: string(passwordHash),
	}
	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff")
	}
	return staff, nil
}

// Update modifies a staff account, re-checking occupancy when the role or
// department changes.
func (s *StaffService) Update(ctx context.Context, id string, req UpdateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update staff payload")
	}

	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}

	active := staff.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}
	if active {
		if err := s.checkRoleOccupancy(ctx, req.Role, req.DepartmentID, id); err != nil {
			return nil, err
		}
	}

	staff.Name = req.Name
	staff.Role = req.Role
	staff.DepartmentID = req.DepartmentID
	staff.IsActive = active

	if err := s.repo.Update(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff")
	}

	if !active && s.tokens != nil {
		if err := s.tokens.RevokeAllForStaff(ctx, id); err != nil {
			s.logger.Warn("failed to revoke tokens for deactivated staff", zap.Error(err))
		}
	}
	return staff, nil
}

// Deactivate disables a staff account and revokes its sessions.
func (s *StaffService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "staff not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate staff")
	}

	if s.tokens != nil {
		if err := s.tokens.RevokeAllForStaff(ctx, id); err != nil {
			s.logger.Warn("failed to revoke tokens for deactivated staff", zap.Error(err))
		}
	}
	return nil
}

// checkRoleOccupancy enforces the singleton roles: at most one active ADMIN
// and one active QA_MANAGER exist globally, and at most one active
// QA_COORDINATOR exists per department.
func (s *StaffService) checkRoleOccupancy(ctx context.Context, role models.StaffRole, departmentID *string, excludeID string) error {
	switch role {
	case models.RoleAdmin, models.RoleQAManager:
		count, err := s.repo.CountActiveByRole(ctx, role, "", excludeID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check role occupancy")
		}
		if count > 0 {
			return appErrors.Clone(appErrors.ErrRoleSingleton, "an active "+string(role)+" already exists")
		}
	case models.RoleQACoordinator:
		if departmentID == nil || *departmentID == "" {
			return appErrors.Clone(appErrors.ErrValidation, "coordinator requires a department")
		}
		count, err := s.repo.CountActiveByRole(ctx, role, *departmentID, excludeID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check role occupancy")
		}
		if count > 0 {
			return appErrors.Clone(appErrors.ErrRoleSingleton, "the department already has an active coordinator")
		}
	}
	return nil
}
