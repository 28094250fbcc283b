package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
)

type mockStaffRepo struct {
	staff map[string]*models.Staff
}

func (m *mockStaffRepo) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	var out []models.Staff
	for _, s := range m.staff {
		if filter.Role != nil && s.Role != *filter.Role {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockStaffRepo) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	if s, ok := m.staff[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStaffRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for _, s := range m.staff {
		if s.Email == email && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStaffRepo) CountActiveByRole(ctx context.Context, role models.StaffRole, departmentID, excludeID string) (int, error) {
	count := 0
	for _, s := range m.staff {
		if !s.IsActive || s.Role != role || s.ID == excludeID {
			continue
		}
		if departmentID != "" && (s.DepartmentID == nil || *s.DepartmentID != departmentID) {
			continue
		}
		count++
	}
	return count, nil
}

func (m *mockStaffRepo) Create(ctx context.Context, staff *models.Staff) error {
	if m.staff == nil {
		m.staff = make(map[string]*models.Staff)
	}
	m.staff[staff.ID] = staff
	return nil
}

func (m *mockStaffRepo) Update(ctx context.Context, staff *models.Staff) error {
	m.staff[staff.ID] = staff
	return nil
}

func (m *mockStaffRepo) Deactivate(ctx context.Context, id string) error {
	s, ok := m.staff[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.IsActive = false
	return nil
}

type mockTokenRevoker struct {
	revoked []string
}

func (m *mockTokenRevoker) RevokeAllForStaff(ctx context.Context, staffID string) error {
	m.revoked = append(m.revoked, staffID)
	return nil
}

func strPtr(s string) *string { return &s }

func TestStaffServiceCreateHashesPassword(t *testing.T) {
	repo := &mockStaffRepo{}
	svc := NewStaffService(repo, &mockTokenRevoker{}, nil, nil)

	staff, err := svc.Create(context.Background(), CreateStaffRequest{
		Email:    "Alice@Example.com",
		Name:     "Alice",
		Role:     models.RoleStaff,
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", staff.Email)
	assert.True(t, staff.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte("correct horse")))
}

func TestStaffServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockStaffRepo{staff: map[string]*models.Staff{
		"s1": {ID: "s1", Email: "alice@example.com", IsActive: true, Role: models.RoleStaff},
	}}
	svc := NewStaffService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateStaffRequest{
		Email: "alice@example.com", Name: "Alice", Role: models.RoleStaff, Password: "correct horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStaffServiceSingletonRoles(t *testing.T) {
	repo := &mockStaffRepo{staff: map[string]*models.Staff{
		"admin":   {ID: "admin", Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true},
		"manager": {ID: "manager", Email: "manager@example.com", Role: models.RoleQAManager, IsActive: true},
	}}
	svc := NewStaffService(repo, nil, nil, nil)
	ctx := context.Background()

	for _, role := range []models.StaffRole{models.RoleAdmin, models.RoleQAManager} {
		_, err := svc.Create(ctx, CreateStaffRequest{
			Email: "second@example.com", Name: "Second", Role: role, Password: "correct horse",
		})
		require.Error(t, err, "second active %s must be rejected", role)
		assert.Equal(t, appErrors.ErrRoleSingleton.Code, appErrors.FromError(err).Code)
	}
}

func TestStaffServiceCoordinatorPerDepartment(t *testing.T) {
	repo := &mockStaffRepo{staff: map[string]*models.Staff{
		"coord": {ID: "coord", Email: "coord@example.com", Role: models.RoleQACoordinator, DepartmentID: strPtr("dept1"), IsActive: true},
	}}
	svc := NewStaffService(repo, nil, nil, nil)
	ctx := context.Background()

	// Same department already has an active coordinator.
	_, err := svc.Create(ctx, CreateStaffRequest{
		Email: "new@example.com", Name: "New", Role: models.RoleQACoordinator,
		DepartmentID: strPtr("dept1"), Password: "correct horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRoleSingleton.Code, appErrors.FromError(err).Code)

	// A different department is fine.
	_, err = svc.Create(ctx, CreateStaffRequest{
		Email: "new@example.com", Name: "New", Role: models.RoleQACoordinator,
		DepartmentID: strPtr("dept2"), Password: "correct horse",
	})
	require.NoError(t, err)

	// A coordinator without a department is invalid.
	_, err = svc.Create(ctx, CreateStaffRequest{
		Email: "third@example.com", Name: "Third", Role: models.RoleQACoordinator, Password: "correct horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStaffServiceUpdateReassignsVacatedRole(t *testing.T) {
	repo := &mockStaffRepo{staff: map[string]*models.Staff{
		"admin": {ID: "admin", Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true},
		"staff": {ID: "staff", Email: "staff@example.com", Role: models.RoleStaff, IsActive: true},
	}}
	svc := NewStaffService(repo, &mockTokenRevoker{}, nil, nil)
	ctx := context.Background()

	// Demote the admin; the slot opens up.
	inactive := false
	_, err := svc.Update(ctx, "admin", UpdateStaffRequest{Name: "Former Admin", Role: models.RoleAdmin, IsActive: &inactive})
	require.NoError(t, err)

	promoted, err := svc.Update(ctx, "staff", UpdateStaffRequest{Name: "New Admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
}

func TestStaffServiceUpdateOccupancyExcludesSelf(t *testing.T) {
	repo := &mockStaffRepo{staff: map[string]*models.Staff{
		"admin": {ID: "admin", Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true},
	}}
	svc := NewStaffService(repo, nil, nil, nil)

	// Renaming the current admin must not trip the singleton check.
	_, err := svc.Update(context.Background(), "admin", UpdateStaffRequest{Name: "Renamed", Role: models.RoleAdmin})
	require.NoError(t, err)
}

func TestStaffServiceDeactivateRevokesTokens(t *testing.T) {
	repo := &mockStaffRepo{staff: map[string]*models.Staff{
		"s1": {ID: "s1", Email: "s1@example.com", Role: models.RoleStaff, IsActive: true},
	}}
	tokens := &mockTokenRevoker{}
	svc := NewStaffService(repo, tokens, nil, nil)

	require.NoError(t, svc.Deactivate(context.Background(), "s1"))
	assert.False(t, repo.staff["s1"].IsActive)
	assert.Equal(t, []string{"s1"}, tokens.revoked)
}

func TestStaffServiceDeactivateMissing(t *testing.T) {
	svc := NewStaffService(&mockStaffRepo{}, nil, nil, nil)

	err := svc.Deactivate(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
