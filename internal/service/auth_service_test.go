package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
)

type mockAuthStaffRepo struct {
	staff     map[string]*models.Staff
	passwords map[string]string
	lastLogin map[string]time.Time
}

func (m *mockAuthStaffRepo) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	for _, s := range m.staff {
		if s.Email == email {
			copied := *s
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthStaffRepo) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	if s, ok := m.staff[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthStaffRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if m.lastLogin == nil {
		m.lastLogin = make(map[string]time.Time)
	}
	m.lastLogin[id] = ts
	return nil
}

func (m *mockAuthStaffRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.passwords == nil {
		m.passwords = make(map[string]string)
	}
	m.passwords[id] = passwordHash
	m.staff[id].PasswordHash = passwordHash
	return nil
}

type mockAuthTokenRepo struct {
	tokens       map[string]*models.RefreshToken
	revokedStaff []string
}

func (m *mockAuthTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	if m.tokens == nil {
		m.tokens = make(map[string]*models.RefreshToken)
	}
	m.tokens[token.ID] = token
	return nil
}

func (m *mockAuthTokenRepo) FindByToken(ctx context.Context, value string) (*models.RefreshToken, error) {
	for _, t := range m.tokens {
		if t.Token == value {
			copied := *t
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthTokenRepo) Revoke(ctx context.Context, id string) error {
	t, ok := m.tokens[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now().UTC()
	t.Revoked = true
	t.RevokedAt = &now
	return nil
}

func (m *mockAuthTokenRepo) RevokeAllForStaff(ctx context.Context, staffID string) error {
	m.revokedStaff = append(m.revokedStaff, staffID)
	for _, t := range m.tokens {
		if t.StaffID == staffID {
			t.Revoked = true
		}
	}
	return nil
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthServiceForTest(t *testing.T, tokens *mockAuthTokenRepo) (*AuthService, *mockAuthStaffRepo) {
	staff := &mockAuthStaffRepo{staff: map[string]*models.Staff{
		"staff1": {
			ID: "staff1", Email: "alice@example.com", Name: "Alice",
			Role: models.RoleStaff, IsActive: true,
			PasswordHash: hashFor(t, "correct horse"),
		},
		"inactive": {
			ID: "inactive", Email: "bob@example.com", IsActive: false,
			PasswordHash: hashFor(t, "correct horse"),
		},
	}}
	svc := NewAuthService(staff, tokens, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "ideahub-api",
	})
	return svc, staff
}

func TestAuthServiceLogin(t *testing.T) {
	tokens := &mockAuthTokenRepo{}
	svc, staff := newAuthServiceForTest(t, tokens)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "alice@example.com", Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "staff1", resp.Staff.ID)
	assert.Len(t, tokens.tokens, 1)
	assert.Contains(t, staff.lastLogin, "staff1")

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "staff1", claims.StaffID)
	assert.Equal(t, models.RoleStaff, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthServiceForTest(t, &mockAuthTokenRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "alice@example.com", Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	// Unknown email yields the same error; no account enumeration.
	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email: "ghost@example.com", Password: "correct horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	svc, _ := newAuthServiceForTest(t, &mockAuthTokenRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "bob@example.com", Password: "correct horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	tokens := &mockAuthTokenRepo{}
	svc, _ := newAuthServiceForTest(t, tokens)
	ctx := context.Background()

	login, err := svc.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The presented token is burned; replaying it fails.
	_, err = svc.RefreshToken(ctx, models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshExpiredToken(t *testing.T) {
	tokens := &mockAuthTokenRepo{tokens: map[string]*models.RefreshToken{
		"t1": {ID: "t1", StaffID: "staff1", Token: "stale", ExpiresAt: time.Now().UTC().Add(-time.Hour)},
	}}
	svc, _ := newAuthServiceForTest(t, tokens)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogout(t *testing.T) {
	tokens := &mockAuthTokenRepo{}
	svc, _ := newAuthServiceForTest(t, tokens)
	ctx := context.Background()

	login, err := svc.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	// Another staff member cannot revoke someone else's session.
	err = svc.Logout(ctx, login.RefreshToken, "intruder")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken, "staff1"))
	_, err = svc.RefreshToken(ctx, models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthServiceChangePassword(t *testing.T) {
	tokens := &mockAuthTokenRepo{}
	svc, staff := newAuthServiceForTest(t, tokens)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "staff1", models.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "even better horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	err = svc.ChangePassword(ctx, "staff1", models.ChangePasswordRequest{
		OldPassword: "correct horse", NewPassword: "even better horse",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(staff.staff["staff1"].PasswordHash), []byte("even better horse")))

	// All sessions end when the password changes.
	assert.Equal(t, []string{"staff1"}, tokens.revokedStaff)
}

func TestAuthServiceValidateTokenRejectsTampering(t *testing.T) {
	svc, _ := newAuthServiceForTest(t, &mockAuthTokenRepo{})

	_, err := svc.ValidateToken("not.a.jwt")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
