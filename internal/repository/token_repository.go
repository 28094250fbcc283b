package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/innovex/ideahub-api/internal/models"
)

// TokenRepository handles stored refresh tokens.
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository instantiates a token repository.
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create stores a new refresh token.
func (r *TokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, staff_id, token, expires_at, revoked, revoked_at, created_at)
		VALUES (:id, :staff_id, :token, :expires_at, :revoked, :revoked_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindByToken looks up a stored token by its opaque value.
func (r *TokenRepository) FindByToken(ctx context.Context, value string) (*models.RefreshToken, error) {
	const query = `SELECT id, staff_id, token, expires_at, revoked, revoked_at, created_at FROM refresh_tokens WHERE token = $1`
	var token models.RefreshToken
	if err := r.db.GetContext(ctx, &token, query, value); err != nil {
		return nil, err
	}
	return &token, nil
}

// Revoke marks one token as unusable.
func (r *TokenRepository) Revoke(ctx context.Context, id string) error {
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`, id, now); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllForStaff invalidates every live token of one staff member,
// used on password change and deactivation.
func (r *TokenRepository) RevokeAllForStaff(ctx context.Context, staffID string) error {
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE staff_id = $1 AND revoked = FALSE`, staffID, now); err != nil {
		return fmt.Errorf("revoke staff refresh tokens: %w", err)
	}
	return nil
}

// DeleteExpired prunes tokens past their expiry.
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired refresh tokens rows affected: %w", err)
	}
	return rows, nil
}
