package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/innovex/ideahub-api/internal/models"
)

// VoteRepository handles persistence for idea votes.
type VoteRepository struct {
	db *sqlx.DB
}

// NewVoteRepository instantiates a vote repository.
func NewVoteRepository(db *sqlx.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// FindByStaffAndIdea returns the caller's vote on an idea, if any.
func (r *VoteRepository) FindByStaffAndIdea(ctx context.Context, staffID, ideaID string) (*models.Vote, error) {
	const query = `SELECT id, staff_id, idea_id, is_thumb_up, created_at, updated_at FROM votes WHERE staff_id = $1 AND idea_id = $2`
	var vote models.Vote
	if err := r.db.GetContext(ctx, &vote, query, staffID, ideaID); err != nil {
		return nil, err
	}
	return &vote, nil
}

// Upsert creates the caller's vote or flips its direction. The unique
// (staff_id, idea_id) constraint keeps concurrent casts down to one row.
func (r *VoteRepository) Upsert(ctx context.Context, vote *models.Vote) error {
	if vote.ID == "" {
		vote.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = now
	}
	vote.UpdatedAt = now

	const query = `INSERT INTO votes (id, staff_id, idea_id, is_thumb_up, created_at, updated_at)
		VALUES (:id, :staff_id, :idea_id, :is_thumb_up, :created_at, :updated_at)
		ON CONFLICT (staff_id, idea_id) DO UPDATE SET is_thumb_up = EXCLUDED.is_thumb_up, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, vote); err != nil {
		return fmt.Errorf("upsert vote: %w", err)
	}
	return nil
}

// Delete retracts the caller's vote. Deleting a missing vote is a no-op.
func (r *VoteRepository) Delete(ctx context.Context, staffID, ideaID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM votes WHERE staff_id = $1 AND idea_id = $2`, staffID, ideaID); err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}
	return nil
}
