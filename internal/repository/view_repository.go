package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ViewRepository records distinct idea viewers.
type ViewRepository struct {
	db *sqlx.DB
}

// NewViewRepository instantiates a view repository.
func NewViewRepository(db *sqlx.DB) *ViewRepository {
	return &ViewRepository{db: db}
}

// Record marks the idea as viewed by the staff member. Repeat views from
// the same viewer hit the unique constraint and change nothing.
func (r *ViewRepository) Record(ctx context.Context, staffID, ideaID string) error {
	const query = `INSERT INTO views (id, staff_id, idea_id, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (staff_id, idea_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), staffID, ideaID, time.Now().UTC()); err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

// CountByIdea returns the distinct viewer count for an idea.
func (r *ViewRepository) CountByIdea(ctx context.Context, ideaID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM views WHERE idea_id = $1`, ideaID); err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	return count, nil
}
