package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/innovex/ideahub-api/internal/models"
)

const reportColumns = "id, idea_id, reported_by_id, reason, is_approved, approved_by_id, approved_at, created_at, updated_at"

// ReportRepository handles persistence for moderation reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository instantiates a report repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// List returns a page of reports, optionally narrowed to one idea or one
// lifecycle state.
func (r *ReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, int, error) {
	base := "FROM reports WHERE 1=1"
	var args []interface{}

	if filter.IdeaID != "" {
		base += fmt.Sprintf(" AND idea_id = $%d", len(args)+1)
		args = append(args, filter.IdeaID)
	}
	switch filter.State {
	case models.ReportStatePending:
		base += " AND is_approved IS NULL"
	case models.ReportStateApproved:
		base += " AND is_approved = TRUE"
	case models.ReportStateRejected:
		base += " AND is_approved = FALSE"
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"created_at": true, "updated_at": true, "approved_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 10
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d",
		reportColumns, base, sortBy, order, size, (page-1)*size)

	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	return reports, total, nil
}

// FindByID loads a single report.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.Report, error) {
	query := fmt.Sprintf("SELECT %s FROM reports WHERE id = $1", reportColumns)
	var report models.Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, err
	}
	return &report, nil
}

// ExistsByStaffAndIdea reports whether the staff member already has an open
// or resolved report against the idea.
func (r *ReportRepository) ExistsByStaffAndIdea(ctx context.Context, staffID, ideaID string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS(SELECT 1 FROM reports WHERE reported_by_id = $1 AND idea_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, staffID, ideaID); err != nil {
		return false, fmt.Errorf("check report exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new pending report.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now

	const query = `INSERT INTO reports (id, idea_id, reported_by_id, reason, is_approved, approved_by_id, approved_at, created_at, updated_at)
		VALUES (:id, :idea_id, :reported_by_id, :reason, :is_approved, :approved_by_id, :approved_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// Delete removes a report row.
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

// Resolve records a moderation decision on the report.
func (r *ReportRepository) Resolve(ctx context.Context, id string, approved bool, reviewerID string) error {
	now := time.Now().UTC()
	const query = `UPDATE reports SET is_approved = $2, approved_by_id = $3, approved_at = $4, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, approved, reviewerID, now); err != nil {
		return fmt.Errorf("resolve report: %w", err)
	}
	return nil
}
