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

const announcementColumns = "id, announcer_id, subject, content, audience_type, created_at, updated_at"

// AnnouncementRepository handles persistence for announcements and their
// per-recipient delivery records.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository instantiates an announcement repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List returns a page of announcements.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	base := "FROM announcements WHERE 1=1"
	var args []interface{}

	if filter.AnnouncerID != "" {
		base += fmt.Sprintf(" AND announcer_id = $%d", len(args)+1)
		args = append(args, filter.AnnouncerID)
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"created_at": true, "subject": true}
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
		announcementColumns, base, sortBy, order, size, (page-1)*size)

	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}

	return announcements, total, nil
}

// FindByID loads an announcement with its delivery records.
func (r *AnnouncementRepository) FindByID(ctx context.Context, id string) (*models.Announcement, error) {
	query := fmt.Sprintf("SELECT %s FROM announcements WHERE id = $1", announcementColumns)
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id); err != nil {
		return nil, err
	}

	const audienceQuery = `SELECT id, announcement_id, staff_id, department_id, status, created_at
		FROM staff_announcements WHERE announcement_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &announcement.Audiences, audienceQuery, id); err != nil {
		return nil, fmt.Errorf("load announcement audiences: %w", err)
	}
	return &announcement, nil
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = now
	}
	announcement.UpdatedAt = now

	const query = `INSERT INTO announcements (id, announcer_id, subject, content, audience_type, created_at, updated_at)
		VALUES (:id, :announcer_id, :subject, :content, :audience_type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// RecordDelivery inserts one recipient's delivery outcome.
func (r *AnnouncementRepository) RecordDelivery(ctx context.Context, record *models.StaffAnnouncement) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO staff_announcements (id, announcement_id, staff_id, department_id, status, created_at)
		VALUES (:id, :announcement_id, :staff_id, :department_id, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("record announcement delivery: %w", err)
	}
	return nil
}

// Delete removes an announcement and its delivery records.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete announcement tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM staff_announcements WHERE announcement_id = $1`, id); err != nil {
		return fmt.Errorf("delete announcement audiences: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete announcement tx: %w", err)
	}
	return nil
}
