package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/innovex/ideahub-api/internal/models"
)

const (
	academicInfoColumns = "id, name, start_date, end_date, created_at, updated_at"
	semesterColumns     = "id, name, start_date, closure_date, final_closure_date, academic_info_id, created_at, updated_at"
)

// AcademicRepository handles persistence for academic years and semesters.
type AcademicRepository struct {
	db *sqlx.DB
}

// NewAcademicRepository instantiates an academic repository.
func NewAcademicRepository(db *sqlx.DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

// List returns academic years with their semesters attached.
func (r *AcademicRepository) List(ctx context.Context, filter models.AcademicInfoFilter) ([]models.AcademicInfo, int, error) {
	base := "FROM academic_infos WHERE 1=1"
	var args []interface{}

	if filter.Name != "" {
		base += fmt.Sprintf(" AND name ILIKE $%d", len(args)+1)
		args = append(args, "%"+filter.Name+"%")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"name": true, "start_date": true, "end_date": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "start_date"
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
		academicInfoColumns, base, sortBy, order, size, (page-1)*size)

	var infos []models.AcademicInfo
	if err := r.db.SelectContext(ctx, &infos, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list academic years: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count academic years: %w", err)
	}

	for i := range infos {
		semesters, err := r.FindSemestersByAcademicInfo(ctx, infos[i].ID)
		if err != nil {
			return nil, 0, err
		}
		infos[i].Semesters = semesters
	}

	return infos, total, nil
}

// FindByID loads an academic year without its semesters.
func (r *AcademicRepository) FindByID(ctx context.Context, id string) (*models.AcademicInfo, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_infos WHERE id = $1", academicInfoColumns)
	var info models.AcademicInfo
	if err := r.db.GetContext(ctx, &info, query, id); err != nil {
		return nil, err
	}
	return &info, nil
}

// FindByIDWithSemesters loads an academic year together with its semesters.
func (r *AcademicRepository) FindByIDWithSemesters(ctx context.Context, id string) (*models.AcademicInfo, error) {
	info, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	semesters, err := r.FindSemestersByAcademicInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	info.Semesters = semesters
	return info, nil
}

// ExistsByName checks name uniqueness, optionally excluding one id.
func (r *AcademicRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	base := "SELECT 1 FROM academic_infos WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		base += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check academic year name uniqueness: %w", err)
	}
	return true, nil
}

// CreateWithSemesters persists the academic year and both semesters inside
// one transaction so a failed insert leaves no partial term behind.
func (r *AcademicRepository) CreateWithSemesters(ctx context.Context, info *models.AcademicInfo, semesters []models.Semester) error {
	now := time.Now().UTC()
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	info.CreatedAt = now
	info.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create academic year tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const infoQuery = `INSERT INTO academic_infos (id, name, start_date, end_date, created_at, updated_at)
		VALUES (:id, :name, :start_date, :end_date, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, infoQuery, info); err != nil {
		return fmt.Errorf("create academic year: %w", err)
	}

	for i := range semesters {
		if semesters[i].ID == "" {
			semesters[i].ID = uuid.NewString()
		}
		semesters[i].AcademicInfoID = info.ID
		semesters[i].CreatedAt = now
		semesters[i].UpdatedAt = now

		const semQuery = `INSERT INTO semesters (id, name, start_date, closure_date, final_closure_date, academic_info_id, created_at, updated_at)
			VALUES (:id, :name, :start_date, :closure_date, :final_closure_date, :academic_info_id, :created_at, :updated_at)`
		if _, err = tx.NamedExecContext(ctx, semQuery, semesters[i]); err != nil {
			return fmt.Errorf("create semester: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create academic year tx: %w", err)
	}
	info.Semesters = semesters
	return nil
}

// UpdateWithSemesters replaces the year's dates/name and both semester rows
// in one transaction: validation happens before this is called, so a failure
// here cannot leave a half-updated term.
func (r *AcademicRepository) UpdateWithSemesters(ctx context.Context, info *models.AcademicInfo, semesters []models.Semester) error {
	now := time.Now().UTC()
	info.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update academic year tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const infoQuery = `UPDATE academic_infos SET name = :name, start_date = :start_date, end_date = :end_date,
		updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, infoQuery, info); err != nil {
		return fmt.Errorf("update academic year: %w", err)
	}

	for i := range semesters {
		semesters[i].AcademicInfoID = info.ID
		semesters[i].UpdatedAt = now

		const semQuery = `UPDATE semesters SET name = :name, start_date = :start_date, closure_date = :closure_date,
			final_closure_date = :final_closure_date, updated_at = :updated_at
			WHERE id = :id AND academic_info_id = :academic_info_id`
		if _, err = tx.NamedExecContext(ctx, semQuery, semesters[i]); err != nil {
			return fmt.Errorf("update semester: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update academic year tx: %w", err)
	}
	info.Semesters = semesters
	return nil
}

// Delete removes the academic year and its semesters in one transaction.
func (r *AcademicRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete academic year tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM semesters WHERE academic_info_id = $1`, id); err != nil {
		return fmt.Errorf("delete semesters: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM academic_infos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete academic year: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete academic year tx: %w", err)
	}
	return nil
}

// FindSemesterByID loads a single semester.
func (r *AcademicRepository) FindSemesterByID(ctx context.Context, id string) (*models.Semester, error) {
	query := fmt.Sprintf("SELECT %s FROM semesters WHERE id = $1", semesterColumns)
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// FindSemestersByAcademicInfo returns the semesters of one academic year.
func (r *AcademicRepository) FindSemestersByAcademicInfo(ctx context.Context, academicInfoID string) ([]models.Semester, error) {
	query := fmt.Sprintf("SELECT %s FROM semesters WHERE academic_info_id = $1 ORDER BY start_date ASC", semesterColumns)
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query, academicInfoID); err != nil {
		return nil, fmt.Errorf("find semesters: %w", err)
	}
	return semesters, nil
}

// FindCurrentSemester returns the semester whose span covers the given time.
func (r *AcademicRepository) FindCurrentSemester(ctx context.Context, now time.Time) (*models.Semester, error) {
	query := fmt.Sprintf("SELECT %s FROM semesters WHERE start_date <= $1 AND final_closure_date >= $1 ORDER BY start_date ASC LIMIT 1", semesterColumns)
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, now); err != nil {
		return nil, err
	}
	return &semester, nil
}

// CountIdeas returns the number of ideas attached to any of the year's semesters.
func (r *AcademicRepository) CountIdeas(ctx context.Context, academicInfoID string) (int, error) {
	const query = `SELECT COUNT(*) FROM ideas WHERE semester_id IN (SELECT id FROM semesters WHERE academic_info_id = $1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, academicInfoID); err != nil {
		return 0, fmt.Errorf("count academic year ideas: %w", err)
	}
	return count, nil
}
