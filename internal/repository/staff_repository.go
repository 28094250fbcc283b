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

const staffColumns = "id, email, password_hash, name, role, department_id, is_active, last_login, created_at, updated_at"

// StaffRepository handles persistence for staff accounts.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository instantiates a staff repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// List returns staff matching provided filters.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	base := "FROM staff WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"email":      true,
		"role":       true,
		"created_at": true,
	}
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
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", staffColumns, base, sortBy, order, size, offset)

	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}

	return staff, total, nil
}

// FindByID loads a staff member by identifier.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	query := fmt.Sprintf("SELECT %s FROM staff WHERE id = $1", staffColumns)
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, err
	}
	return &staff, nil
}

// FindByEmail loads a staff member by e-mail, case-insensitively.
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	query := fmt.Sprintf("SELECT %s FROM staff WHERE LOWER(email) = LOWER($1)", staffColumns)
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, email); err != nil {
		return nil, err
	}
	return &staff, nil
}

// ExistsByEmail checks email uniqueness, optionally excluding one id.
func (r *StaffRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	base := "SELECT 1 FROM staff WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		base += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check staff email uniqueness: %w", err)
	}
	return true, nil
}

// CountActiveByRole counts active holders of a role. DepartmentID narrows the
// check for per-department singleton roles; excludeID skips the staff member
// being updated.
func (r *StaffRepository) CountActiveByRole(ctx context.Context, role models.StaffRole, departmentID, excludeID string) (int, error) {
	base := "SELECT COUNT(*) FROM staff WHERE role = $1 AND is_active = TRUE"
	args := []interface{}{role}
	if departmentID != "" {
		base += fmt.Sprintf(" AND department_id = $%d", len(args)+1)
		args = append(args, departmentID)
	}
	if excludeID != "" {
		base += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, base, args...); err != nil {
		return 0, fmt.Errorf("count active role holders: %w", err)
	}
	return count, nil
}

// Create inserts a new staff record.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = now
	}
	staff.UpdatedAt = now

	const query = `INSERT INTO staff (id, email, password_hash, name, role, department_id, is_active, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :name, :role, :department_id, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, staff); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// Update modifies an existing staff record.
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	staff.UpdatedAt = time.Now().UTC()
	const query = `UPDATE staff SET email = :email, name = :name, role = :role, department_id = :department_id,
		is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, staff); err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (r *StaffRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE staff SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		id, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update staff password: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps the most recent successful login.
func (r *StaffRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE staff SET last_login = $2 WHERE id = $1`, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// Deactivate marks the account inactive instead of deleting the row.
func (r *StaffRepository) Deactivate(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE staff SET is_active = FALSE, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate staff: %w", err)
	}
	return nil
}

// FindActive returns every active staff member without pagination. Used
// for audience resolution where truncating the set would drop recipients.
func (r *StaffRepository) FindActive(ctx context.Context) ([]models.Staff, error) {
	query := fmt.Sprintf("SELECT %s FROM staff WHERE is_active = TRUE ORDER BY created_at", staffColumns)
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, fmt.Errorf("find active staff: %w", err)
	}
	return staff, nil
}

// FindByDepartmentAndRole returns active staff with the given role in a department.
func (r *StaffRepository) FindByDepartmentAndRole(ctx context.Context, departmentID string, role models.StaffRole) ([]models.Staff, error) {
	query := fmt.Sprintf("SELECT %s FROM staff WHERE department_id = $1 AND role = $2 AND is_active = TRUE", staffColumns)
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, departmentID, role); err != nil {
		return nil, fmt.Errorf("find staff by department and role: %w", err)
	}
	return staff, nil
}

// FindByDepartment returns every active staff member of a department.
func (r *StaffRepository) FindByDepartment(ctx context.Context, departmentID string) ([]models.Staff, error) {
	query := fmt.Sprintf("SELECT %s FROM staff WHERE department_id = $1 AND is_active = TRUE", staffColumns)
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, departmentID); err != nil {
		return nil, fmt.Errorf("find staff by department: %w", err)
	}
	return staff, nil
}

// FindByIDs returns staff for the provided ids.
func (r *StaffRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Staff, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM staff WHERE id IN (?)", staffColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build staff id query: %w", err)
	}
	query = r.db.Rebind(query)
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, fmt.Errorf("find staff by ids: %w", err)
	}
	return staff, nil
}
