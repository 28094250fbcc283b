package models

import "time"

// StaffRole represents the available roles for the RBAC system.
type StaffRole string

const (
	RoleStaff         StaffRole = "STAFF"
	RoleQACoordinator StaffRole = "QA_COORDINATOR"
	RoleQAManager     StaffRole = "QA_MANAGER"
	RoleAdmin         StaffRole = "ADMIN"
)

// Staff represents an application user stored in the staff table.
type Staff struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Role         StaffRole  `db:"role" json:"role"`
	DepartmentID *string    `db:"department_id" json:"department_id,omitempty"`
	Department   *Department `db:"-" json:"department,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// StaffFilter captures filtering criteria for listing staff.
type StaffFilter struct {
	Role         *StaffRole
	DepartmentID string
	IsActive     *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// Pagination contains pagination metadata returned in list responses.
// TotalPages is derived from the full filtered count, never from the page.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPagination normalises page/size and derives the page count.
func NewPagination(page, size, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return &Pagination{Page: page, PageSize: size, TotalCount: total, TotalPages: pages}
}
