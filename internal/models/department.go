package models

import "time"

// Department groups staff members; each department has one QA coordinator.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DepartmentFilter defines filters supported by list endpoints.
type DepartmentFilter struct {
	Name      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
