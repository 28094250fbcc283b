package models

import "time"

// Category labels ideas; membership lives in the idea_categories join table.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CategoryFilter defines filters supported by list endpoints.
type CategoryFilter struct {
	Name      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
