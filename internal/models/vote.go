package models

import "time"

// Vote is a thumbs-up/down cast by one staff member on one idea.
// At most one row exists per (staff_id, idea_id).
type Vote struct {
	ID        string    `db:"id" json:"id"`
	StaffID   string    `db:"staff_id" json:"staff_id"`
	IdeaID    string    `db:"idea_id" json:"idea_id"`
	IsThumbUp bool      `db:"is_thumb_up" json:"is_thumb_up"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// View records that a staff member has opened an idea. One row per
/// (staff_id, idea_id): the counter tracks distinct viewers, not visits.
type View struct {
	ID        string    `db:"id" json:"id"`
	StaffID   string    `db:"staff_id" json:"staff_id"`
	IdeaID    string    `db:"idea_id" json:"idea_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
