package models

import "time"

// Report is a moderation flag raised by staff against an idea.
// IsApproved is tri-state: nil = pending, true = approved, false = rejected.
type Report struct {
	ID           string     `db:"id" json:"id"`
	IdeaID       string     `db:"idea_id" json:"idea_id"`
	ReportedByID string     `db:"reported_by_id" json:"reported_by_id"`
	Reason       string     `db:"reason" json:"reason"`
	IsApproved   *bool      `db:"is_approved" json:"is_approved"`
	ApprovedByID *string    `db:"approved_by_id" json:"approved_by_id,omitempty"`
	ApprovedAt   *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	Idea       *Idea  `db:"-" json:"idea,omitempty"`
	ReportedBy *Staff `db:"-" json:"reported_by,omitempty"`
}

// ReportState is the moderation lifecycle derived from IsApproved.
type ReportState string

const (
	ReportStatePending  ReportState = "PENDING"
	ReportStateApproved ReportState = "APPROVED"
	ReportStateRejected ReportState = "REJECTED"
)

// State resolves the tri-state flag into a lifecycle value.
func (r *Report) State() ReportState {
	switch {
	case r.IsApproved == nil:
		return ReportStatePending
	case *r.IsApproved:
		return ReportStateApproved
	default:
		return ReportStateRejected
	}
}

// ReportFilter defines filters supported by report list endpoints.
type ReportFilter struct {
	IdeaID    string
	State     ReportState
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
