package models

import "time"

// TermStatus is derived from the current time against a stored date range.
// It is never persisted and is recomputed on every read.
type TermStatus string

const (
	TermStatusUpcoming TermStatus = "Upcoming"
	TermStatusOngoing  TermStatus = "Ongoing"
	TermStatusDone     TermStatus = "Done"
)

// StatusForRange derives the term status for a date range at the given time.
// Both bounds are inclusive: equality at either edge is Ongoing.
func StatusForRange(now, start, end time.Time) TermStatus {
	if now.Before(start) {
		return TermStatusUpcoming
	}
	if now.After(end) {
		return TermStatusDone
	}
	return TermStatusOngoing
}

// AcademicInfo models an academic year containing exactly two semesters.
type AcademicInfo struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   time.Time  `db:"end_date" json:"end_date"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	Status    TermStatus `db:"-" json:"status,omitempty"`
	Semesters []Semester `db:"-" json:"semesters,omitempty"`
}

// Semester is a sub-period of an academic year with a soft and a final
// closure date. Ideas attach to semesters.
type Semester struct {
	ID               string     `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	StartDate        time.Time  `db:"start_date" json:"start_date"`
	ClosureDate      time.Time  `db:"closure_date" json:"closure_date"`
	FinalClosureDate time.Time  `db:"final_closure_date" json:"final_closure_date"`
	AcademicInfoID   string     `db:"academic_info_id" json:"academic_info_id"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
	Status           TermStatus `db:"-" json:"status,omitempty"`
}

// AcademicInfoFilter defines filters supported by list endpoints.
type AcademicInfoFilter struct {
	Name      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
