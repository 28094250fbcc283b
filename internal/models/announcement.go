package models

import "time"

// AudienceType defines who receives an announcement.
type AudienceType string

const (
	AudienceAll      AudienceType = "ALL"
	AudienceSpecific AudienceType = "SPECIFIC"
)

// DeliveryStatus records the outcome of one recipient's email dispatch.
type DeliveryStatus string

const (
	DeliverySuccess DeliveryStatus = "SUCCESS"
	DeliveryFailed  DeliveryStatus = "FAILED"
)

// Announcement is a message broadcast by a coordinator or manager.
type Announcement struct {
	ID           string       `db:"id" json:"id"`
	AnnouncerID  string       `db:"announcer_id" json:"announcer_id"`
	Subject      string       `db:"subject" json:"subject"`
	Content      string       `db:"content" json:"content"`
	AudienceType AudienceType `db:"audience_type" json:"audience_type"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`

	Audiences []StaffAnnouncement `db:"-" json:"audiences,omitempty"`
}

// StaffAnnouncement is one recipient's delivery record.
type StaffAnnouncement struct {
	ID             string         `db:"id" json:"id"`
	AnnouncementID string         `db:"announcement_id" json:"announcement_id"`
	StaffID        string         `db:"staff_id" json:"staff_id"`
	DepartmentID   *string        `db:"department_id" json:"department_id,omitempty"`
	Status         DeliveryStatus `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// AnnouncementFilter defines filters supported by list endpoints.
type AnnouncementFilter struct {
	AnnouncerID string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
