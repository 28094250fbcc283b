package models

import "time"

// RefreshToken is a stored, revocable long-lived token.
type RefreshToken struct {
	ID        string     `db:"id" json:"id"`
	StaffID   string     `db:"staff_id" json:"staff_id"`
	Token     string     `db:"token" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	Revoked   bool       `db:"revoked" json:"revoked"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
