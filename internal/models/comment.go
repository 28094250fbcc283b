package models

import "time"

// Comment is staff feedback attached to an idea.
type Comment struct {
	ID          string    `db:"id" json:"id"`
	IdeaID      string    `db:"idea_id" json:"idea_id"`
	AuthorID    string    `db:"author_id" json:"author_id"`
	Content     string    `db:"content" json:"content"`
	IsAnonymous bool      `db:"is_anonymous" json:"is_anonymous"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	Author *Staff `db:"-" json:"author,omitempty"`
}

// CommentFilter defines filters supported by comment list endpoints.
type CommentFilter struct {
	IdeaID    string
	AuthorID  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
