package models

import "time"

// Idea is the central content entity: a suggestion submitted by staff
// within a semester.
type Idea struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	AuthorID    string    `db:"author_id" json:"author_id"`
	SemesterID  string    `db:"semester_id" json:"semester_id"`
	IsAnonymous bool      `db:"is_anonymous" json:"is_anonymous"`
	IsHidden    bool      `db:"is_hidden" json:"is_hidden"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Eagerly loaded relations; populated by the repository on detail and
	// list reads so engagement can be derived without extra round trips.
	Author     *Staff         `db:"-" json:"author,omitempty"`
	Categories []Category     `db:"-" json:"categories,omitempty"`
	Documents  []IdeaDocument `db:"-" json:"documents,omitempty"`
	Votes      []Vote         `db:"-" json:"-"`
	Comments   []Comment      `db:"-" json:"-"`
	Views      []View         `db:"-" json:"-"`
}

// IdeaDocument is an uploaded attachment referenced by external URLs.
type IdeaDocument struct {
	ID           string    `db:"id" json:"id"`
	IdeaID       string    `db:"idea_id" json:"idea_id"`
	Name         string    `db:"name" json:"name"`
	DocumentType string    `db:"document_type" json:"document_type"`
	DownloadURL  string    `db:"download_url" json:"download_url"`
	DeleteURL    string    `db:"delete_url" json:"delete_url"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// LikeStatus describes the acting staff member's own vote on an idea.
type LikeStatus string

const (
	LikeStatusLike    LikeStatus = "like"
	LikeStatusDislike LikeStatus = "dislike"
	LikeStatusNone    LikeStatus = "none"
)

// Engagement carries counters derived from the joined vote/comment/view
// collections. Never persisted; recomputed on every read.
type Engagement struct {
	TotalLikes     int        `json:"total_likes"`
	TotalDisLikes  int        `json:"total_dislikes"`
	VoteResult     int        `json:"vote_result"`
	TotalComments  int        `json:"total_comments"`
	TotalViewCount int        `json:"total_view_count"`
	LikeStatus     LikeStatus `json:"like_status"`
}

// IdeaView is the display-ready shape: the idea plus derived engagement.
type IdeaView struct {
	Idea
	Engagement
}

// Idea list sort keys computed from relations rather than persisted columns.
const (
	SortKeyVoteResult     = "voteResult"
	SortKeyTotalLikes     = "totalLikes"
	SortKeyTotalDisLikes  = "totalDisLikes"
	SortKeyTotalComments  = "totalComments"
	SortKeyTotalViewCount = "totalViewCount"
)

// IsDerivedSortKey reports whether the sort key requires in-memory
// aggregation over the full filtered set before pagination.
func IsDerivedSortKey(key string) bool {
	switch key {
	case SortKeyVoteResult, SortKeyTotalLikes, SortKeyTotalDisLikes, SortKeyTotalComments, SortKeyTotalViewCount:
		return true
	}
	return false
}

// IdeaFilter defines filters supported by idea list endpoints.
type IdeaFilter struct {
	Title      string
	SemesterID string
	AuthorID   string
	CategoryID string
	IsHidden   *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
