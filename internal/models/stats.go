package models

import "time"

// StatsFilter scopes a statistical report. AcademicInfoID and SemesterID are
// alternatives; the date range applies to idea creation time.
type StatsFilter struct {
	AcademicInfoID string
	SemesterID     string
	DepartmentID   string
	StartDate      *time.Time
	EndDate        *time.Time

	// SkipCache forces recomputation, bypassing any cached report.
	SkipCache bool
}

// CategoryShare is one category's fraction of the filtered idea set.
type CategoryShare struct {
	Category   Category `json:"category"`
	Percentage float64  `json:"percentage"`
}

// DepartmentShare is one department's fraction of the filtered idea set.
type DepartmentShare struct {
	Department Department `json:"department"`
	Percentage float64    `json:"percentage"`
}

// IdeaStats aggregates engagement counters over a filtered idea set.
type IdeaStats struct {
	IdeasCount            int               `json:"ideas_count"`
	CommentsCount         int               `json:"comments_count"`
	UpVotesCount          int               `json:"up_votes_count"`
	DownVotesCount        int               `json:"down_votes_count"`
	ContributorsCount     int               `json:"contributors_count"`
	AnonymousCount        int               `json:"anonymous_count"`
	AnonymousCommentCount int               `json:"anonymous_comment_count"`
	NoCommentCount        int               `json:"no_comment_count"`
	CategoryShares        []CategoryShare   `json:"category_percentage"`
	DepartmentShares      []DepartmentShare `json:"department_percentage,omitempty"`
	ContributorShares     []DepartmentShare `json:"contributor_percentage,omitempty"`
}
