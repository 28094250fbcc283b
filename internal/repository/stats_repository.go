package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/innovex/ideahub-api/internal/models"
)

// StatsRepository runs the aggregation queries behind statistical reports.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository instantiates a stats repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CategoryCount is a per-category idea tally within a filtered set.
type CategoryCount struct {
	models.Category
	IdeaCount int `db:"idea_count"`
}

// DepartmentCount is a per-department tally within a filtered set.
type DepartmentCount struct {
	models.Department
	Count int `db:"cnt"`
}

// buildScope produces the conditions applied to ideas i joined to staff s.
// Returned separately from the FROM clause so callers can add joins.
func (r *StatsRepository) buildScope(filter models.StatsFilter) (string, []interface{}) {
	where := "WHERE 1=1"
	var args []interface{}

	if filter.SemesterID != "" {
		where += fmt.Sprintf(" AND i.semester_id = $%d", len(args)+1)
		args = append(args, filter.SemesterID)
	} else if filter.AcademicInfoID != "" {
		where += fmt.Sprintf(" AND i.semester_id IN (SELECT id FROM semesters WHERE academic_info_id = $%d)", len(args)+1)
		args = append(args, filter.AcademicInfoID)
	}
	if filter.DepartmentID != "" {
		where += fmt.Sprintf(" AND s.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.StartDate != nil {
		where += fmt.Sprintf(" AND i.created_at >= $%d", len(args)+1)
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		where += fmt.Sprintf(" AND i.created_at <= $%d", len(args)+1)
		args = append(args, *filter.EndDate)
	}

	return where, args
}

const statsBaseFrom = "FROM ideas i JOIN staff s ON s.id = i.author_id"

// Counters computes every scalar counter of IdeaStats in one pass over the
// database. Percentage breakdowns are fetched separately.
func (r *StatsRepository) Counters(ctx context.Context, filter models.StatsFilter) (*models.IdeaStats, error) {
	where, args := r.buildScope(filter)

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS ideas_count,
		COUNT(DISTINCT i.author_id) AS contributors_count,
		COUNT(*) FILTER (WHERE i.is_anonymous) AS anonymous_count,
		COUNT(*) FILTER (WHERE NOT EXISTS (SELECT 1 FROM comments c WHERE c.idea_id = i.id)) AS no_comment_count,
		COALESCE(SUM((SELECT COUNT(*) FROM comments c WHERE c.idea_id = i.id)), 0) AS comments_count,
		COALESCE(SUM((SELECT COUNT(*) FROM comments c WHERE c.idea_id = i.id AND c.is_anonymous)), 0) AS anonymous_comment_count,
		COALESCE(SUM((SELECT COUNT(*) FROM votes v WHERE v.idea_id = i.id AND v.is_thumb_up)), 0) AS up_votes_count,
		COALESCE(SUM((SELECT COUNT(*) FROM votes v WHERE v.idea_id = i.id AND NOT v.is_thumb_up)), 0) AS down_votes_count
		%s %s`, statsBaseFrom, where)

	var row struct {
		IdeasCount            int `db:"ideas_count"`
		ContributorsCount     int `db:"contributors_count"`
		AnonymousCount        int `db:"anonymous_count"`
		NoCommentCount        int `db:"no_comment_count"`
		CommentsCount         int `db:"comments_count"`
		AnonymousCommentCount int `db:"anonymous_comment_count"`
		UpVotesCount          int `db:"up_votes_count"`
		DownVotesCount        int `db:"down_votes_count"`
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, fmt.Errorf("stats counters: %w", err)
	}

	return &models.IdeaStats{
		IdeasCount:            row.IdeasCount,
		CommentsCount:         row.CommentsCount,
		UpVotesCount:          row.UpVotesCount,
		DownVotesCount:        row.DownVotesCount,
		ContributorsCount:     row.ContributorsCount,
		AnonymousCount:        row.AnonymousCount,
		AnonymousCommentCount: row.AnonymousCommentCount,
		NoCommentCount:        row.NoCommentCount,
	}, nil
}

// CategoryCounts tallies ideas per category within the filtered set.
// Ideas tagged with several categories count once per category.
func (r *StatsRepository) CategoryCounts(ctx context.Context, filter models.StatsFilter) ([]CategoryCount, error) {
	where, args := r.buildScope(filter)

	query := fmt.Sprintf(`SELECT c.id, c.name, c.created_at, c.updated_at, COUNT(ic.idea_id) AS idea_count
		FROM categories c
		JOIN idea_categories ic ON ic.category_id = c.id
		WHERE ic.idea_id IN (SELECT i.id %s %s)
		GROUP BY c.id, c.name, c.created_at, c.updated_at
		ORDER BY idea_count DESC`, statsBaseFrom, where)

	var rows []CategoryCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("stats category counts: %w", err)
	}
	return rows, nil
}

// DepartmentIdeaCounts tallies ideas per author department within the
// filtered set.
func (r *StatsRepository) DepartmentIdeaCounts(ctx context.Context, filter models.StatsFilter) ([]DepartmentCount, error) {
	where, args := r.buildScope(filter)

	query := fmt.Sprintf(`SELECT d.id, d.name, d.created_at, d.updated_at, COUNT(i.id) AS cnt
		%s JOIN departments d ON d.id = s.department_id %s
		GROUP BY d.id, d.name, d.created_at, d.updated_at
		ORDER BY cnt DESC`, statsBaseFrom, where)

	var rows []DepartmentCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("stats department idea counts: %w", err)
	}
	return rows, nil
}

// DepartmentContributorCounts tallies distinct contributors per department
// within the filtered set.
func (r *StatsRepository) DepartmentContributorCounts(ctx context.Context, filter models.StatsFilter) ([]DepartmentCount, error) {
	where, args := r.buildScope(filter)

	query := fmt.Sprintf(`SELECT d.id, d.name, d.created_at, d.updated_at, COUNT(DISTINCT i.author_id) AS cnt
		%s JOIN departments d ON d.id = s.department_id %s
		GROUP BY d.id, d.name, d.created_at, d.updated_at
		ORDER BY cnt DESC`, statsBaseFrom, where)

	var rows []DepartmentCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("stats department contributor counts: %w", err)
	}
	return rows, nil
}
