package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/innovex/ideahub-api/internal/models"
)

const commentColumns = "id, idea_id, author_id, content, is_anonymous, created_at, updated_at"

// CommentRepository handles persistence for idea comments.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository instantiates a comment repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// List returns a page of comments with authors attached.
func (r *CommentRepository) List(ctx context.Context, filter models.CommentFilter) ([]models.Comment, int, error) {
	base := "FROM comments WHERE 1=1"
	var args []interface{}

	if filter.IdeaID != "" {
		base += fmt.Sprintf(" AND idea_id = $%d", len(args)+1)
		args = append(args, filter.IdeaID)
	}
	if filter.AuthorID != "" {
		base += fmt.Sprintf(" AND author_id = $%d", len(args)+1)
		args = append(args, filter.AuthorID)
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"created_at": true, "updated_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 10
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d",
		commentColumns, base, sortBy, order, size, (page-1)*size)

	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	if err := r.loadAuthors(ctx, comments); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// FindByID loads a single comment.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	query := fmt.Sprintf("SELECT %s FROM comments WHERE id = $1", commentColumns)
	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		return nil, err
	}
	return &comment, nil
}

// Create inserts a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now

	const query = `INSERT INTO comments (id, idea_id, author_id, content, is_anonymous, created_at, updated_at)
		VALUES (:id, :idea_id, :author_id, :content, :is_anonymous, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// Update modifies the comment body.
func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE comments SET content = :content, is_anonymous = :is_anonymous, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// Delete removes a comment.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) loadAuthors(ctx context.Context, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]string, 0, len(comments))
	seen := make(map[string]struct{}, len(comments))
	for i := range comments {
		if _, ok := seen[comments[i].AuthorID]; ok {
			continue
		}
		seen[comments[i].AuthorID] = struct{}{}
		ids = append(ids, comments[i].AuthorID)
	}

	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM staff WHERE id IN (?)", staffColumns), ids)
	if err != nil {
		return fmt.Errorf("build comment authors query: %w", err)
	}
	var authors []models.Staff
	if err := r.db.SelectContext(ctx, &authors, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load comment authors: %w", err)
	}

	index := make(map[string]models.Staff, len(authors))
	for _, author := range authors {
		index[author.ID] = author
	}
	for i := range comments {
		if author, ok := index[comments[i].AuthorID]; ok {
			cp := author
			comments[i].Author = &cp
		}
	}
	return nil
}
