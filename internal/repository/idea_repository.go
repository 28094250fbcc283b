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

const ideaColumns = "id, title, description, author_id, semester_id, is_anonymous, is_hidden, created_at, updated_at"

// IdeaRepository handles persistence for ideas and their relations.
type IdeaRepository struct {
	db *sqlx.DB
}

// NewIdeaRepository instantiates an idea repository.
func NewIdeaRepository(db *sqlx.DB) *IdeaRepository {
	return &IdeaRepository{db: db}
}

func (r *IdeaRepository) buildFilter(filter models.IdeaFilter) (string, []interface{}) {
	base := "FROM ideas WHERE 1=1"
	var args []interface{}

	if filter.Title != "" {
		base += fmt.Sprintf(" AND title ILIKE $%d", len(args)+1)
		args = append(args, "%"+filter.Title+"%")
	}
	if filter.SemesterID != "" {
		base += fmt.Sprintf(" AND semester_id = $%d", len(args)+1)
		args = append(args, filter.SemesterID)
	}
	if filter.AuthorID != "" {
		base += fmt.Sprintf(" AND author_id = $%d", len(args)+1)
		args = append(args, filter.AuthorID)
	}
	if filter.IsHidden != nil {
		base += fmt.Sprintf(" AND is_hidden = $%d", len(args)+1)
		args = append(args, *filter.IsHidden)
	}
	if filter.CategoryID != "" {
		// Category membership is a many-to-many join: resolve matching idea
		// ids from the join table and intersect with the scalar filters.
		base += fmt.Sprintf(" AND id IN (SELECT idea_id FROM idea_categories WHERE category_id = $%d)", len(args)+1)
		args = append(args, filter.CategoryID)
	}

	return base, args
}

// List returns a page of ideas with relations attached, pushing ORDER BY and
// LIMIT/OFFSET to the database. Only persisted columns are legal sort keys
// here; derived-field sorts go through ListAll.
func (r *IdeaRepository) List(ctx context.Context, filter models.IdeaFilter) ([]models.Idea, int, error) {
	base, args := r.buildFilter(filter)

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"title": true, "created_at": true, "updated_at": true}
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
		ideaColumns, base, sortBy, order, size, (page-1)*size)

	var ideas []models.Idea
	if err := r.db.SelectContext(ctx, &ideas, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list ideas: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count ideas: %w", err)
	}

	if err := r.loadRelations(ctx, ideas); err != nil {
		return nil, 0, err
	}
	return ideas, total, nil
}

// ListAll returns the complete filtered set with relations attached and no
// pagination. Derived-field sorts aggregate over this before slicing.
func (r *IdeaRepository) ListAll(ctx context.Context, filter models.IdeaFilter) ([]models.Idea, error) {
	base, args := r.buildFilter(filter)
	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC", ideaColumns, base)

	var ideas []models.Idea
	if err := r.db.SelectContext(ctx, &ideas, query, args...); err != nil {
		return nil, fmt.Errorf("list all ideas: %w", err)
	}
	if err := r.loadRelations(ctx, ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

// FindByID loads a bare idea row.
func (r *IdeaRepository) FindByID(ctx context.Context, id string) (*models.Idea, error) {
	query := fmt.Sprintf("SELECT %s FROM ideas WHERE id = $1", ideaColumns)
	var idea models.Idea
	if err := r.db.GetContext(ctx, &idea, query, id); err != nil {
		return nil, err
	}
	return &idea, nil
}

// FindByIDWithRelations loads an idea with votes, comments, views,
// categories, documents and author in tow.
func (r *IdeaRepository) FindByIDWithRelations(ctx context.Context, id string) (*models.Idea, error) {
	idea, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ideas := []models.Idea{*idea}
	if err := r.loadRelations(ctx, ideas); err != nil {
		return nil, err
	}
	return &ideas[0], nil
}

// FindBySemester returns all visible ideas of a semester with relations,
// used by workbook exports.
func (r *IdeaRepository) FindBySemester(ctx context.Context, semesterID string) ([]models.Idea, error) {
	query := fmt.Sprintf("SELECT %s FROM ideas WHERE semester_id = $1 ORDER BY created_at ASC", ideaColumns)
	var ideas []models.Idea
	if err := r.db.SelectContext(ctx, &ideas, query, semesterID); err != nil {
		return nil, fmt.Errorf("find ideas by semester: %w", err)
	}
	if err := r.loadRelations(ctx, ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

// Create inserts a new idea row.
func (r *IdeaRepository) Create(ctx context.Context, idea *models.Idea) error {
	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = now
	}
	idea.UpdatedAt = now

	const query = `INSERT INTO ideas (id, title, description, author_id, semester_id, is_anonymous, is_hidden, created_at, updated_at)
		VALUES (:id, :title, :description, :author_id, :semester_id, :is_anonymous, :is_hidden, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, idea); err != nil {
		return fmt.Errorf("create idea: %w", err)
	}
	return nil
}

// Update modifies the mutable idea fields.
func (r *IdeaRepository) Update(ctx context.Context, idea *models.Idea) error {
	idea.UpdatedAt = time.Now().UTC()
	const query = `UPDATE ideas SET title = :title, description = :description, is_anonymous = :is_anonymous,
		is_hidden = :is_hidden, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, idea); err != nil {
		return fmt.Errorf("update idea: %w", err)
	}
	return nil
}

// SetHidden toggles the idea's moderation visibility flag.
func (r *IdeaRepository) SetHidden(ctx context.Context, id string, hidden bool) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE ideas SET is_hidden = $2, updated_at = $3 WHERE id = $1`,
		id, hidden, time.Now().UTC()); err != nil {
		return fmt.Errorf("set idea hidden: %w", err)
	}
	return nil
}

// Delete removes an idea and its dependent rows in one transaction.
func (r *IdeaRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete idea tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"idea_categories", "idea_documents", "votes", "views", "comments", "reports"} {
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE idea_id = $1", table), id); err != nil {
			return fmt.Errorf("delete idea %s: %w", table, err)
		}
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM ideas WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete idea: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete idea tx: %w", err)
	}
	return nil
}

// AttachCategories links the idea to the given categories.
func (r *IdeaRepository) AttachCategories(ctx context.Context, ideaID string, categoryIDs []string) error {
	for _, categoryID := range categoryIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO idea_categories (id, idea_id, category_id, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (idea_id, category_id) DO NOTHING`,
			uuid.NewString(), ideaID, categoryID, time.Now().UTC()); err != nil {
			return fmt.Errorf("attach category: %w", err)
		}
	}
	return nil
}

// ReplaceCategories swaps the idea's category set.
func (r *IdeaRepository) ReplaceCategories(ctx context.Context, ideaID string, categoryIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM idea_categories WHERE idea_id = $1`, ideaID); err != nil {
		return fmt.Errorf("clear idea categories: %w", err)
	}
	return r.AttachCategories(ctx, ideaID, categoryIDs)
}

// AddDocument attaches an uploaded document reference to the idea.
func (r *IdeaRepository) AddDocument(ctx context.Context, doc *models.IdeaDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO idea_documents (id, idea_id, name, document_type, download_url, delete_url, created_at)
		VALUES (:id, :idea_id, :name, :document_type, :download_url, :delete_url, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("add idea document: %w", err)
	}
	return nil
}

// loadRelations populates votes, comments, views, categories, documents and
// authors for the given ideas in a handful of batched queries.
func (r *IdeaRepository) loadRelations(ctx context.Context, ideas []models.Idea) error {
	if len(ideas) == 0 {
		return nil
	}

	ids := make([]string, len(ideas))
	index := make(map[string]*models.Idea, len(ideas))
	for i := range ideas {
		ids[i] = ideas[i].ID
		index[ideas[i].ID] = &ideas[i]
	}

	var votes []models.Vote
	if err := r.selectIn(ctx, &votes, `SELECT id, staff_id, idea_id, is_thumb_up, created_at, updated_at FROM votes WHERE idea_id IN (?)`, ids); err != nil {
		return fmt.Errorf("load idea votes: %w", err)
	}
	for _, vote := range votes {
		if idea, ok := index[vote.IdeaID]; ok {
			idea.Votes = append(idea.Votes, vote)
		}
	}

	var comments []models.Comment
	if err := r.selectIn(ctx, &comments, `SELECT id, idea_id, author_id, content, is_anonymous, created_at, updated_at FROM comments WHERE idea_id IN (?)`, ids); err != nil {
		return fmt.Errorf("load idea comments: %w", err)
	}
	for _, comment := range comments {
		if idea, ok := index[comment.IdeaID]; ok {
			idea.Comments = append(idea.Comments, comment)
		}
	}

	var views []models.View
	if err := r.selectIn(ctx, &views, `SELECT id, staff_id, idea_id, created_at FROM views WHERE idea_id IN (?)`, ids); err != nil {
		return fmt.Errorf("load idea views: %w", err)
	}
	for _, view := range views {
		if idea, ok := index[view.IdeaID]; ok {
			idea.Views = append(idea.Views, view)
		}
	}

	type ideaCategoryRow struct {
		IdeaID string `db:"idea_id"`
		models.Category
	}
	var categories []ideaCategoryRow
	if err := r.selectIn(ctx, &categories,
		`SELECT ic.idea_id, c.id, c.name, c.created_at, c.updated_at FROM idea_categories ic JOIN categories c ON c.id = ic.category_id WHERE ic.idea_id IN (?)`, ids); err != nil {
		return fmt.Errorf("load idea categories: %w", err)
	}
	for _, row := range categories {
		if idea, ok := index[row.IdeaID]; ok {
			idea.Categories = append(idea.Categories, row.Category)
		}
	}

	var documents []models.IdeaDocument
	if err := r.selectIn(ctx, &documents, `SELECT id, idea_id, name, document_type, download_url, delete_url, created_at FROM idea_documents WHERE idea_id IN (?)`, ids); err != nil {
		return fmt.Errorf("load idea documents: %w", err)
	}
	for _, doc := range documents {
		if idea, ok := index[doc.IdeaID]; ok {
			idea.Documents = append(idea.Documents, doc)
		}
	}

	authorIDs := make([]string, 0, len(ideas))
	seen := make(map[string]struct{}, len(ideas))
	for i := range ideas {
		if _, ok := seen[ideas[i].AuthorID]; ok {
			continue
		}
		seen[ideas[i].AuthorID] = struct{}{}
		authorIDs = append(authorIDs, ideas[i].AuthorID)
	}
	var authors []models.Staff
	if err := r.selectIn(ctx, &authors, fmt.Sprintf("SELECT %s FROM staff WHERE id IN (?)", staffColumns), authorIDs); err != nil {
		return fmt.Errorf("load idea authors: %w", err)
	}
	authorIndex := make(map[string]models.Staff, len(authors))
	for _, author := range authors {
		authorIndex[author.ID] = author
	}
	for i := range ideas {
		if author, ok := authorIndex[ideas[i].AuthorID]; ok {
			cp := author
			ideas[i].Author = &cp
		}
	}

	return nil
}

func (r *IdeaRepository) selectIn(ctx context.Context, dest interface{}, query string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return r.db.SelectContext(ctx, dest, r.db.Rebind(q), args...)
}
