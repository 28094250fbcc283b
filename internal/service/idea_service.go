package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
)

type ideaRepository interface {
	List(ctx context.Context, filter models.IdeaFilter) ([]models.Idea, int, error)
	ListAll(ctx context.Context, filter models.IdeaFilter) ([]models.Idea, error)
	FindByID(ctx context.Context, id string) (*models.Idea, error)
	FindByIDWithRelations(ctx context.Context, id string) (*models.Idea, error)
	Create(ctx context.Context, idea *models.Idea) error
	Update(ctx context.Context, idea *models.Idea) error
	Delete(ctx context.Context, id string) error
	AttachCategories(ctx context.Context, ideaID string, categoryIDs []string) error
	ReplaceCategories(ctx context.Context, ideaID string, categoryIDs []string) error
	AddDocument(ctx context.Context, doc *models.IdeaDocument) error
}

type ideaViewRepository interface {
	Record(ctx context.Context, staffID, ideaID string) error
}

type ideaSemesterResolver interface {
	FindCurrentSemester(ctx context.Context, now time.Time) (*models.Semester, error)
}

type ideaStaffResolver interface {
	FindByID(ctx context.Context, id string) (*models.Staff, error)
	FindByDepartmentAndRole(ctx context.Context, departmentID string, role models.StaffRole) ([]models.Staff, error)
}

type ideaCategoryResolver interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
}

type ideaNotifier interface {
	NotifyIdeaSubmitted(coordinator *models.Staff, author *models.Staff, idea *models.Idea)
}

type statsCacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateIdeaRequest holds payload for submitting ideas.
type CreateIdeaRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"required"`
	IsAnonymous bool     `json:"is_anonymous"`
	CategoryIDs []string `json:"category_ids" validate:"omitempty,dive,uuid"`
}

// UpdateIdeaRequest holds payload for editing ideas.
type UpdateIdeaRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"required"`
	IsAnonymous bool     `json:"is_anonymous"`
	CategoryIDs []string `json:"category_ids" validate:"omitempty,dive,uuid"`
}

// AddIdeaDocumentRequest attaches an uploaded document reference.
type AddIdeaDocumentRequest struct {
	Name         string `json:"name" validate:"required"`
	DocumentType string `json:"document_type" validate:"required"`
	DownloadURL  string `json:"download_url" validate:"required,url"`
	DeleteURL    string `json:"delete_url" validate:"omitempty,url"`
}

// IdeaService orchestrates idea workflows: submission windows, engagement
// aggregation and the dual pagination paths.
type IdeaService struct {
	repo       ideaRepository
	views      ideaViewRepository
	semesters  ideaSemesterResolver
	staff      ideaStaffResolver
	categories ideaCategoryResolver
	notifier   ideaNotifier
	statsCache statsCacheInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewIdeaService creates an idea service instance. statsCache may be nil;
// when set, idea writes drop cached statistics so reports never serve a
// stale idea count for a full TTL.
func NewIdeaService(
	repo ideaRepository,
	views ideaViewRepository,
	semesters ideaSemesterResolver,
	staff ideaStaffResolver,
	categories ideaCategoryResolver,
	notifier ideaNotifier,
	statsCache statsCacheInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *IdeaService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdeaService{
		repo:       repo,
		views:      views,
		semesters:  semesters,
		staff:      staff,
		categories: categories,
		notifier:   notifier,
		statsCache: statsCache,
		validator:  validate,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// List returns display-ready ideas. Sorts on persisted columns run in SQL
// with LIMIT/OFFSET; sorts on derived engagement counters fetch the full
// filtered set, aggregate, order in memory and slice afterwards. Counts
// always reflect the full filtered set.
func (s *IdeaService) List(ctx context.Context, filter models.IdeaFilter, viewerID string) ([]models.IdeaView, *models.Pagination, error) {
	if models.IsDerivedSortKey(filter.SortBy) {
		return s.listByDerivedSort(ctx, filter, viewerID)
	}

	ideas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ideas")
	}

	views := make([]models.IdeaView, len(ideas))
	for i := range ideas {
		views[i] = models.IdeaView{Idea: ideas[i], Engagement: aggregateEngagement(&ideas[i], viewerID)}
	}
	return views, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

func (s *IdeaService) listByDerivedSort(ctx context.Context, filter models.IdeaFilter, viewerID string) ([]models.IdeaView, *models.Pagination, error) {
	ideas, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ideas")
	}

	views := make([]models.IdeaView, len(ideas))
	for i := range ideas {
		views[i] = models.IdeaView{Idea: ideas[i], Engagement: aggregateEngagement(&ideas[i], viewerID)}
	}

	asc := filter.SortOrder == "asc" || filter.SortOrder == "ASC"
	key := derivedSortValue(filter.SortBy)
	sort.SliceStable(views, func(i, j int) bool {
		a, b := key(&views[i].Engagement), key(&views[j].Engagement)
		if asc {
			return a < b
		}
		return a > b
	})

	total := len(views)
	pagination := models.NewPagination(filter.Page, filter.PageSize, total)

	start := (pagination.Page - 1) * pagination.PageSize
	if start > total {
		start = total
	}
	end := start + pagination.PageSize
	if end > total {
		end = total
	}
	return views[start:end], pagination, nil
}

// Get loads one idea, records the caller's view and returns the idea with
// engagement reflecting that view. A hidden idea reads as not-found unless
// the caller authored it or canViewHidden is set; denied lookups leave the
// viewer count untouched.
func (s *IdeaService) Get(ctx context.Context, id, viewerID string, canViewHidden bool) (*models.IdeaView, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "idea not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea")
	}
	if found.IsHidden && !canViewHidden && found.AuthorID != viewerID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "idea not found")
	}

	// Recording before the relation load keeps the returned view count
	// consistent with what the caller just did. Repeat views are no-ops.
	if viewerID != "" {
		if err := s.views.Record(ctx, viewerID, id); err != nil {
			s.logger.Warn("failed to record idea view", zap.String("idea_id", id), zap.Error(err))
		}
	}

	idea, err := s.repo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea")
	}

	view := models.IdeaView{Idea: *idea, Engagement: aggregateEngagement(idea, viewerID)}
	return &view, nil
}

// Create submits a new idea into the current semester. Submissions close at
// the semester's closure date; comments stay open until final closure.
func (s *IdeaService) Create(ctx context.Context, authorID string, req CreateIdeaRequest) (*models.IdeaView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid idea payload")
	}

	now := s.now()
	semester, err := s.semesters.FindCurrentSemester(ctx, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no ongoing semester accepts ideas")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve current semester")
	}
	if now.After(semester.ClosureDate) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "idea submission is closed for the current semester")
	}

	for _, categoryID := range req.CategoryIDs {
		if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
		}
	}

	idea := &models.Idea{
		Title:       req.Title,
		Description: req.Description,
		AuthorID:    authorID,
		SemesterID:  semester.ID,
		IsAnonymous: req.IsAnonymous,
	}
	if err := s.repo.Create(ctx, idea); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create idea")
	}
	if len(req.CategoryIDs) > 0 {
		if err := s.repo.AttachCategories(ctx, idea.ID, req.CategoryIDs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach idea categories")
		}
	}

	s.notifyCoordinator(ctx, idea)
	s.invalidateStats(ctx)

	full, err := s.repo.FindByIDWithRelations(ctx, idea.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load created idea")
	}
	view := models.IdeaView{Idea: *full, Engagement: aggregateEngagement(full, authorID)}
	return &view, nil
}

// Update edits an idea; only the author may change it.
func (s *IdeaService) Update(ctx context.Context, id, actorID string, req UpdateIdeaRequest) (*models.IdeaView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid idea payload")
	}

	idea, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "idea not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea")
	}
	if idea.AuthorID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author can edit an idea")
	}

	idea.Title = req.Title
	idea.Description = req.Description
	idea.IsAnonymous = req.IsAnonymous
	if err := s.repo.Update(ctx, idea); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update idea")
	}
	if req.CategoryIDs != nil {
		if err := s.repo.ReplaceCategories(ctx, id, req.CategoryIDs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update idea categories")
		}
	}

	s.invalidateStats(ctx)

	full, err := s.repo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load updated idea")
	}
	view := models.IdeaView{Idea: *full, Engagement: aggregateEngagement(full, actorID)}
	return &view, nil
}

// Delete removes an idea. The author or a moderator may delete it; the
// handler gates the moderator roles.
func (s *IdeaService) Delete(ctx context.Context, id, actorID string, isModerator bool) error {
	idea, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "idea not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea")
	}
	if idea.AuthorID != actorID && !isModerator {
		return appErrors.Clone(appErrors.ErrForbidden, "not allowed to delete this idea")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete idea")
	}
	s.invalidateStats(ctx)
	return nil
}

// AddDocument attaches an uploaded document reference to the idea.
func (s *IdeaService) AddDocument(ctx context.Context, ideaID, actorID string, req AddIdeaDocumentRequest) (*models.IdeaDocument, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}

	idea, err := s.repo.FindByID(ctx, ideaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "idea not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load idea")
	}
	if idea.AuthorID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author can attach documents")
	}

	doc := &models.IdeaDocument{
		IdeaID:       ideaID,
		Name:         req.Name,
		DocumentType: req.DocumentType,
		DownloadURL:  req.DownloadURL,
		DeleteURL:    req.DeleteURL,
	}
	if err := s.repo.AddDocument(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add idea document")
	}
	return doc, nil
}

// invalidateStats drops cached statistics after an idea write. Best effort:
// a failed invalidation only means reports stay stale until the cache TTL.
func (s *IdeaService) invalidateStats(ctx context.Context) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.DeleteByPattern(ctx, "stats:*"); err != nil {
		s.logger.Warn("failed to invalidate cached statistics", zap.Error(err))
	}
}

func (s *IdeaService) notifyCoordinator(ctx context.Context, idea *models.Idea) {
	if s.notifier == nil {
		return
	}
	author, err := s.staff.FindByID(ctx, idea.AuthorID)
	if err != nil {
		s.logger.Warn("failed to load idea author for notification", zap.Error(err))
		return
	}
	if author.DepartmentID == nil {
		return
	}
	coordinators, err := s.staff.FindByDepartmentAndRole(ctx, *author.DepartmentID, models.RoleQACoordinator)
	if err != nil {
		s.logger.Warn("failed to load department coordinator", zap.Error(err))
		return
	}
	for i := range coordinators {
		s.notifier.NotifyIdeaSubmitted(&coordinators[i], author, idea)
	}
}

// aggregateEngagement derives the display counters from the eagerly loaded
// relations. voteResult is likes minus dislikes; likeStatus reflects the
// viewer's own vote.
func aggregateEngagement(idea *models.Idea, viewerID string) models.Engagement {
	eng := models.Engagement{LikeStatus: models.LikeStatusNone}
	for _, vote := range idea.Votes {
		if vote.IsThumbUp {
			eng.TotalLikes++
		} else {
			eng.TotalDisLikes++
		}
		if viewerID != "" && vote.StaffID == viewerID {
			if vote.IsThumbUp {
				eng.LikeStatus = models.LikeStatusLike
			} else {
				eng.LikeStatus = models.LikeStatusDislike
			}
		}
	}
	eng.VoteResult = eng.TotalLikes - eng.TotalDisLikes
	eng.TotalComments = len(idea.Comments)
	eng.TotalViewCount = len(idea.Views)
	return eng
}

func derivedSortValue(key string) func(*models.Engagement) int {
	switch key {
	case models.SortKeyTotalLikes:
		return func(e *models.Engagement) int { return e.TotalLikes }
	case models.SortKeyTotalDisLikes:
		return func(e *models.Engagement) int { return e.TotalDisLikes }
	case models.SortKeyTotalComments:
		return func(e *models.Engagement) int { return e.TotalComments }
	case models.SortKeyTotalViewCount:
		return func(e *models.Engagement) int { return e.TotalViewCount }
	default:
		return func(e *models.Engagement) int { return e.VoteResult }
	}
}
