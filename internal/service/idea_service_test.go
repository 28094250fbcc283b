package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
)

type mockIdeaRepo struct {
	ideas      map[string]*models.Idea
	categories map[string][]string
	nextID     int
}

func (m *mockIdeaRepo) List(ctx context.Context, filter models.IdeaFilter) ([]models.Idea, int, error) {
	all, _ := m.ListAll(ctx, filter)
	total := len(all)
	pagination := models.NewPagination(filter.Page, filter.PageSize, total)
	start := (pagination.Page - 1) * pagination.PageSize
	if start > total {
		start = total
	}
	end := start + pagination.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *mockIdeaRepo) ListAll(ctx context.Context, filter models.IdeaFilter) ([]models.Idea, error) {
	out := make([]models.Idea, 0, len(m.ideas))
	for i := 1; i <= m.nextID; i++ {
		idea, ok := m.ideas[fmt.Sprintf("idea%d", i)]
		if !ok {
			continue
		}
		if filter.IsHidden != nil && idea.IsHidden != *filter.IsHidden {
			continue
		}
		out = append(out, *idea)
	}
	return out, nil
}

func (m *mockIdeaRepo) FindByID(ctx context.Context, id string) (*models.Idea, error) {
	if idea, ok := m.ideas[id]; ok {
		copied := *idea
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockIdeaRepo) FindByIDWithRelations(ctx context.Context, id string) (*models.Idea, error) {
	return m.FindByID(ctx, id)
}

func (m *mockIdeaRepo) Create(ctx context.Context, idea *models.Idea) error {
	if m.ideas == nil {
		m.ideas = make(map[string]*models.Idea)
	}
	m.nextID++
	idea.ID = fmt.Sprintf("idea%d", m.nextID)
	idea.CreatedAt = time.Now().UTC()
	m.ideas[idea.ID] = idea
	return nil
}

func (m *mockIdeaRepo) Update(ctx context.Context, idea *models.Idea) error {
	m.ideas[idea.ID] = idea
	return nil
}

func (m *mockIdeaRepo) Delete(ctx context.Context, id string) error {
	delete(m.ideas, id)
	return nil
}

func (m *mockIdeaRepo) AttachCategories(ctx context.Context, ideaID string, categoryIDs []string) error {
	if m.categories == nil {
		m.categories = make(map[string][]string)
	}
	m.categories[ideaID] = append(m.categories[ideaID], categoryIDs...)
	return nil
}

func (m *mockIdeaRepo) ReplaceCategories(ctx context.Context, ideaID string, categoryIDs []string) error {
	if m.categories == nil {
		m.categories = make(map[string][]string)
	}
	m.categories[ideaID] = categoryIDs
	return nil
}

func (m *mockIdeaRepo) AddDocument(ctx context.Context, doc *models.IdeaDocument) error {
	doc.ID = "doc1"
	idea := m.ideas[doc.IdeaID]
	idea.Documents = append(idea.Documents, *doc)
	return nil
}

type mockViewRepo struct {
	recorded map[string]int
}

func (m *mockViewRepo) Record(ctx context.Context, staffID, ideaID string) error {
	if m.recorded == nil {
		m.recorded = make(map[string]int)
	}
	m.recorded[staffID+"/"+ideaID]++
	return nil
}

type mockSemesterResolver struct {
	semester *models.Semester
}

func (m *mockSemesterResolver) FindCurrentSemester(ctx context.Context, now time.Time) (*models.Semester, error) {
	if m.semester == nil {
		return nil, sql.ErrNoRows
	}
	copied := *m.semester
	return &copied, nil
}

type mockStaffResolver struct {
	staff map[string]*models.Staff
}

func (m *mockStaffResolver) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	if s, ok := m.staff[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStaffResolver) FindByDepartmentAndRole(ctx context.Context, departmentID string, role models.StaffRole) ([]models.Staff, error) {
	var out []models.Staff
	for _, s := range m.staff {
		if s.DepartmentID != nil && *s.DepartmentID == departmentID && s.Role == role {
			out = append(out, *s)
		}
	}
	return out, nil
}

type mockCategoryResolver struct {
	known map[string]bool
}

func (m *mockCategoryResolver) FindByID(ctx context.Context, id string) (*models.Category, error) {
	if m.known[id] {
		return &models.Category{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

type mockIdeaNotifier struct {
	submitted []string
}

func (m *mockIdeaNotifier) NotifyIdeaSubmitted(coordinator *models.Staff, author *models.Staff, idea *models.Idea) {
	m.submitted = append(m.submitted, coordinator.ID)
}

type mockStatsInvalidator struct {
	patterns []string
}

func (m *mockStatsInvalidator) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func newIdeaServiceForTest(repo *mockIdeaRepo, views *mockViewRepo, semesters *mockSemesterResolver, staff *mockStaffResolver, notifier *mockIdeaNotifier) *IdeaService {
	if views == nil {
		views = &mockViewRepo{}
	}
	if semesters == nil {
		semesters = &mockSemesterResolver{}
	}
	if staff == nil {
		staff = &mockStaffResolver{}
	}
	if notifier == nil {
		notifier = &mockIdeaNotifier{}
	}
	return NewIdeaService(repo, views, semesters, staff, &mockCategoryResolver{known: map[string]bool{}}, notifier, &mockStatsInvalidator{}, validator.New(), zap.NewNop())
}

func seedIdeasWithVotes(counts []int) *mockIdeaRepo {
	repo := &mockIdeaRepo{ideas: make(map[string]*models.Idea)}
	for i, likes := range counts {
		id := fmt.Sprintf("idea%d", i+1)
		idea := &models.Idea{ID: id, Title: id, AuthorID: "author", SemesterID: "sem1"}
		for v := 0; v < likes; v++ {
			idea.Votes = append(idea.Votes, models.Vote{StaffID: fmt.Sprintf("staff%d", v), IdeaID: id, IsThumbUp: true})
		}
		repo.ideas[id] = idea
		repo.nextID = i + 1
	}
	return repo
}

func TestIdeaServiceListDerivedSortPagination(t *testing.T) {
	// Seven ideas with distinct vote results; sorting by vote result
	// descending and asking for page 2 of size 3 must return ranks 4 to 6
	// while the pagination reflects the whole filtered set.
	repo := seedIdeasWithVotes([]int{3, 7, 1, 5, 2, 6, 4})
	svc := newIdeaServiceForTest(repo, nil, nil, nil, nil)

	views, pagination, err := svc.List(context.Background(), models.IdeaFilter{
		SortBy: models.SortKeyVoteResult, SortOrder: "desc", Page: 2, PageSize: 3,
	}, "viewer")
	require.NoError(t, err)

	require.Len(t, views, 3)
	assert.Equal(t, []int{4, 3, 2}, []int{views[0].VoteResult, views[1].VoteResult, views[2].VoteResult})
	assert.Equal(t, 7, pagination.TotalCount)
	assert.Equal(t, 3, pagination.TotalPages)
}

func TestIdeaServiceListDerivedSortLastPageShortSlice(t *testing.T) {
	repo := seedIdeasWithVotes([]int{3, 7, 1, 5, 2, 6, 4})
	svc := newIdeaServiceForTest(repo, nil, nil, nil, nil)

	views, pagination, err := svc.List(context.Background(), models.IdeaFilter{
		SortBy: models.SortKeyTotalLikes, SortOrder: "desc", Page: 3, PageSize: 3,
	}, "viewer")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 1, views[0].TotalLikes)
	assert.Equal(t, 7, pagination.TotalCount)
}

func TestIdeaServiceGetRecordsView(t *testing.T) {
	repo := seedIdeasWithVotes([]int{2})
	viewRepo := &mockViewRepo{}
	svc := newIdeaServiceForTest(repo, viewRepo, nil, nil, nil)

	_, err := svc.Get(context.Background(), "idea1", "viewer", false)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), "idea1", "viewer", false)
	require.NoError(t, err)

	assert.Equal(t, 2, viewRepo.recorded["viewer/idea1"], "recording is delegated; dedup happens in storage")
}

func TestIdeaServiceGetHiddenIdea(t *testing.T) {
	repo := seedIdeasWithVotes([]int{2})
	repo.ideas["idea1"].IsHidden = true
	viewRepo := &mockViewRepo{}
	svc := newIdeaServiceForTest(repo, viewRepo, nil, nil, nil)
	ctx := context.Background()

	// A regular viewer gets not-found, and the denied lookup never counts
	// as a view.
	_, err := svc.Get(ctx, "idea1", "stranger", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Zero(t, viewRepo.recorded["stranger/idea1"])

	// The author and moderators still see it.
	_, err = svc.Get(ctx, "idea1", "author", false)
	require.NoError(t, err)
	_, err = svc.Get(ctx, "idea1", "moderator", true)
	require.NoError(t, err)
}

func TestIdeaServiceWritesInvalidateStatsCache(t *testing.T) {
	repo := &mockIdeaRepo{ideas: make(map[string]*models.Idea)}
	now := time.Now().UTC()
	semesters := &mockSemesterResolver{semester: &models.Semester{
		ID:               "sem1",
		StartDate:        now.Add(-24 * time.Hour),
		ClosureDate:      now.Add(24 * time.Hour),
		FinalClosureDate: now.Add(48 * time.Hour),
	}}
	invalidator := &mockStatsInvalidator{}
	svc := NewIdeaService(repo, &mockViewRepo{}, semesters, &mockStaffResolver{}, &mockCategoryResolver{}, &mockIdeaNotifier{}, invalidator, validator.New(), zap.NewNop())
	ctx := context.Background()

	idea, err := svc.Create(ctx, "author", CreateIdeaRequest{Title: "Better coffee", Description: "Fresh beans"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, idea.ID, "author", false))

	// Both writes dropped the cached statistics.
	assert.Equal(t, []string{"stats:*", "stats:*"}, invalidator.patterns)
}

func TestIdeaServiceEngagementLikeStatus(t *testing.T) {
	idea := &models.Idea{
		ID: "idea1",
		Votes: []models.Vote{
			{StaffID: "a", IsThumbUp: true},
			{StaffID: "b", IsThumbUp: false},
			{StaffID: "c", IsThumbUp: true},
		},
		Comments: []models.Comment{{ID: "c1"}},
		Views:    []models.View{{StaffID: "a"}, {StaffID: "b"}},
	}

	eng := aggregateEngagement(idea, "b")
	assert.Equal(t, 2, eng.TotalLikes)
	assert.Equal(t, 1, eng.TotalDisLikes)
	assert.Equal(t, 1, eng.VoteResult)
	assert.Equal(t, 1, eng.TotalComments)
	assert.Equal(t, 2, eng.TotalViewCount)
	assert.Equal(t, models.LikeStatusDislike, eng.LikeStatus)

	assert.Equal(t, models.LikeStatusNone, aggregateEngagement(idea, "z").LikeStatus)
}

func TestIdeaServiceCreateWithinWindow(t *testing.T) {
	repo := &mockIdeaRepo{ideas: make(map[string]*models.Idea)}
	now := time.Now().UTC()
	semesters := &mockSemesterResolver{semester: &models.Semester{
		ID:               "sem1",
		StartDate:        now.Add(-24 * time.Hour),
		ClosureDate:      now.Add(24 * time.Hour),
		FinalClosureDate: now.Add(48 * time.Hour),
	}}
	dept := "dept1"
	staff := &mockStaffResolver{staff: map[string]*models.Staff{
		"author":      {ID: "author", DepartmentID: &dept, Role: models.RoleStaff},
		"coordinator": {ID: "coordinator", DepartmentID: &dept, Role: models.RoleQACoordinator},
	}}
	notifier := &mockIdeaNotifier{}
	svc := newIdeaServiceForTest(repo, nil, semesters, staff, notifier)

	view, err := svc.Create(context.Background(), "author", CreateIdeaRequest{
		Title: "Better coffee", Description: "Replace the machine",
	})
	require.NoError(t, err)
	assert.Equal(t, "sem1", view.SemesterID)
	assert.Equal(t, []string{"coordinator"}, notifier.submitted)
}

func TestIdeaServiceCreateAfterClosure(t *testing.T) {
	now := time.Now().UTC()
	semesters := &mockSemesterResolver{semester: &models.Semester{
		ID:               "sem1",
		StartDate:        now.Add(-72 * time.Hour),
		ClosureDate:      now.Add(-24 * time.Hour),
		FinalClosureDate: now.Add(24 * time.Hour),
	}}
	svc := newIdeaServiceForTest(&mockIdeaRepo{}, nil, semesters, nil, nil)

	_, err := svc.Create(context.Background(), "author", CreateIdeaRequest{
		Title: "Too late", Description: "The window closed",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestIdeaServiceCreateNoOngoingSemester(t *testing.T) {
	svc := newIdeaServiceForTest(&mockIdeaRepo{}, nil, &mockSemesterResolver{}, nil, nil)

	_, err := svc.Create(context.Background(), "author", CreateIdeaRequest{
		Title: "No home", Description: "Nowhere to land",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestIdeaServiceUpdateAuthorOnly(t *testing.T) {
	repo := seedIdeasWithVotes([]int{0})
	svc := newIdeaServiceForTest(repo, nil, nil, nil, nil)

	_, err := svc.Update(context.Background(), "idea1", "intruder", UpdateIdeaRequest{
		Title: "Hijacked", Description: "Nope",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestIdeaServiceDeleteByModerator(t *testing.T) {
	repo := seedIdeasWithVotes([]int{0})
	svc := newIdeaServiceForTest(repo, nil, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "idea1", "moderator", true))
	assert.NotContains(t, repo.ideas, "idea1")
}
