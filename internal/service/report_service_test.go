package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
)

type mockReportRepo struct {
	reports map[string]*models.Report
	nextID  int
}

func (m *mockReportRepo) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, int, error) {
	var out []models.Report
	for _, r := range m.reports {
		if filter.IdeaID != "" && r.IdeaID != filter.IdeaID {
			continue
		}
		if filter.State != "" && r.State() != filter.State {
			continue
		}
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *mockReportRepo) FindByID(ctx context.Context, id string) (*models.Report, error) {
	if r, ok := m.reports[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportRepo) ExistsByStaffAndIdea(ctx context.Context, staffID, ideaID string) (bool, error) {
	for _, r := range m.reports {
		if r.ReportedByID == staffID && r.IdeaID == ideaID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockReportRepo) Create(ctx context.Context, report *models.Report) error {
	if m.reports == nil {
		m.reports = make(map[string]*models.Report)
	}
	m.nextID++
	report.ID = fmt.Sprintf("report%d", m.nextID)
	report.CreatedAt = time.Now().UTC()
	m.reports[report.ID] = report
	return nil
}

func (m *mockReportRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.reports[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.reports, id)
	return nil
}

func (m *mockReportRepo) Resolve(ctx context.Context, id string, approved bool, reviewerID string) error {
	r, ok := m.reports[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now().UTC()
	r.IsApproved = &approved
	r.ApprovedByID = &reviewerID
	r.ApprovedAt = &now
	return nil
}

type mockReportIdeaModerator struct {
	ideas map[string]*models.Idea
}

func (m *mockReportIdeaModerator) FindByID(ctx context.Context, id string) (*models.Idea, error) {
	if idea, ok := m.ideas[id]; ok {
		copied := *idea
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportIdeaModerator) SetHidden(ctx context.Context, id string, hidden bool) error {
	idea, ok := m.ideas[id]
	if !ok {
		return sql.ErrNoRows
	}
	idea.IsHidden = hidden
	return nil
}

func seedReportIdeas() *mockReportIdeaModerator {
	return &mockReportIdeaModerator{ideas: map[string]*models.Idea{
		"idea1": {ID: "idea1", AuthorID: "author"},
		"idea2": {ID: "idea2", AuthorID: "author"},
	}}
}

func TestReportServiceCreate(t *testing.T) {
	repo := &mockReportRepo{}
	svc := NewReportService(repo, seedReportIdeas(), nil, nil)
	ctx := context.Background()

	report, err := svc.Create(ctx, "idea1", "reporter", CreateReportRequest{Reason: "offensive content"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatePending, report.State())

	// Same staff member cannot report the same idea twice.
	_, err = svc.Create(ctx, "idea1", "reporter", CreateReportRequest{Reason: "still offensive"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// A different staff member can.
	_, err = svc.Create(ctx, "idea1", "other", CreateReportRequest{Reason: "offensive content"})
	require.NoError(t, err)
}

func TestReportServiceCreateOwnIdea(t *testing.T) {
	svc := NewReportService(&mockReportRepo{}, seedReportIdeas(), nil, nil)

	_, err := svc.Create(context.Background(), "idea1", "author", CreateReportRequest{Reason: "self report"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceApproveStampsWithoutHiding(t *testing.T) {
	repo := &mockReportRepo{}
	ideas := seedReportIdeas()
	svc := NewReportService(repo, ideas, nil, nil)
	ctx := context.Background()

	report, err := svc.Create(ctx, "idea1", "reporter", CreateReportRequest{Reason: "offensive content"})
	require.NoError(t, err)

	resolved, err := svc.Approve(ctx, report.ID, "reviewer")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStateApproved, resolved.State())
	require.NotNil(t, resolved.ApprovedByID)
	assert.Equal(t, "reviewer", *resolved.ApprovedByID)
	require.NotNil(t, resolved.ApprovedAt)

	// Visibility is a separate decision; approving alone never hides.
	assert.False(t, ideas.ideas["idea1"].IsHidden)
}

func TestReportServiceRejectKeepsIdeaVisible(t *testing.T) {
	repo := &mockReportRepo{}
	ideas := seedReportIdeas()
	svc := NewReportService(repo, ideas, nil, nil)
	ctx := context.Background()

	report, err := svc.Create(ctx, "idea1", "reporter", CreateReportRequest{Reason: "offensive content"})
	require.NoError(t, err)

	resolved, err := svc.Reject(ctx, report.ID, "reviewer")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStateRejected, resolved.State())
	assert.False(t, ideas.ideas["idea1"].IsHidden)
}

func TestReportServiceResolveOnce(t *testing.T) {
	repo := &mockReportRepo{}
	svc := NewReportService(repo, seedReportIdeas(), nil, nil)
	ctx := context.Background()

	report, err := svc.Create(ctx, "idea1", "reporter", CreateReportRequest{Reason: "offensive content"})
	require.NoError(t, err)

	_, err = svc.Reject(ctx, report.ID, "reviewer")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, report.ID, "reviewer")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestReportServiceHideUnhide(t *testing.T) {
	repo := &mockReportRepo{}
	ideas := seedReportIdeas()
	svc := NewReportService(repo, ideas, nil, nil)
	ctx := context.Background()

	report, err := svc.Create(ctx, "idea1", "reporter", CreateReportRequest{Reason: "offensive content"})
	require.NoError(t, err)

	require.NoError(t, svc.Hide(ctx, report.ID))
	assert.True(t, ideas.ideas["idea1"].IsHidden)
	assert.False(t, ideas.ideas["idea2"].IsHidden, "other ideas by the same author stay visible")

	// Hiding does not resolve the report.
	loaded, err := svc.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatePending, loaded.State())

	require.NoError(t, svc.Unhide(ctx, report.ID))
	assert.False(t, ideas.ideas["idea1"].IsHidden)
}

func TestReportServiceDelete(t *testing.T) {
	repo := &mockReportRepo{}
	ideas := seedReportIdeas()
	svc := NewReportService(repo, ideas, nil, nil)
	ctx := context.Background()

	report, err := svc.Create(ctx, "idea1", "reporter", CreateReportRequest{Reason: "offensive content"})
	require.NoError(t, err)
	require.NoError(t, svc.Hide(ctx, report.ID))

	require.NoError(t, svc.Delete(ctx, report.ID))
	_, err = svc.Get(ctx, report.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	// Deleting the report leaves the idea's visibility as it was.
	assert.True(t, ideas.ideas["idea1"].IsHidden)

	err = svc.Delete(ctx, report.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportServiceListFilterByState(t *testing.T) {
	repo := &mockReportRepo{}
	svc := NewReportService(repo, seedReportIdeas(), nil, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, "idea1", "reporter", CreateReportRequest{Reason: "offensive content"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "idea2", "reporter", CreateReportRequest{Reason: "spam posting"})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, first.ID, "reviewer")
	require.NoError(t, err)

	pending, pagination, err := svc.List(ctx, models.ReportFilter{State: models.ReportStatePending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "idea2", pending[0].IdeaID)
	require.NotNil(t, pending[0].Idea)
	assert.Equal(t, 1, pagination.TotalCount)
}
