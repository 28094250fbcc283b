package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
)

type mockVoteRepo struct {
	votes   map[string]*models.Vote
	upserts int
}

func voteKey(staffID, ideaID string) string { return staffID + "/" + ideaID }

func (m *mockVoteRepo) FindByStaffAndIdea(ctx context.Context, staffID, ideaID string) (*models.Vote, error) {
	if v, ok := m.votes[voteKey(staffID, ideaID)]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockVoteRepo) Upsert(ctx context.Context, vote *models.Vote) error {
	if m.votes == nil {
		m.votes = make(map[string]*models.Vote)
	}
	m.upserts++
	if vote.ID == "" {
		vote.ID = voteKey(vote.StaffID, vote.IdeaID)
	}
	m.votes[voteKey(vote.StaffID, vote.IdeaID)] = vote
	return nil
}

func (m *mockVoteRepo) Delete(ctx context.Context, staffID, ideaID string) error {
	delete(m.votes, voteKey(staffID, ideaID))
	return nil
}

type mockVoteIdeaResolver struct {
	ideas map[string]bool
}

func (m *mockVoteIdeaResolver) FindByID(ctx context.Context, id string) (*models.Idea, error) {
	if m.ideas[id] {
		return &models.Idea{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

func newVoteServiceForTest(repo *mockVoteRepo) *VoteService {
	return NewVoteService(repo, &mockVoteIdeaResolver{ideas: map[string]bool{"idea1": true}}, nil, nil)
}

func boolPtr(b bool) *bool { return &b }

func TestVoteServiceCastAndFlip(t *testing.T) {
	repo := &mockVoteRepo{}
	svc := newVoteServiceForTest(repo)
	ctx := context.Background()

	status, err := svc.Cast(ctx, "staff1", "idea1", CastVoteRequest{IsThumbUp: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, models.LikeStatusLike, status)

	// Same direction again: idempotent, the row is reused.
	status, err = svc.Cast(ctx, "staff1", "idea1", CastVoteRequest{IsThumbUp: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, models.LikeStatusLike, status)
	assert.Len(t, repo.votes, 1)

	// Opposite direction flips in place.
	status, err = svc.Cast(ctx, "staff1", "idea1", CastVoteRequest{IsThumbUp: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, models.LikeStatusDislike, status)
	assert.Len(t, repo.votes, 1)
	assert.False(t, repo.votes["staff1/idea1"].IsThumbUp)
}

func TestVoteServiceCastRequiresDirection(t *testing.T) {
	svc := newVoteServiceForTest(&mockVoteRepo{})

	_, err := svc.Cast(context.Background(), "staff1", "idea1", CastVoteRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestVoteServiceCastUnknownIdea(t *testing.T) {
	svc := newVoteServiceForTest(&mockVoteRepo{})

	_, err := svc.Cast(context.Background(), "staff1", "missing", CastVoteRequest{IsThumbUp: boolPtr(true)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestVoteServiceRetract(t *testing.T) {
	repo := &mockVoteRepo{}
	svc := newVoteServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Cast(ctx, "staff1", "idea1", CastVoteRequest{IsThumbUp: boolPtr(true)})
	require.NoError(t, err)

	status, err := svc.Retract(ctx, "staff1", "idea1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeStatusNone, status)
	assert.Empty(t, repo.votes)

	// Retracting again is a no-op.
	status, err = svc.Retract(ctx, "staff1", "idea1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeStatusNone, status)
}

func TestVoteServiceStatus(t *testing.T) {
	repo := &mockVoteRepo{}
	svc := newVoteServiceForTest(repo)
	ctx := context.Background()

	status, err := svc.Status(ctx, "staff1", "idea1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeStatusNone, status)

	_, err = svc.Cast(ctx, "staff1", "idea1", CastVoteRequest{IsThumbUp: boolPtr(false)})
	require.NoError(t, err)

	status, err = svc.Status(ctx, "staff1", "idea1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeStatusDislike, status)
}
