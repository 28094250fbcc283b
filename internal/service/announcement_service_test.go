package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
)

type mockAnnouncementRepo struct {
	announcements map[string]*models.Announcement
	nextID        int
}

func (m *mockAnnouncementRepo) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	var out []models.Announcement
	for _, a := range m.announcements {
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *mockAnnouncementRepo) FindByID(ctx context.Context, id string) (*models.Announcement, error) {
	if a, ok := m.announcements[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAnnouncementRepo) Create(ctx context.Context, announcement *models.Announcement) error {
	if m.announcements == nil {
		m.announcements = make(map[string]*models.Announcement)
	}
	m.nextID++
	announcement.ID = fmt.Sprintf("announcement%d", m.nextID)
	m.announcements[announcement.ID] = announcement
	return nil
}

func (m *mockAnnouncementRepo) Delete(ctx context.Context, id string) error {
	delete(m.announcements, id)
	return nil
}

type mockAnnouncementStaff struct {
	staff map[string]*models.Staff
}

func (m *mockAnnouncementStaff) FindActive(ctx context.Context) ([]models.Staff, error) {
	var out []models.Staff
	for _, s := range m.staff {
		if s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockAnnouncementStaff) FindByIDs(ctx context.Context, ids []string) ([]models.Staff, error) {
	var out []models.Staff
	for _, id := range ids {
		if s, ok := m.staff[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockAnnouncementStaff) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	if s, ok := m.staff[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockDispatcher struct {
	dispatched [][]models.Staff
}

func (m *mockDispatcher) DispatchAnnouncement(announcement *models.Announcement, recipients []models.Staff) {
	m.dispatched = append(m.dispatched, recipients)
}

const (
	testStaffUUID1 = "0b9f4a52-1f9e-4d7a-9f2c-1a2b3c4d5e6f"
	testStaffUUID2 = "9d3e2f10-8c7b-4a65-b321-0f1e2d3c4b5a"
)

func seedAnnouncementStaff() *mockAnnouncementStaff {
	return &mockAnnouncementStaff{staff: map[string]*models.Staff{
		testStaffUUID1: {ID: testStaffUUID1, Email: "a@example.com", IsActive: true},
		testStaffUUID2: {ID: testStaffUUID2, Email: "b@example.com", IsActive: true},
		"inactive":     {ID: "inactive", Email: "c@example.com", IsActive: false},
	}}
}

func TestAnnouncementServiceCreateAll(t *testing.T) {
	repo := &mockAnnouncementRepo{}
	dispatcher := &mockDispatcher{}
	svc := NewAnnouncementService(repo, seedAnnouncementStaff(), dispatcher, nil, nil)

	announcement, err := svc.Create(context.Background(), "announcer", CreateAnnouncementRequest{
		Subject: "Semester closing", Content: "Submit your ideas", AudienceType: models.AudienceAll,
	})
	require.NoError(t, err)
	assert.Equal(t, "announcer", announcement.AnnouncerID)

	// Only active staff receive the broadcast.
	require.Len(t, dispatcher.dispatched, 1)
	assert.Len(t, dispatcher.dispatched[0], 2)
}

func TestAnnouncementServiceCreateSpecific(t *testing.T) {
	repo := &mockAnnouncementRepo{}
	dispatcher := &mockDispatcher{}
	svc := NewAnnouncementService(repo, seedAnnouncementStaff(), dispatcher, nil, nil)

	_, err := svc.Create(context.Background(), "announcer", CreateAnnouncementRequest{
		Subject: "Heads up", Content: "Your idea was shortlisted",
		AudienceType: models.AudienceSpecific, StaffIDs: []string{testStaffUUID1},
	})
	require.NoError(t, err)
	require.Len(t, dispatcher.dispatched, 1)
	require.Len(t, dispatcher.dispatched[0], 1)
	assert.Equal(t, testStaffUUID1, dispatcher.dispatched[0][0].ID)
}

func TestAnnouncementServiceCreateSpecificMissingStaff(t *testing.T) {
	repo := &mockAnnouncementRepo{}
	svc := NewAnnouncementService(repo, seedAnnouncementStaff(), &mockDispatcher{}, nil, nil)

	_, err := svc.Create(context.Background(), "announcer", CreateAnnouncementRequest{
		Subject: "Heads up", Content: "Hello",
		AudienceType: models.AudienceSpecific,
		StaffIDs:     []string{testStaffUUID1, "5f6e7d8c-9b0a-4321-8765-4a3b2c1d0e9f"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.announcements, "nothing is stored when the audience fails to resolve")
}

func TestAnnouncementServiceCreateSpecificWithoutIDs(t *testing.T) {
	svc := NewAnnouncementService(&mockAnnouncementRepo{}, seedAnnouncementStaff(), &mockDispatcher{}, nil, nil)

	_, err := svc.Create(context.Background(), "announcer", CreateAnnouncementRequest{
		Subject: "Heads up", Content: "Hello", AudienceType: models.AudienceSpecific,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAnnouncementServiceDelete(t *testing.T) {
	repo := &mockAnnouncementRepo{announcements: map[string]*models.Announcement{
		"announcement1": {ID: "announcement1"},
	}}
	svc := NewAnnouncementService(repo, seedAnnouncementStaff(), nil, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "announcement1"))
	assert.Empty(t, repo.announcements)

	err := svc.Delete(ctx, "announcement1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
