package service

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
	"github.com/innovex/ideahub-api/pkg/storage"
)

type mockExportIdeaRepo struct {
	ideas map[string][]models.Idea
}

func (m *mockExportIdeaRepo) FindBySemester(ctx context.Context, semesterID string) ([]models.Idea, error) {
	return m.ideas[semesterID], nil
}

type mockExportSemesterResolver struct {
	semesters map[string]*models.Semester
	academics map[string]*models.AcademicInfo
}

func (m *mockExportSemesterResolver) FindSemesterByID(ctx context.Context, id string) (*models.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExportSemesterResolver) FindByIDWithSemesters(ctx context.Context, id string) (*models.AcademicInfo, error) {
	if info, ok := m.academics[id]; ok {
		return info, nil
	}
	return nil, sql.ErrNoRows
}

type fakeExportStorage struct {
	dir string
}

func (f *fakeExportStorage) Save(filename string, data []byte) (string, error) {
	if err := os.WriteFile(filepath.Join(f.dir, filename), data, 0o600); err != nil {
		return "", err
	}
	return filename, nil
}

func (f *fakeExportStorage) Open(filename string) (*os.File, error) {
	return os.Open(filepath.Join(f.dir, filename))
}

func (f *fakeExportStorage) Delete(filename string) error {
	return os.Remove(filepath.Join(f.dir, filename))
}

func (f *fakeExportStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	var removed []string
	cutoff := time.Now().Add(-ttl)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(f.dir, entry.Name())); err == nil {
				removed = append(removed, entry.Name())
			}
		}
	}
	return removed, nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *fakeExportStorage) {
	t.Helper()
	sem := &models.Semester{ID: "sem1", Name: "Fall 2025"}
	author := &models.Staff{ID: "author", Name: "Alice"}
	ideas := &mockExportIdeaRepo{ideas: map[string][]models.Idea{
		"sem1": {
			{
				ID: "idea1", Title: "Better coffee", AuthorID: "author", Author: author,
				SemesterID: "sem1", CreatedAt: time.Now().UTC(),
				Votes:     []models.Vote{{StaffID: "a", IsThumbUp: true}},
				Documents: []models.IdeaDocument{{Name: "proposal.pdf", DocumentType: "pdf", DownloadURL: "https://files.example.com/proposal.pdf"}},
			},
			{
				ID: "idea2", Title: "Quiet room", AuthorID: "author", Author: author,
				SemesterID: "sem1", IsAnonymous: true, CreatedAt: time.Now().UTC(),
			},
		},
	}}
	store := &fakeExportStorage{dir: t.TempDir()}
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	sem2 := &models.Semester{ID: "sem2", Name: "Spring 2026"}
	resolver := &mockExportSemesterResolver{
		semesters: map[string]*models.Semester{"sem1": sem, "sem2": sem2},
		academics: map[string]*models.AcademicInfo{
			"ay1":   {ID: "ay1", Name: "AY 2025-2026", Semesters: []models.Semester{*sem, *sem2}},
			"empty": {ID: "empty", Name: "AY 2099"},
		},
	}
	svc := NewExportService(ideas, resolver, store, signer, ExportConfig{APIPrefix: "/api/v1"}, nil)
	return svc, store
}

func TestExportServiceGenerateWorkbook(t *testing.T) {
	svc, store := newExportServiceForTest(t)

	result, err := svc.GenerateWorkbook(context.Background(), "sem1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/download/"))
	assert.True(t, strings.HasSuffix(result.RelativePath, ".xlsx"))
	assert.True(t, result.ExpiresAt.After(time.Now()))

	file, err := store.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	info, err := file.Stat()
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGenerateArchive(t *testing.T) {
	svc, store := newExportServiceForTest(t)

	result, err := svc.GenerateArchive(context.Background(), "sem1")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".zip"))

	file, err := store.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	raw, err := io.ReadAll(file)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	names := make([]string, len(reader.File))
	for i, entry := range reader.File {
		names[i] = entry.Name
	}
	assert.ElementsMatch(t, []string{"ideas.csv", "documents.csv"}, names)

	for _, entry := range reader.File {
		if entry.Name != "ideas.csv" {
			continue
		}
		rc, err := entry.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Contains(t, string(content), "Better coffee")
		assert.Contains(t, string(content), "Anonymous", "anonymous ideas never leak the author name")
		assert.NotContains(t, strings.Split(string(content), "\n")[2], "Alice")
	}
}

func TestExportServiceGenerateAcademicWorkbook(t *testing.T) {
	svc, store := newExportServiceForTest(t)

	result, err := svc.GenerateAcademicWorkbook(context.Background(), "ay1")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".xlsx"))
	assert.Contains(t, result.RelativePath, "AY_2025-2026")

	file, err := store.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	info, err := file.Stat()
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGenerateAcademicArchive(t *testing.T) {
	svc, store := newExportServiceForTest(t)

	result, err := svc.GenerateAcademicArchive(context.Background(), "ay1")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".zip"))

	file, err := store.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	raw, err := io.ReadAll(file)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	names := make([]string, len(reader.File))
	for i, entry := range reader.File {
		names[i] = entry.Name
	}
	assert.ElementsMatch(t, []string{
		"ideas_AY_2025-2026.xlsx",
		"documents_Fall_2025.csv",
		"documents_Spring_2026.csv",
	}, names)
}

func TestExportServiceAcademicWithoutSemesters(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, err := svc.GenerateAcademicWorkbook(context.Background(), "empty")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	_, err = svc.GenerateAcademicWorkbook(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceUnknownSemester(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, err := svc.GenerateWorkbook(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceTokenRoundTrip(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	result, err := svc.GenerateWorkbook(context.Background(), "sem1")
	require.NoError(t, err)

	_, relPath, expiresAt, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, result.RelativePath, relPath)
	assert.WithinDuration(t, result.ExpiresAt, expiresAt, time.Second)

	// A tampered token fails verification.
	_, _, _, err = svc.ParseToken(result.Token+"x", false)
	require.Error(t, err)
}

func TestExportServiceCleanup(t *testing.T) {
	svc, store := newExportServiceForTest(t)

	result, err := svc.GenerateWorkbook(context.Background(), "sem1")
	require.NoError(t, err)

	// Fresh files survive a cleanup with a generous TTL.
	removed, err := svc.Cleanup(time.Hour)
	require.NoError(t, err)
	assert.Empty(t, removed)

	// Backdate the file and clean again.
	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(store.dir, result.RelativePath), stale, stale))
	removed, err = svc.Cleanup(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{result.RelativePath}, removed)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"":                  "na",
		"Fall 2025":         "Fall_2025",
		"a/b\\c:d":          "a-b-c-d",
		"dots..and__scores": "dots.and_scores",
	}
	for input, want := range cases {
		assert.Equal(t, want, sanitizeFilename(input), "input %q", input)
	}
}
