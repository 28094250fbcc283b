package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/innovex/ideahub-api/internal/models"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
	"github.com/innovex/ideahub-api/pkg/export"
	"github.com/innovex/ideahub-api/pkg/storage"
)

type exportIdeaRepository interface {
	FindBySemester(ctx context.Context, semesterID string) ([]models.Idea, error)
}

type exportSemesterResolver interface {
	FindSemesterByID(ctx context.Context, id string) (*models.Semester, error)
	FindByIDWithSemesters(ctx context.Context, id string) (*models.AcademicInfo, error)
}

type exportFileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type workbookRenderer interface {
	Render(sheets []export.Sheet) ([]byte, error)
}

type archiveRenderer interface {
	Render(entries []export.ArchiveEntry) ([]byte, error)
}

type manifestRenderer interface {
	Render(sheet export.Sheet) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	ExpiresAt    time.Time
}

// ExportService renders idea exports. An academic year export produces one
// workbook with a worksheet per semester; a semester export narrows to one
// sheet. Archives bundle the spreadsheet content as CSV together with a
// manifest of uploaded documents. Files land in local storage and are
// served through expiring signed URLs.
type ExportService struct {
	ideas     exportIdeaRepository
	semesters exportSemesterResolver
	storage   exportFileStorage
	workbook  workbookRenderer
	archive   archiveRenderer
	manifest  manifestRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(
	ideas exportIdeaRepository,
	semesters exportSemesterResolver,
	store exportFileStorage,
	signer *storage.SignedURLSigner,
	cfg ExportConfig,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		ideas:     ideas,
		semesters: semesters,
		storage:   store,
		workbook:  export.NewWorkbookExporter(),
		archive:   export.NewArchiveExporter(),
		manifest:  export.NewCSVExporter(),
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// GenerateWorkbook renders the semester's ideas into a spreadsheet and
// stores it behind a signed download URL.
func (s *ExportService) GenerateWorkbook(ctx context.Context, semesterID string) (*ExportResult, error) {
	semester, ideas, err := s.loadSemesterIdeas(ctx, semesterID)
	if err != nil {
		return nil, err
	}

	payload, err := s.workbook.Render([]export.Sheet{ideaSheet(semester, ideas)})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render workbook")
	}

	filename := buildExportFilename("ideas", semester.Name, "xlsx")
	return s.store(filename, payload)
}

// GenerateArchive bundles the semester's ideas CSV and a document manifest
// into a zip archive behind a signed download URL.
func (s *ExportService) GenerateArchive(ctx context.Context, semesterID string) (*ExportResult, error) {
	semester, ideas, err := s.loadSemesterIdeas(ctx, semesterID)
	if err != nil {
		return nil, err
	}

	ideasCSV, err := s.manifest.Render(ideaSheet(semester, ideas))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ideas csv")
	}
	documentsCSV, err := s.manifest.Render(documentSheet(ideas))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render documents csv")
	}

	payload, err := s.archive.Render([]export.ArchiveEntry{
		{Name: "ideas.csv", Data: ideasCSV},
		{Name: "documents.csv", Data: documentsCSV},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render archive")
	}

	filename := buildExportFilename("archive", semester.Name, "zip")
	return s.store(filename, payload)
}

// GenerateAcademicWorkbook renders every semester of an academic year into
// one spreadsheet, one worksheet per semester.
func (s *ExportService) GenerateAcademicWorkbook(ctx context.Context, academicInfoID string) (*ExportResult, error) {
	info, sheets, _, err := s.loadAcademicSheets(ctx, academicInfoID)
	if err != nil {
		return nil, err
	}

	payload, err := s.workbook.Render(sheets)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render workbook")
	}

	filename := buildExportFilename("ideas", info.Name, "xlsx")
	return s.store(filename, payload)
}

// GenerateAcademicArchive bundles the academic year workbook with a
// per-semester CSV manifest of uploaded idea documents.
func (s *ExportService) GenerateAcademicArchive(ctx context.Context, academicInfoID string) (*ExportResult, error) {
	info, sheets, ideasBySemester, err := s.loadAcademicSheets(ctx, academicInfoID)
	if err != nil {
		return nil, err
	}

	workbook, err := s.workbook.Render(sheets)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render workbook")
	}

	entries := []export.ArchiveEntry{
		{Name: fmt.Sprintf("ideas_%s.xlsx", sanitizeFilename(info.Name)), Data: workbook},
	}
	for _, semester := range info.Semesters {
		manifest, err := s.manifest.Render(documentSheet(ideasBySemester[semester.ID]))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render documents csv")
		}
		entries = append(entries, export.ArchiveEntry{
			Name: fmt.Sprintf("documents_%s.csv", sanitizeFilename(semester.Name)),
			Data: manifest,
		})
	}

	payload, err := s.archive.Render(entries)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render archive")
	}

	filename := buildExportFilename("archive", info.Name, "zip")
	return s.store(filename, payload)
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL
// when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// RunCleanupLoop prunes expired exports on the given interval until the
// context is cancelled.
func (s *ExportService) RunCleanupLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Cleanup(0)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				s.logger.Info("export cleanup removed files", zap.Int("count", len(removed)))
			}
		}
	}
}

func (s *ExportService) loadSemesterIdeas(ctx context.Context, semesterID string) (*models.Semester, []models.Idea, error) {
	semester, err := s.semesters.FindSemesterByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	ideas, err := s.ideas.FindBySemester(ctx, semesterID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester ideas")
	}
	return semester, ideas, nil
}

func (s *ExportService) loadAcademicSheets(ctx context.Context, academicInfoID string) (*models.AcademicInfo, []export.Sheet, map[string][]models.Idea, error) {
	info, err := s.semesters.FindByIDWithSemesters(ctx, academicInfoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	if len(info.Semesters) == 0 {
		return nil, nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "academic year has no semesters")
	}

	sheets := make([]export.Sheet, 0, len(info.Semesters))
	ideasBySemester := make(map[string][]models.Idea, len(info.Semesters))
	for i := range info.Semesters {
		semester := &info.Semesters[i]
		ideas, err := s.ideas.FindBySemester(ctx, semester.ID)
		if err != nil {
			return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester ideas")
		}
		sheets = append(sheets, ideaSheet(semester, ideas))
		ideasBySemester[semester.ID] = ideas
	}
	return info, sheets, ideasBySemester, nil
}

func (s *ExportService) store(filename string, payload []byte) (*ExportResult, error) {
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(uuid.NewString(), relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export url")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		ExpiresAt:    expiresAt,
	}, nil
}

func ideaSheet(semester *models.Semester, ideas []models.Idea) export.Sheet {
	rows := make([][]string, 0, len(ideas))
	for i := range ideas {
		idea := &ideas[i]
		eng := aggregateEngagement(idea, "")
		authorName := ""
		if idea.IsAnonymous {
			authorName = "Anonymous"
		} else if idea.Author != nil {
			authorName = idea.Author.Name
		}
		categories := make([]string, len(idea.Categories))
		for j, category := range idea.Categories {
			categories[j] = category.Name
		}
		rows = append(rows, []string{
			idea.Title,
			authorName,
			strings.Join(categories, ", "),
			strconv.Itoa(eng.TotalLikes),
			strconv.Itoa(eng.TotalDisLikes),
			strconv.Itoa(eng.TotalComments),
			strconv.Itoa(eng.TotalViewCount),
			idea.CreatedAt.Format(time.RFC3339),
		})
	}
	return export.Sheet{
		Name:    semester.Name,
		Headers: []string{"Title", "Author", "Categories", "Likes", "Dislikes", "Comments", "Views", "Submitted At"},
		Rows:    rows,
	}
}

func documentSheet(ideas []models.Idea) export.Sheet {
	var rows [][]string
	for i := range ideas {
		for _, doc := range ideas[i].Documents {
			rows = append(rows, []string{ideas[i].Title, doc.Name, doc.DocumentType, doc.DownloadURL})
		}
	}
	return export.Sheet{
		Name:    "Documents",
		Headers: []string{"Idea", "Document", "Type", "Download URL"},
		Rows:    rows,
	}
}

func buildExportFilename(kind, semesterName, ext string) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", kind, sanitizeFilename(semesterName), timestamp, ext)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
