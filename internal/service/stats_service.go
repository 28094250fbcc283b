package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/innovex/ideahub-api/internal/models"
	"github.com/innovex/ideahub-api/internal/repository"
	appErrors "github.com/innovex/ideahub-api/pkg/errors"
	"github.com/innovex/ideahub-api/pkg/export"
)

type statsRepository interface {
	Counters(ctx context.Context, filter models.StatsFilter) (*models.IdeaStats, error)
	CategoryCounts(ctx context.Context, filter models.StatsFilter) ([]repository.CategoryCount, error)
	DepartmentIdeaCounts(ctx context.Context, filter models.StatsFilter) ([]repository.DepartmentCount, error)
	DepartmentContributorCounts(ctx context.Context, filter models.StatsFilter) ([]repository.DepartmentCount, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type statsPDFRenderer interface {
	Render(sheet export.Sheet, title string) ([]byte, error)
}

// StatsService builds statistical reports over the filtered idea set,
// cached in Redis keyed by the filter and rendered to PDF on demand.
type StatsService struct {
	repo     statsRepository
	cache    statsCache
	pdf      statsPDFRenderer
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewStatsService creates a stats service instance.
func NewStatsService(repo statsRepository, cache statsCache, pdf statsPDFRenderer, cacheTTL time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &StatsService{repo: repo, cache: cache, pdf: pdf, cacheTTL: cacheTTL, logger: logger}
}

// Report computes the full statistics payload for the filter. Results are
// served from cache when fresh unless the filter asks for a recompute.
func (s *StatsService) Report(ctx context.Context, filter models.StatsFilter) (*models.IdeaStats, error) {
	key := statsCacheKey(filter)
	if s.cache != nil && !filter.SkipCache {
		var cached models.IdeaStats
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.repo.Counters(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute statistics")
	}

	if stats.IdeasCount > 0 {
		categoryCounts, err := s.repo.CategoryCounts(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute category shares")
		}
		stats.CategoryShares = make([]models.CategoryShare, len(categoryCounts))
		for i, row := range categoryCounts {
			stats.CategoryShares[i] = models.CategoryShare{
				Category:   row.Category,
				Percentage: percentage(row.IdeaCount, stats.IdeasCount),
			}
		}

		departmentCounts, err := s.repo.DepartmentIdeaCounts(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute department shares")
		}
		stats.DepartmentShares = make([]models.DepartmentShare, len(departmentCounts))
		for i, row := range departmentCounts {
			stats.DepartmentShares[i] = models.DepartmentShare{
				Department: row.Department,
				Percentage: percentage(row.Count, stats.IdeasCount),
			}
		}
	}

	if stats.ContributorsCount > 0 {
		contributorCounts, err := s.repo.DepartmentContributorCounts(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute contributor shares")
		}
		stats.ContributorShares = make([]models.DepartmentShare, len(contributorCounts))
		for i, row := range contributorCounts {
			stats.ContributorShares[i] = models.DepartmentShare{
				Department: row.Department,
				Percentage: percentage(row.Count, stats.ContributorsCount),
			}
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache statistics", zap.String("key", key), zap.Error(err))
		}
	}
	return stats, nil
}

// ReportPDF renders the statistics report as a downloadable PDF.
func (s *StatsService) ReportPDF(ctx context.Context, filter models.StatsFilter) ([]byte, error) {
	stats, err := s.Report(ctx, filter)
	if err != nil {
		return nil, err
	}

	sheet := export.Sheet{
		Name:    "Statistics",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Ideas", strconv.Itoa(stats.IdeasCount)},
			{"Comments", strconv.Itoa(stats.CommentsCount)},
			{"Up votes", strconv.Itoa(stats.UpVotesCount)},
			{"Down votes", strconv.Itoa(stats.DownVotesCount)},
			{"Contributors", strconv.Itoa(stats.ContributorsCount)},
			{"Anonymous ideas", strconv.Itoa(stats.AnonymousCount)},
			{"Anonymous comments", strconv.Itoa(stats.AnonymousCommentCount)},
			{"Ideas without comments", strconv.Itoa(stats.NoCommentCount)},
		},
	}
	for _, share := range stats.CategoryShares {
		sheet.Rows = append(sheet.Rows, []string{
			fmt.Sprintf("Category: %s", share.Category.Name),
			fmt.Sprintf("%.2f%%", share.Percentage),
		})
	}
	for _, share := range stats.DepartmentShares {
		sheet.Rows = append(sheet.Rows, []string{
			fmt.Sprintf("Department: %s", share.Department.Name),
			fmt.Sprintf("%.2f%%", share.Percentage),
		})
	}

	payload, err := s.pdf.Render(sheet, "Idea Statistics Report")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render statistics pdf")
	}
	return payload, nil
}

// percentage returns part/whole as a percent rounded to two decimals.
func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(whole)) / 100
}

func statsCacheKey(filter models.StatsFilter) string {
	start, end := "", ""
	if filter.StartDate != nil {
		start = filter.StartDate.Format("2006-01-02")
	}
	if filter.EndDate != nil {
		end = filter.EndDate.Format("2006-01-02")
	}
	return fmt.Sprintf("stats:%s:%s:%s:%s:%s", filter.AcademicInfoID, filter.SemesterID, filter.DepartmentID, start, end)
}
