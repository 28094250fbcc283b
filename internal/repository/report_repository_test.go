package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovex/ideahub-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestReportFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "idea_id", "reported_by_id", "reason", "is_approved", "approved_by_id", "approved_at", "created_at", "updated_at"}).
		AddRow("r1", "idea1", "staff1", "offensive content", nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, idea_id, reported_by_id, reason, is_approved, approved_by_id, approved_at, created_at, updated_at FROM reports WHERE id = $1")).
		WithArgs("r1").
		WillReturnRows(rows)

	report, err := repo.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "idea1", report.IdeaID)
	assert.Equal(t, models.ReportStatePending, report.State())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportListPendingOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "idea_id", "reported_by_id", "reason", "is_approved", "approved_by_id", "approved_at", "created_at", "updated_at"}).
		AddRow("r1", "idea1", "staff1", "offensive content", nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, idea_id, reported_by_id, reason, is_approved, approved_by_id, approved_at, created_at, updated_at FROM reports WHERE 1=1 AND is_approved IS NULL ORDER BY created_at DESC LIMIT 10 OFFSET 0")).
		WillReturnRows(listRows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reports WHERE 1=1 AND is_approved IS NULL")).WillReturnRows(countRows)

	reports, total, err := repo.List(context.Background(), models.ReportFilter{State: models.ReportStatePending})
	require.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportExistsByStaffAndIdea(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM reports WHERE reported_by_id = $1 AND idea_id = $2)")).
		WithArgs("staff1", "idea1").
		WillReturnRows(rows)

	exists, err := repo.ExistsByStaffAndIdea(context.Background(), "staff1", "idea1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec("INSERT INTO reports").WillReturnResult(sqlmock.NewResult(1, 1))

	report := &models.Report{IdeaID: "idea1", ReportedByID: "staff1", Reason: "offensive content"}
	err := repo.Create(context.Background(), report)
	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reports WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "r1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportResolve(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports SET is_approved = $2, approved_by_id = $3, approved_at = $4, updated_at = $4 WHERE id = $1")).
		WithArgs("r1", true, "reviewer", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Resolve(context.Background(), "r1", true, "reviewer")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
