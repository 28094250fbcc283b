package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewRecordIgnoresRepeatViewers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewViewRepository(db)

	insert := regexp.QuoteMeta(`INSERT INTO views (id, staff_id, idea_id, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (staff_id, idea_id) DO NOTHING`)

	mock.ExpectExec(insert).
		WithArgs(sqlmock.AnyArg(), "staff1", "idea1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The second view from the same staff member conflicts and inserts
	// nothing; Record still succeeds.
	mock.ExpectExec(insert).
		WithArgs(sqlmock.AnyArg(), "staff1", "idea1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Record(context.Background(), "staff1", "idea1"))
	require.NoError(t, repo.Record(context.Background(), "staff1", "idea1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViewCountByIdea(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewViewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM views WHERE idea_id = $1`)).
		WithArgs("idea1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByIdea(context.Background(), "idea1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
