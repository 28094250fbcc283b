package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovex/ideahub-api/internal/models"
)

func TestVoteFindByStaffAndIdea(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVoteRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "staff_id", "idea_id", "is_thumb_up", "created_at", "updated_at"}).
		AddRow("v1", "staff1", "idea1", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, staff_id, idea_id, is_thumb_up, created_at, updated_at FROM votes WHERE staff_id = $1 AND idea_id = $2")).
		WithArgs("staff1", "idea1").
		WillReturnRows(rows)

	vote, err := repo.FindByStaffAndIdea(context.Background(), "staff1", "idea1")
	require.NoError(t, err)
	assert.True(t, vote.IsThumbUp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteFindMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVoteRepository(db)

	mock.ExpectQuery("SELECT id, staff_id, idea_id").
		WithArgs("staff1", "idea1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByStaffAndIdea(context.Background(), "staff1", "idea1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestVoteUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVoteRepository(db)

	mock.ExpectExec("INSERT INTO votes").WillReturnResult(sqlmock.NewResult(1, 1))

	vote := &models.Vote{StaffID: "staff1", IdeaID: "idea1", IsThumbUp: true}
	err := repo.Upsert(context.Background(), vote)
	require.NoError(t, err)
	assert.NotEmpty(t, vote.ID)
	assert.False(t, vote.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVoteRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM votes WHERE staff_id = $1 AND idea_id = $2")).
		WithArgs("staff1", "idea1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "staff1", "idea1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
