package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovex/ideahub-api/internal/models"
)

func TestStaffFindActiveIsUnpaginated(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	// Audience resolution must see every active account, so the query
	// carries no LIMIT and truncates nothing.
	rows := sqlmock.NewRows([]string{"id", "email", "is_active"})
	for i := 0; i < 250; i++ {
		rows.AddRow(fmt.Sprintf("staff%d", i), fmt.Sprintf("s%d@example.com", i), true)
	}
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT "+staffColumns+" FROM staff WHERE is_active = TRUE ORDER BY created_at")).
		WillReturnRows(rows)

	staff, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, staff, 250)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffListClampsPageSize(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT "+staffColumns+" FROM staff WHERE 1=1 ORDER BY created_at DESC LIMIT 10 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("staff1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM staff WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, total, err := repo.List(context.Background(), models.StaffFilter{Page: 1, PageSize: 10000})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
