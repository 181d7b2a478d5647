package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-admission/internal/model"
)

func newMock(t *testing.T) (*AdmissionRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAdmissionRepo(db), mock
}

func TestAdmissionRepoCreate(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admission_checks")).
		WithArgs("Adult,G,10:00,1:00,A-1", "1800円", true, true, uint32(1), uint32(0), "en").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM admission_checks WHERE id = ?")).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	c := &model.AdmissionCheck{
		Input: "Adult,G,10:00,1:00,A-1", Output: "1800円",
		Valid: true, Admitted: true, TicketCount: 1, Locale: "en",
	}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, uint64(42), c.ID)
	assert.Equal(t, now, c.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func checkRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "input_text", "output_text", "valid", "admitted",
		"ticket_count", "rejected_count", "locale", "created_at"})
}

func TestAdmissionRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT (.+) FROM admission_checks WHERE id = ?").
		WithArgs(uint64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrCheckNotFound)
}

func TestAdmissionRepoList(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC().Truncate(time.Second)
	mock.ExpectQuery("SELECT (.+) FROM admission_checks ORDER BY id DESC LIMIT").
		WithArgs(2, 0).
		WillReturnRows(checkRows().
			AddRow(2, "Child,G,10:00,1:00,J-1", "seat-limit", true, false, 1, 1, "en", now).
			AddRow(1, "bad", "invalid input", false, false, 0, 0, "en", now))

	got, err := repo.List(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[0].ID)
	assert.Equal(t, uint32(1), got[0].RejectedCount)
	assert.False(t, got[1].Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}
