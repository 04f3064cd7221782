package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sessionTestColumns = []string{"id", "user_id", "started_at", "ended_at", "linked_report_id"}

func newSessionMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *SessionRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewSessionRepository(db, zap.NewNop())
	return db, mock, repo
}

func TestStart_CreatesSessionAndSetsWorkingFlag(t *testing.T) {
	db, mock, repo := newSessionMock(t)
	defer db.Close()

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM work_sessions`).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO work_sessions`).
		WithArgs(int64(7), now).
		WillReturnRows(sqlmock.NewRows(sessionTestColumns).
			AddRow(int64(11), int64(7), now, nil, nil))
	mock.ExpectExec(`UPDATE users SET is_working = TRUE`).
		WithArgs(now, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	session, created, err := repo.Start(7, now)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, session)
	assert.Equal(t, int64(11), session.ID)
	assert.True(t, session.Open())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStart_IdempotentOnOpenSession(t *testing.T) {
	db, mock, repo := newSessionMock(t)
	defer db.Close()

	startedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM work_sessions`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(sessionTestColumns).
			AddRow(int64(11), int64(7), startedAt, nil, nil))

	session, created, err := repo.Start(7, startedAt.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, session)
	assert.Equal(t, int64(11), session.ID)
	assert.Equal(t, startedAt, session.StartedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStop_NoOpenSession(t *testing.T) {
	db, mock, repo := newSessionMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM work_sessions`).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	session, err := repo.Stop(7, time.Now())
	require.NoError(t, err)
	assert.Nil(t, session)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStop_ClosesLatestOpenSession(t *testing.T) {
	db, mock, repo := newSessionMock(t)
	defer db.Close()

	startedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	endedAt := startedAt.Add(9 * time.Hour)

	mock.ExpectQuery(`SELECT (.+) FROM work_sessions`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(sessionTestColumns).
			AddRow(int64(11), int64(7), startedAt, nil, nil))

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE work_sessions SET ended_at`).
		WithArgs(endedAt, int64(11)).
		WillReturnRows(sqlmock.NewRows(sessionTestColumns).
			AddRow(int64(11), int64(7), startedAt, endedAt, nil))
	mock.ExpectExec(`UPDATE users SET is_working = FALSE`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	session, err := repo.Stop(7, endedAt)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.False(t, session.Open())
	require.NotNil(t, session.EndedAt)
	assert.Equal(t, endedAt, *session.EndedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSameDayUnlinked_PicksSessionStartedOnDay(t *testing.T) {
	db, mock, repo := newSessionMock(t)
	defer db.Close()

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	yesterday := day.AddDate(0, 0, -1)

	rows := sqlmock.NewRows(sessionTestColumns).
		AddRow(int64(20), int64(7), yesterday.Add(8*time.Hour), yesterday.Add(17*time.Hour), nil).
		AddRow(int64(19), int64(7), day.Add(9*time.Hour), day.Add(18*time.Hour), nil)
	mock.ExpectQuery(`SELECT (.+) FROM work_sessions`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	session, err := repo.FindSameDayUnlinked(7, day)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, int64(19), session.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSameDayUnlinked_NoMatch(t *testing.T) {
	db, mock, repo := newSessionMock(t)
	defer db.Close()

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	lastWeek := day.AddDate(0, 0, -7)

	rows := sqlmock.NewRows(sessionTestColumns).
		AddRow(int64(20), int64(7), lastWeek.Add(8*time.Hour), lastWeek.Add(17*time.Hour), nil)
	mock.ExpectQuery(`SELECT (.+) FROM work_sessions`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	session, err := repo.FindSameDayUnlinked(7, day)
	require.NoError(t, err)
	assert.Nil(t, session)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkToReport_UnknownSessionIsNoOp(t *testing.T) {
	db, mock, repo := newSessionMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE work_sessions SET linked_report_id`).
		WithArgs(int64(42), int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.LinkToReport(999, 42)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
