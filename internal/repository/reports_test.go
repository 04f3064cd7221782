package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fieldops/internal/domain"
)

var reportTestColumns = []string{
	"id", "user_id", "report_date", "start_time", "end_time", "partner_name", "comment",
	"status", "admin_comment", "edit_count", "edited_at", "edited_by_user_id", "created_at",
}

var userTestColumns = []string{
	"id", "tg_id", "first_name", "last_name", "position", "city", "phone", "leader",
	"is_admin", "is_working", "work_started_at", "created_at",
}

func newReportMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *ReportRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewReportRepository(db, zap.NewNop())
	return db, mock, repo
}

func reportRow(id int64, status string, editCount int) *sqlmock.Rows {
	return sqlmock.NewRows(reportTestColumns).
		AddRow(id, int64(7), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			"09:00", "18:30", "Иван", nil, status, nil, editCount, nil, nil, time.Now())
}

func expectRelations(mock sqlmock.Sqlmock, reportID int64) {
	taskRows := sqlmock.NewRows([]string{"work_type_id", "name", "quantity"}).
		AddRow(int64(1), "деплой", 5).
		AddRow(int64(2), "ремонт", 2)
	mock.ExpectQuery(`SELECT rt.work_type_id, wt.name, rt.quantity`).
		WithArgs(reportID).
		WillReturnRows(taskRows)

	mediaRows := sqlmock.NewRows([]string{"file_id", "media_type"}).
		AddRow("file-abc", "photo")
	mock.ExpectQuery(`SELECT file_id, media_type FROM report_media`).
		WithArgs(reportID).
		WillReturnRows(mediaRows)

	userRows := sqlmock.NewRows(userTestColumns).
		AddRow(int64(7), int64(555000111), "Пётр", "Смирнов", "техник", "Алматы",
			"+77001234567", "Бригадир А", false, false, nil, time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(userRows)
}

func TestGetWithRelations_Success(t *testing.T) {
	db, mock, repo := newReportMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM reports WHERE id`).
		WithArgs(int64(42)).
		WillReturnRows(reportRow(42, "pending", 0))
	expectRelations(mock, 42)

	report, err := repo.GetWithRelations(42)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, int64(42), report.ID)
	assert.Equal(t, domain.ReportPending, report.Status)
	assert.Equal(t, "09:00", report.StartTime)
	require.NotNil(t, report.PartnerName)
	assert.Equal(t, "Иван", *report.PartnerName)
	require.Len(t, report.Tasks, 2)
	assert.Equal(t, "деплой", report.Tasks[0].WorkTypeName)
	assert.Equal(t, 5, report.Tasks[0].Quantity)
	require.Len(t, report.Media, 1)
	assert.Equal(t, domain.MediaPhoto, report.Media[0].Type)
	require.NotNil(t, report.User)
	assert.Equal(t, "Пётр Смирнов", report.User.DisplayName())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWithRelations_NotFound(t *testing.T) {
	db, mock, repo := newReportMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM reports WHERE id`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	report, err := repo.GetWithRelations(99)
	require.NoError(t, err)
	assert.Nil(t, report)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReport_InsertsRelationsInOneTransaction(t *testing.T) {
	db, mock, repo := newReportMock(t)
	defer db.Close()

	partner := "Иван"
	input := ReportInput{
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00",
		EndTime:     "18:30",
		PartnerName: &partner,
		Tasks: []domain.TaskInput{
			{WorkTypeID: 1, Quantity: 5},
			{WorkTypeID: 2, Quantity: 2},
		},
		Media: []domain.MediaInput{{FileID: "file-abc", Type: domain.MediaPhoto}},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reports`).
		WithArgs(int64(7), input.Date, "09:00", "18:30", "Иван", nil, "pending").
		WillReturnRows(reportRow(42, "pending", 0))
	mock.ExpectExec(`INSERT INTO report_tasks`).
		WithArgs(int64(42), int64(1), 5).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO report_tasks`).
		WithArgs(int64(42), int64(2), 2).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(`INSERT INTO report_media`).
		WithArgs(int64(42), "file-abc", "photo").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// reload with relations after commit
	mock.ExpectQuery(`SELECT (.+) FROM reports WHERE id`).
		WithArgs(int64(42)).
		WillReturnRows(reportRow(42, "pending", 0))
	expectRelations(mock, 42)

	report, err := repo.Create(7, input)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, int64(42), report.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPending_NewestFirstWithLimit(t *testing.T) {
	db, mock, repo := newReportMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(reportTestColumns).
		AddRow(int64(43), int64(7), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			"09:00", "18:30", "Иван", nil, "pending", nil, 0, nil, nil, time.Now()).
		AddRow(int64(42), int64(7), time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
			"09:00", "18:30", "Иван", nil, "pending", nil, 0, nil, nil, time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM reports WHERE status = 'pending' ORDER BY id DESC LIMIT`).
		WithArgs(2).
		WillReturnRows(rows)
	expectRelations(mock, 43)
	expectRelations(mock, 42)

	reports, err := repo.ListPending(2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, int64(43), reports[0].ID)
	assert.Equal(t, int64(42), reports[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatus_ReplacesAdminComment(t *testing.T) {
	db, mock, repo := newReportMock(t)
	defer db.Close()

	comment := "не хватает фото"
	mock.ExpectExec(`UPDATE reports SET status`).
		WithArgs("rejected", comment, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetStatus(42, domain.ReportRejected, &comment)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE reports SET status`).
		WithArgs("accepted", nil, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.SetStatus(42, domain.ReportAccepted, nil)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithAudit_AppendsAuditRow(t *testing.T) {
	db, mock, repo := newReportMock(t)
	defer db.Close()

	input := ReportInput{
		Date:      time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		EndTime:   "19:00",
		Tasks:     []domain.TaskInput{{WorkTypeID: 1, Quantity: 9}},
	}

	mock.ExpectBegin()

	// before snapshot
	mock.ExpectQuery(`SELECT (.+) FROM reports WHERE id`).
		WithArgs(int64(42)).
		WillReturnRows(reportRow(42, "pending", 0))
	mock.ExpectQuery(`SELECT rt.work_type_id, wt.name, rt.quantity`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"work_type_id", "name", "quantity"}).
			AddRow(int64(1), "деплой", 5))
	mock.ExpectQuery(`SELECT file_id, media_type FROM report_media`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"file_id", "media_type"}))

	// content update
	mock.ExpectQuery(`UPDATE reports`).
		WithArgs(input.Date, "10:00", "19:00", nil, nil, sqlmock.AnyArg(), int64(3), int64(42)).
		WillReturnRows(reportRow(42, "pending", 1))

	mock.ExpectExec(`DELETE FROM report_tasks`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM report_media`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO report_tasks`).
		WithArgs(int64(42), int64(1), 9).
		WillReturnResult(sqlmock.NewResult(1, 1))

	// after snapshot
	mock.ExpectQuery(`SELECT rt.work_type_id, wt.name, rt.quantity`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"work_type_id", "name", "quantity"}).
			AddRow(int64(1), "деплой", 9))
	mock.ExpectQuery(`SELECT file_id, media_type FROM report_media`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"file_id", "media_type"}))

	mock.ExpectExec(`INSERT INTO report_edit_logs`).
		WithArgs(int64(42), int64(3), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// reload after commit
	mock.ExpectQuery(`SELECT (.+) FROM reports WHERE id`).
		WithArgs(int64(42)).
		WillReturnRows(reportRow(42, "pending", 1))
	expectRelations(mock, 42)

	report, err := repo.UpdateWithAudit(42, 3, input)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.EditCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumTasksForMonth_UsesMonthBoundaries(t *testing.T) {
	db, mock, repo := newReportMock(t)
	defer db.Close()

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"name", "total"}).
		AddRow("деплой", 12).
		AddRow("ремонт", 3)
	mock.ExpectQuery(`SELECT wt.name, COALESCE`).
		WithArgs(int64(7), start, end).
		WillReturnRows(rows)

	totals, err := repo.SumTasksForMonth(7, 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"деплой": 12, "ремонт": 3}, totals)

	assert.NoError(t, mock.ExpectationsWereMet())
}
