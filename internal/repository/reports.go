package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fieldops/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// ReportInput everything the conversation collects for a report.
type ReportInput struct {
	Date        time.Time
	StartTime   string
	EndTime     string
	PartnerName *string
	Comment     *string
	Tasks       []domain.TaskInput
	Media       []domain.MediaInput
}

// ReportRepository reports with their task lines, media and audit trail.
type ReportRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

const reportColumns = `id, user_id, report_date, start_time, end_time, partner_name, comment,
		status, admin_comment, edit_count, edited_at, edited_by_user_id, created_at`

func scanReport(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Report, error) {
	var rep domain.Report
	var status string
	var partnerName, comment, adminComment sql.NullString
	var editedAt sql.NullTime
	var editedBy sql.NullInt64

	if err := row.Scan(
		&rep.ID,
		&rep.UserID,
		&rep.Date,
		&rep.StartTime,
		&rep.EndTime,
		&partnerName,
		&comment,
		&status,
		&adminComment,
		&rep.EditCount,
		&editedAt,
		&editedBy,
		&rep.CreatedAt,
	); err != nil {
		return nil, err
	}

	rep.Status = domain.ReportStatus(status)
	if partnerName.Valid {
		rep.PartnerName = &partnerName.String
	}
	if comment.Valid {
		rep.Comment = &comment.String
	}
	if adminComment.Valid {
		rep.AdminComment = &adminComment.String
	}
	if editedAt.Valid {
		t := editedAt.Time
		rep.EditedAt = &t
	}
	if editedBy.Valid {
		id := editedBy.Int64
		rep.EditedByUserID = &id
	}

	return &rep, nil
}

func loadTasks(q querier, reportID int64) ([]domain.ReportTask, error) {
	query := `
		SELECT rt.work_type_id, wt.name, rt.quantity
		FROM report_tasks rt
		INNER JOIN work_types wt ON wt.id = rt.work_type_id
		WHERE rt.report_id = $1
		ORDER BY rt.id`

	rows, err := q.Query(query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.ReportTask
	for rows.Next() {
		var t domain.ReportTask
		if err := rows.Scan(&t.WorkTypeID, &t.WorkTypeName, &t.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan report task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate report tasks: %w", err)
	}
	return tasks, nil
}

func loadMedia(q querier, reportID int64) ([]domain.ReportMedia, error) {
	query := `SELECT file_id, media_type FROM report_media WHERE report_id = $1 ORDER BY id`

	rows, err := q.Query(query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report media: %w", err)
	}
	defer rows.Close()

	var media []domain.ReportMedia
	for rows.Next() {
		var m domain.ReportMedia
		var mediaType string
		if err := rows.Scan(&m.FileID, &mediaType); err != nil {
			return nil, fmt.Errorf("failed to scan report media: %w", err)
		}
		m.Type = domain.MediaType(mediaType)
		media = append(media, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate report media: %w", err)
	}
	return media, nil
}

func insertRelations(tx *sql.Tx, reportID int64, tasks []domain.TaskInput, media []domain.MediaInput) error {
	for _, t := range tasks {
		query := `INSERT INTO report_tasks (report_id, work_type_id, quantity) VALUES ($1, $2, $3)`
		if _, err := tx.Exec(query, reportID, t.WorkTypeID, t.Quantity); err != nil {
			return fmt.Errorf("failed to insert report task: %w", err)
		}
	}
	for _, m := range media {
		query := `INSERT INTO report_media (report_id, file_id, media_type) VALUES ($1, $2, $3)`
		if _, err := tx.Exec(query, reportID, m.FileID, string(m.Type)); err != nil {
			return fmt.Errorf("failed to insert report media: %w", err)
		}
	}
	return nil
}

// Create inserts a report with its task lines and media in one
// transaction.
func (r *ReportRepository) Create(userID int64, input ReportInput) (*domain.Report, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reports (user_id, report_date, start_time, end_time, partner_name, comment, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + reportColumns

	report, err := scanReport(tx.QueryRow(query,
		userID,
		input.Date,
		input.StartTime,
		input.EndTime,
		nullStr(input.PartnerName),
		nullStr(input.Comment),
		string(domain.ReportPending),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}

	if err := insertRelations(tx, report.ID, input.Tasks, input.Media); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("report created",
		zap.Int64("report_id", report.ID),
		zap.Int64("user_id", userID),
		zap.Int("tasks", len(input.Tasks)))

	return r.GetWithRelations(report.ID)
}

// GetWithRelations loads a report with its tasks, media and owner.
// Returns nil when absent.
func (r *ReportRepository) GetWithRelations(id int64) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	report, err := scanReport(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	if err := r.attachRelations(report); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *ReportRepository) attachRelations(report *domain.Report) error {
	tasks, err := loadTasks(r.db, report.ID)
	if err != nil {
		return err
	}
	report.Tasks = tasks

	media, err := loadMedia(r.db, report.ID)
	if err != nil {
		return err
	}
	report.Media = media

	owner, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, report.UserID))
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to query report owner: %w", err)
	}
	report.User = owner
	return nil
}

// ListByUser returns the user's most recent reports with relations.
func (r *ReportRepository) ListByUser(userID int64, limit int) ([]domain.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2`

	return r.collectWithRelations(query, userID, limit)
}

// ListPending returns the newest unreviewed reports.
func (r *ReportRepository) ListPending(limit int) ([]domain.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE status = 'pending'
		ORDER BY id DESC
		LIMIT $1`

	return r.collectWithRelations(query, limit)
}

// ListRecent returns the newest reports across all users.
func (r *ReportRepository) ListRecent(limit int) ([]domain.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		ORDER BY id DESC
		LIMIT $1`

	return r.collectWithRelations(query, limit)
}

// ListForMonth returns every report dated inside the month, oldest
// first, with relations. Used by the spreadsheet export.
func (r *ReportRepository) ListForMonth(year int, month time.Month) ([]domain.Report, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE report_date >= $1 AND report_date < $2
		ORDER BY report_date ASC, id ASC`

	return r.collectWithRelations(query, start, end)
}

func (r *ReportRepository) collectWithRelations(query string, args ...interface{}) ([]domain.Report, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	for i := range reports {
		if err := r.attachRelations(&reports[i]); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

// SetStatus records a review decision. The whole admin comment is
// replaced on every call, so the latest decision wins.
func (r *ReportRepository) SetStatus(id int64, status domain.ReportStatus, adminComment *string) error {
	query := `UPDATE reports SET status = $1, admin_comment = $2 WHERE id = $3`

	if _, err := r.db.Exec(query, string(status), nullStr(adminComment), id); err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}

	r.logger.Info("report status updated",
		zap.Int64("report_id", id),
		zap.String("status", string(status)))
	return nil
}

// UpdateWithAudit replaces the report's content and appends an audit
// record, all in one transaction:
//
//  1. capture the before snapshot
//  2. update scalar fields, bump edit_count, stamp editor
//  3. replace task lines and media wholesale
//  4. capture the after snapshot and insert the edit log row
//
// The review status and admin comment are left untouched.
func (r *ReportRepository) UpdateWithAudit(reportID, editorUserID int64, input ReportInput) (*domain.Report, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	before, err := scanReport(tx.QueryRow(`SELECT `+reportColumns+` FROM reports WHERE id = $1`, reportID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("report %d not found", reportID)
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	if before.Tasks, err = loadTasks(tx, reportID); err != nil {
		return nil, err
	}
	if before.Media, err = loadMedia(tx, reportID); err != nil {
		return nil, err
	}
	oldSnapshot, err := json.Marshal(before.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal old snapshot: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE reports
		SET report_date = $1, start_time = $2, end_time = $3, partner_name = $4, comment = $5,
			edit_count = edit_count + 1, edited_at = $6, edited_by_user_id = $7
		WHERE id = $8
		RETURNING ` + reportColumns

	after, err := scanReport(tx.QueryRow(query,
		input.Date,
		input.StartTime,
		input.EndTime,
		nullStr(input.PartnerName),
		nullStr(input.Comment),
		now,
		editorUserID,
		reportID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM report_tasks WHERE report_id = $1`, reportID); err != nil {
		return nil, fmt.Errorf("failed to delete report tasks: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM report_media WHERE report_id = $1`, reportID); err != nil {
		return nil, fmt.Errorf("failed to delete report media: %w", err)
	}
	if err := insertRelations(tx, reportID, input.Tasks, input.Media); err != nil {
		return nil, err
	}

	if after.Tasks, err = loadTasks(tx, reportID); err != nil {
		return nil, err
	}
	if after.Media, err = loadMedia(tx, reportID); err != nil {
		return nil, err
	}
	newSnapshot, err := json.Marshal(after.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal new snapshot: %w", err)
	}

	logQuery := `
		INSERT INTO report_edit_logs (report_id, editor_user_id, edited_at, old_snapshot_json, new_snapshot_json)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.Exec(logQuery, reportID, editorUserID, now, string(oldSnapshot), string(newSnapshot)); err != nil {
		return nil, fmt.Errorf("failed to insert edit log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("report updated",
		zap.Int64("report_id", reportID),
		zap.Int64("editor_user_id", editorUserID),
		zap.Int("edit_count", after.EditCount))

	return r.GetWithRelations(reportID)
}

// ListRecentEdits returns the newest audit records across all reports.
func (r *ReportRepository) ListRecentEdits(limit int) ([]domain.ReportEditLog, error) {
	query := `
		SELECT id, report_id, editor_user_id, edited_at, old_snapshot_json, new_snapshot_json
		FROM report_edit_logs
		ORDER BY id DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query edit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.ReportEditLog
	for rows.Next() {
		var l domain.ReportEditLog
		if err := rows.Scan(&l.ID, &l.ReportID, &l.EditorUserID, &l.EditedAt, &l.OldSnapshotJSON, &l.NewSnapshotJSON); err != nil {
			return nil, fmt.Errorf("failed to scan edit log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edit logs: %w", err)
	}
	return logs, nil
}

// SumTasksForMonth sums task quantities per work type over the user's
// reports dated inside the given month.
func (r *ReportRepository) SumTasksForMonth(userID int64, year int, month time.Month) (map[string]int, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := `
		SELECT wt.name, COALESCE(SUM(rt.quantity), 0)::int
		FROM report_tasks rt
		INNER JOIN reports rep ON rep.id = rt.report_id
		INNER JOIN work_types wt ON wt.id = rt.work_type_id
		WHERE rep.user_id = $1 AND rep.report_date >= $2 AND rep.report_date < $3
		GROUP BY wt.name`

	rows, err := r.db.Query(query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query task totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var name string
		var total int
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("failed to scan task total: %w", err)
		}
		totals[name] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task totals: %w", err)
	}
	return totals, nil
}

func nullStr(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
