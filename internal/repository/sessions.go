package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fieldops/internal/domain"
)

// SessionRepository work shift sessions.
type SessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

const sessionColumns = `id, user_id, started_at, ended_at, linked_report_id`

func scanSession(row interface {
	Scan(dest ...interface{}) error
}) (*domain.WorkSession, error) {
	var s domain.WorkSession
	var endedAt sql.NullTime
	var linkedReportID sql.NullInt64

	if err := row.Scan(&s.ID, &s.UserID, &s.StartedAt, &endedAt, &linkedReportID); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	if linkedReportID.Valid {
		id := linkedReportID.Int64
		s.LinkedReportID = &id
	}
	return &s, nil
}

// GetOpen returns the user's open session, or nil.
func (r *SessionRepository) GetOpen(userID int64) (*domain.WorkSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM work_sessions
		WHERE user_id = $1 AND ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1`

	session, err := scanSession(r.db.QueryRow(query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query open session: %w", err)
	}
	return session, nil
}

// Start opens a shift. If a session is already open it is returned
// unchanged, so a repeated start never stacks sessions. The user's
// working flag is updated in the same transaction as the insert.
func (r *SessionRepository) Start(userID int64, now time.Time) (*domain.WorkSession, bool, error) {
	existing, err := r.GetOpen(userID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO work_sessions (user_id, started_at)
		VALUES ($1, $2)
		RETURNING ` + sessionColumns

	session, err := scanSession(tx.QueryRow(query, userID, now))
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert session: %w", err)
	}

	if _, err := tx.Exec(`UPDATE users SET is_working = TRUE, work_started_at = $1 WHERE id = $2`, now, userID); err != nil {
		return nil, false, fmt.Errorf("failed to update working flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("shift started", zap.Int64("user_id", userID))
	return session, true, nil
}

// Stop closes the latest open session and clears the working flag.
// Returns nil when no session is open.
func (r *SessionRepository) Stop(userID int64, now time.Time) (*domain.WorkSession, error) {
	open, err := r.GetOpen(userID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE work_sessions SET ended_at = $1
		WHERE id = $2
		RETURNING ` + sessionColumns

	session, err := scanSession(tx.QueryRow(query, now, open.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to close session: %w", err)
	}

	if _, err := tx.Exec(`UPDATE users SET is_working = FALSE, work_started_at = NULL WHERE id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to update working flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("shift stopped", zap.Int64("user_id", userID))
	return session, nil
}

// FindSameDayUnlinked looks through the user's ten most recently closed
// unlinked sessions and returns the first one started on day. Used to
// attach a submitted report to the shift it covers.
func (r *SessionRepository) FindSameDayUnlinked(userID int64, day time.Time) (*domain.WorkSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM work_sessions
		WHERE user_id = $1 AND ended_at IS NOT NULL AND linked_report_id IS NULL
		ORDER BY ended_at DESC
		LIMIT 10`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	y, m, d := day.Date()
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sy, sm, sd := session.StartedAt.Date()
		if sy == y && sm == m && sd == d {
			return session, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return nil, nil
}

// LinkToReport attaches a report to a session. Unknown session IDs are
// ignored.
func (r *SessionRepository) LinkToReport(sessionID, reportID int64) error {
	if _, err := r.db.Exec(`UPDATE work_sessions SET linked_report_id = $1 WHERE id = $2`, reportID, sessionID); err != nil {
		return fmt.Errorf("failed to link session: %w", err)
	}
	return nil
}
