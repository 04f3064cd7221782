package database

import (
	"database/sql"
	"fmt"
)

// schemaStatements create the full relational schema on first run.
// Reports cascade to their tasks, media and edit logs; work types are
// RESTRICTed because historical tasks must keep resolving to a name.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              BIGSERIAL PRIMARY KEY,
		tg_id           BIGINT NOT NULL UNIQUE,
		first_name      VARCHAR(64),
		last_name       VARCHAR(64),
		position        VARCHAR(128),
		city            VARCHAR(64),
		phone           VARCHAR(32),
		leader          VARCHAR(128),
		is_admin        BOOLEAN NOT NULL DEFAULT FALSE,
		is_working      BOOLEAN NOT NULL DEFAULT FALSE,
		work_started_at TIMESTAMP,
		created_at      TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS work_types (
		id        BIGSERIAL PRIMARY KEY,
		name      VARCHAR(64) NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id                BIGSERIAL PRIMARY KEY,
		user_id           BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		report_date       DATE NOT NULL,
		start_time        VARCHAR(5) NOT NULL,
		end_time          VARCHAR(5) NOT NULL,
		partner_name      VARCHAR(128),
		comment           TEXT,
		status            VARCHAR(16) NOT NULL DEFAULT 'pending',
		admin_comment     TEXT,
		edit_count        INTEGER NOT NULL DEFAULT 0,
		edited_at         TIMESTAMP,
		edited_by_user_id BIGINT,
		created_at        TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_user ON reports(user_id)`,
	`CREATE TABLE IF NOT EXISTS report_tasks (
		id           BIGSERIAL PRIMARY KEY,
		report_id    BIGINT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		work_type_id BIGINT NOT NULL REFERENCES work_types(id) ON DELETE RESTRICT,
		quantity     INTEGER NOT NULL,
		CONSTRAINT uq_report_task UNIQUE (report_id, work_type_id)
	)`,
	`CREATE TABLE IF NOT EXISTS report_media (
		id         BIGSERIAL PRIMARY KEY,
		report_id  BIGINT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		file_id    VARCHAR(256) NOT NULL,
		media_type VARCHAR(16) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS report_edit_logs (
		id                BIGSERIAL PRIMARY KEY,
		report_id         BIGINT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		editor_user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		edited_at         TIMESTAMP NOT NULL DEFAULT NOW(),
		old_snapshot_json TEXT NOT NULL,
		new_snapshot_json TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS work_sessions (
		id               BIGSERIAL PRIMARY KEY,
		user_id          BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		started_at       TIMESTAMP NOT NULL,
		ended_at         TIMESTAMP,
		linked_report_id BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_sessions_user ON work_sessions(user_id)`,
	`CREATE TABLE IF NOT EXISTS problems (
		id             BIGSERIAL PRIMARY KEY,
		user_id        BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		problem_type   VARCHAR(64) NOT NULL,
		description    TEXT NOT NULL,
		address        TEXT NOT NULL,
		scooter_number VARCHAR(64),
		urgency        VARCHAR(16) NOT NULL,
		created_at     TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS problem_media (
		id         BIGSERIAL PRIMARY KEY,
		problem_id BIGINT NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
		file_id    VARCHAR(256) NOT NULL,
		media_type VARCHAR(16) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key   VARCHAR(64) PRIMARY KEY,
		value VARCHAR(2048) NOT NULL
	)`,
}

// EnsureSchema applies the CREATE TABLE IF NOT EXISTS set.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
