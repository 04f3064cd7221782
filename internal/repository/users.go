package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"fieldops/internal/domain"
)

// profileColumns whitelist of user profile fields writable one at a time
// during registration.
var profileColumns = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"position":   true,
	"city":       true,
	"phone":      true,
	"leader":     true,
}

// UserRepository user accounts and their registration profile.
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, tg_id, first_name, last_name, position, city, phone, leader,
		is_admin, is_working, work_started_at, created_at`

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*domain.User, error) {
	var u domain.User
	var firstName, lastName, position, city, phone, leader sql.NullString
	var workStartedAt sql.NullTime

	if err := row.Scan(
		&u.ID,
		&u.TgID,
		&firstName,
		&lastName,
		&position,
		&city,
		&phone,
		&leader,
		&u.IsAdmin,
		&u.IsWorking,
		&workStartedAt,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}

	if firstName.Valid {
		u.FirstName = &firstName.String
	}
	if lastName.Valid {
		u.LastName = &lastName.String
	}
	if position.Valid {
		u.Position = &position.String
	}
	if city.Valid {
		u.City = &city.String
	}
	if phone.Valid {
		u.Phone = &phone.String
	}
	if leader.Valid {
		u.Leader = &leader.String
	}
	if workStartedAt.Valid {
		t := workStartedAt.Time
		u.WorkStartedAt = &t
	}

	return &u, nil
}

// GetByTgID looks a user up by Telegram ID. Returns nil when absent.
func (r *UserRepository) GetByTgID(tgID int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tg_id = $1`

	user, err := scanUser(r.db.QueryRow(query, tgID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetByID looks a user up by internal ID. Returns nil when absent.
func (r *UserRepository) GetByID(id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetOrCreate returns the user for tgID, creating an empty profile on
// first contact. markAdmin grants the admin role to both new and
// existing rows, so configured admins keep the role across restarts.
func (r *UserRepository) GetOrCreate(tgID int64, markAdmin bool) (*domain.User, error) {
	user, err := r.GetByTgID(tgID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if markAdmin && !user.IsAdmin {
			if _, err := r.db.Exec(`UPDATE users SET is_admin = TRUE WHERE id = $1`, user.ID); err != nil {
				return nil, fmt.Errorf("failed to promote user: %w", err)
			}
			user.IsAdmin = true
		}
		return user, nil
	}

	query := `
		INSERT INTO users (tg_id, is_admin)
		VALUES ($1, $2)
		RETURNING ` + userColumns

	user, err = scanUser(r.db.QueryRow(query, tgID, markAdmin))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("created user", zap.Int64("tg_id", tgID), zap.Bool("is_admin", markAdmin))
	return user, nil
}

// SetProfileField updates a single whitelisted profile column.
func (r *UserRepository) SetProfileField(userID int64, field, value string) error {
	if !profileColumns[field] {
		return fmt.Errorf("unknown profile field: %s", field)
	}

	query := fmt.Sprintf(`UPDATE users SET %s = $1 WHERE id = $2`, field)
	if _, err := r.db.Exec(query, value, userID); err != nil {
		return fmt.Errorf("failed to update profile field %s: %w", field, err)
	}
	return nil
}

// ListAdmins returns every user with the admin role.
func (r *UserRepository) ListAdmins() ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_admin = TRUE ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListWorkers returns registered employees for the admin roster, the
// ones on shift first.
func (r *UserRepository) ListWorkers(limit int) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE first_name IS NOT NULL
		ORDER BY is_working DESC, id
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
