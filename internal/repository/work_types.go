package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fieldops/internal/domain"
)

// WorkTypeRepository the catalog of billable work kinds.
type WorkTypeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkTypeRepository creates a new work type repository
func NewWorkTypeRepository(db *sql.DB, logger *zap.Logger) *WorkTypeRepository {
	return &WorkTypeRepository{
		db:     db,
		logger: logger,
	}
}

// ListActive returns active work types ordered by id, so report flows
// always present them in a stable order.
func (r *WorkTypeRepository) ListActive() ([]domain.WorkType, error) {
	query := `SELECT id, name, is_active FROM work_types WHERE is_active = TRUE ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query work types: %w", err)
	}
	defer rows.Close()

	var types []domain.WorkType
	for rows.Next() {
		var wt domain.WorkType
		if err := rows.Scan(&wt.ID, &wt.Name, &wt.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan work type: %w", err)
		}
		types = append(types, wt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work types: %w", err)
	}
	return types, nil
}

// GetByID returns a work type by id. Returns nil when absent.
func (r *WorkTypeRepository) GetByID(id int64) (*domain.WorkType, error) {
	query := `SELECT id, name, is_active FROM work_types WHERE id = $1`

	var wt domain.WorkType
	if err := r.db.QueryRow(query, id).Scan(&wt.ID, &wt.Name, &wt.IsActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query work type: %w", err)
	}
	return &wt, nil
}

// AddOrActivate inserts a work type by its lowercased trimmed name, or
// reactivates it if a row with that name already exists.
func (r *WorkTypeRepository) AddOrActivate(name string) (*domain.WorkType, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	query := `
		INSERT INTO work_types (name, is_active)
		VALUES ($1, TRUE)
		ON CONFLICT (name) DO UPDATE SET is_active = TRUE
		RETURNING id, name, is_active`

	var wt domain.WorkType
	if err := r.db.QueryRow(query, name).Scan(&wt.ID, &wt.Name, &wt.IsActive); err != nil {
		return nil, fmt.Errorf("failed to upsert work type: %w", err)
	}

	r.logger.Info("work type upserted", zap.String("name", name))
	return &wt, nil
}

// Deactivate hides a work type from new reports without touching
// historical tasks that reference it.
func (r *WorkTypeRepository) Deactivate(id int64) error {
	if _, err := r.db.Exec(`UPDATE work_types SET is_active = FALSE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to deactivate work type: %w", err)
	}
	return nil
}

// SeedDefaults inserts the default catalog if the names are missing.
func (r *WorkTypeRepository) SeedDefaults() error {
	for _, name := range domain.DefaultWorkTypes {
		query := `INSERT INTO work_types (name, is_active) VALUES ($1, TRUE) ON CONFLICT (name) DO NOTHING`
		if _, err := r.db.Exec(query, name); err != nil {
			return fmt.Errorf("failed to seed work type %s: %w", name, err)
		}
	}
	return nil
}
