package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"fieldops/internal/domain"
)

// truthyValues string forms of a setting that read as true.
var truthyValues = map[string]bool{
	"1":    true,
	"true": true,
	"True": true,
	"yes":  true,
	"да":   true,
}

// SettingRepository key/value runtime settings.
type SettingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *sql.DB, logger *zap.Logger) *SettingRepository {
	return &SettingRepository{
		db:     db,
		logger: logger,
	}
}

// GetText returns the raw value, or the default when the key is absent.
func (r *SettingRepository) GetText(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.DefaultSettings[key], nil
		}
		return "", fmt.Errorf("failed to query setting %s: %w", key, err)
	}
	return value, nil
}

// GetBool reads a flag setting. Only a fixed set of string forms count
// as true.
func (r *SettingRepository) GetBool(key string) (bool, error) {
	value, err := r.GetText(key)
	if err != nil {
		return false, err
	}
	return truthyValues[value], nil
}

// SetText upserts the value for key.
func (r *SettingRepository) SetText(key, value string) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	if _, err := r.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}

	r.logger.Info("setting updated", zap.String("key", key))
	return nil
}

// SetBool stores a flag as "1"/"0".
func (r *SettingRepository) SetBool(key string, value bool) error {
	text := "0"
	if value {
		text = "1"
	}
	return r.SetText(key, text)
}

// SeedDefaults inserts default values for missing keys.
func (r *SettingRepository) SeedDefaults() error {
	for key, value := range domain.DefaultSettings {
		query := `INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`
		if _, err := r.db.Exec(query, key, value); err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", key, err)
		}
	}
	return nil
}
