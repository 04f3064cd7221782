package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"fieldops/internal/database"
)

// Config service configuration, loaded from environment variables.
type Config struct {
	Database database.Config

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Telegram struct {
		Token       string
		APIBaseURL  string
		PollTimeout int // long-poll timeout in seconds
	}

	Sheets struct {
		Enabled       bool
		SpreadsheetID string
		AccessToken   string
		APIBaseURL    string

		// Flat event sheets. Monthly sheets are resolved at runtime
		// from the report date.
		ReportsSheet  string
		ProblemsSheet string
		EditsSheet    string
		StatusSheet   string
	}

	// AdminIDs Telegram IDs granted the admin role on first contact.
	AdminIDs []int64

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "fieldops")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Telegram.Token = getEnv("TELEGRAM_TOKEN", "")
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	cfg.Telegram.APIBaseURL = getEnv("TELEGRAM_API_URL", "https://api.telegram.org")
	cfg.Telegram.PollTimeout = getEnvInt("TELEGRAM_POLL_TIMEOUT", 30)

	cfg.Sheets.SpreadsheetID = getEnv("SHEETS_SPREADSHEET_ID", "")
	cfg.Sheets.AccessToken = getEnv("SHEETS_ACCESS_TOKEN", "")
	cfg.Sheets.APIBaseURL = getEnv("SHEETS_API_URL", "https://sheets.googleapis.com")
	cfg.Sheets.Enabled = cfg.Sheets.SpreadsheetID != "" && cfg.Sheets.AccessToken != ""
	cfg.Sheets.ReportsSheet = getEnv("SHEETS_REPORTS_TAB", "Reports")
	cfg.Sheets.ProblemsSheet = getEnv("SHEETS_PROBLEMS_TAB", "Problems")
	cfg.Sheets.EditsSheet = getEnv("SHEETS_EDITS_TAB", "ReportEdits")
	cfg.Sheets.StatusSheet = getEnv("SHEETS_STATUS_TAB", "ReportStatuses")

	adminIDs, err := parseAdminIDs(getEnv("ADMIN_IDS", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ADMIN_IDS: %w", err)
	}
	cfg.AdminIDs = adminIDs

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// parseAdminIDs parses a comma-separated list of Telegram IDs.
func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}
