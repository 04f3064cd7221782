package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"fieldops/internal/domain"
)

// ProblemInput everything the conversation collects for a problem ticket.
type ProblemInput struct {
	ProblemType   string
	Description   string
	Address       string
	ScooterNumber *string
	Urgency       domain.ProblemUrgency
	Media         []domain.MediaInput
}

// ProblemRepository field problem tickets.
type ProblemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProblemRepository creates a new problem repository
func NewProblemRepository(db *sql.DB, logger *zap.Logger) *ProblemRepository {
	return &ProblemRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a problem with its media in one transaction.
func (r *ProblemRepository) Create(userID int64, input ProblemInput) (*domain.Problem, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO problems (user_id, problem_type, description, address, scooter_number, urgency)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	problem := &domain.Problem{
		UserID:        userID,
		Type:          input.ProblemType,
		Description:   input.Description,
		Address:       input.Address,
		ScooterNumber: input.ScooterNumber,
		Urgency:       input.Urgency,
	}
	if err := tx.QueryRow(query,
		userID,
		input.ProblemType,
		input.Description,
		input.Address,
		nullStr(input.ScooterNumber),
		string(input.Urgency),
	).Scan(&problem.ID, &problem.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert problem: %w", err)
	}

	for _, m := range input.Media {
		mediaQuery := `INSERT INTO problem_media (problem_id, file_id, media_type) VALUES ($1, $2, $3)`
		if _, err := tx.Exec(mediaQuery, problem.ID, m.FileID, string(m.Type)); err != nil {
			return nil, fmt.Errorf("failed to insert problem media: %w", err)
		}
		problem.Media = append(problem.Media, domain.ProblemMedia{FileID: m.FileID, Type: m.Type})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("problem created",
		zap.Int64("problem_id", problem.ID),
		zap.Int64("user_id", userID),
		zap.String("urgency", string(input.Urgency)))
	return problem, nil
}

// ListRecent returns the newest problems with media and reporter.
func (r *ProblemRepository) ListRecent(limit int) ([]domain.Problem, error) {
	query := `
		SELECT id, user_id, problem_type, description, address, scooter_number, urgency, created_at
		FROM problems
		ORDER BY id DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query problems: %w", err)
	}
	defer rows.Close()

	var problems []domain.Problem
	for rows.Next() {
		var p domain.Problem
		var scooter sql.NullString
		var urgency string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Type, &p.Description, &p.Address, &scooter, &urgency, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan problem: %w", err)
		}
		if scooter.Valid {
			p.ScooterNumber = &scooter.String
		}
		p.Urgency = domain.ProblemUrgency(urgency)
		problems = append(problems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate problems: %w", err)
	}

	for i := range problems {
		media, err := r.loadMedia(problems[i].ID)
		if err != nil {
			return nil, err
		}
		problems[i].Media = media

		reporter, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, problems[i].UserID))
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to query problem reporter: %w", err)
		}
		problems[i].User = reporter
	}
	return problems, nil
}

func (r *ProblemRepository) loadMedia(problemID int64) ([]domain.ProblemMedia, error) {
	query := `SELECT file_id, media_type FROM problem_media WHERE problem_id = $1 ORDER BY id`

	rows, err := r.db.Query(query, problemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query problem media: %w", err)
	}
	defer rows.Close()

	var media []domain.ProblemMedia
	for rows.Next() {
		var m domain.ProblemMedia
		var mediaType string
		if err := rows.Scan(&m.FileID, &mediaType); err != nil {
			return nil, fmt.Errorf("failed to scan problem media: %w", err)
		}
		m.Type = domain.MediaType(mediaType)
		media = append(media, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate problem media: %w", err)
	}
	return media, nil
}
