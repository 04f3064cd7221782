package domain

import "time"

// ProblemMedia attachment of an incident report.
type ProblemMedia struct {
	FileID string
	Type   MediaType
}

// Problem incident report (corresponds to problems table).
// Problems are informational: they carry no review status.
type Problem struct {
	ID     int64
	UserID int64
	User   *User

	Type          string
	Description   string
	Address       string
	ScooterNumber *string
	Urgency       ProblemUrgency

	CreatedAt time.Time

	Media []ProblemMedia
}
