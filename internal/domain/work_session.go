package domain

import "time"

// WorkSession one tracked shift (corresponds to work_sessions table).
// Open while EndedAt is NULL. A closed session may be consumed by at most
// one report: once LinkedReportID is set the session is never reused for
// time autofill.
type WorkSession struct {
	ID     int64
	UserID int64

	StartedAt time.Time
	EndedAt   *time.Time

	LinkedReportID *int64
}

// Open reports whether the shift is still running.
func (s *WorkSession) Open() bool {
	return s.EndedAt == nil
}
