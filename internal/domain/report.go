package domain

import "time"

// WorkType billable task category (corresponds to work_types table).
// Work types are deactivated, never deleted: historical report tasks must
// keep resolving to a name.
type WorkType struct {
	ID       int64
	Name     string
	IsActive bool
}

// ReportTask one (work type, quantity) line of a report.
// Unique per work type within a report; quantity may be zero.
type ReportTask struct {
	WorkTypeID   int64
	WorkTypeName string
	Quantity     int
}

// ReportMedia attachment reference held by the chat transport.
type ReportMedia struct {
	FileID string
	Type   MediaType
}

// Report one submitted work report (corresponds to reports table).
// Start/end times are wall-clock "HH:MM" strings; the date carries no time
// component.
type Report struct {
	ID     int64
	UserID int64
	User   *User

	Date      time.Time
	StartTime string
	EndTime   string

	PartnerName *string
	Comment     *string

	Status       ReportStatus
	AdminComment *string

	EditCount      int
	EditedAt       *time.Time
	EditedByUserID *int64

	CreatedAt time.Time

	Tasks []ReportTask
	Media []ReportMedia
}

// TaskInput (work type, quantity) pair as collected by the conversation,
// in selection order.
type TaskInput struct {
	WorkTypeID int64
	Quantity   int
}

// MediaInput attachment as collected by the conversation.
type MediaInput struct {
	FileID string
	Type   MediaType
}

// SnapshotTask task line inside a report snapshot.
type SnapshotTask struct {
	WorkTypeID   int64  `json:"work_type_id"`
	WorkTypeName string `json:"work_type,omitempty"`
	Quantity     int    `json:"quantity"`
}

// SnapshotMedia media line inside a report snapshot.
type SnapshotMedia struct {
	FileID    string `json:"file_id"`
	MediaType string `json:"media_type"`
}

// ReportSnapshot fully materialized, immutable copy of a report's state at
// one instant. Stored as JSON in the edit log for before/after comparison.
type ReportSnapshot struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	ReportDate     string          `json:"report_date"`
	StartTime      string          `json:"start_time"`
	EndTime        string          `json:"end_time"`
	PartnerName    *string         `json:"partner_name"`
	Comment        *string         `json:"comment"`
	Status         string          `json:"status"`
	AdminComment   *string         `json:"admin_comment"`
	Tasks          []SnapshotTask  `json:"tasks"`
	Media          []SnapshotMedia `json:"media"`
	EditCount      int             `json:"edit_count"`
	EditedAt       *string         `json:"edited_at"`
	EditedByUserID *int64          `json:"edited_by_user_id"`
}

// Snapshot builds an immutable value copy of the report.
// The copy never aliases the live entity, so a later in-place update cannot
// retroactively change a captured "before" state.
func (r *Report) Snapshot() ReportSnapshot {
	snap := ReportSnapshot{
		ID:             r.ID,
		UserID:         r.UserID,
		ReportDate:     r.Date.Format("2006-01-02"),
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		PartnerName:    copyStr(r.PartnerName),
		Comment:        copyStr(r.Comment),
		Status:         string(r.Status),
		AdminComment:   copyStr(r.AdminComment),
		Tasks:          make([]SnapshotTask, 0, len(r.Tasks)),
		Media:          make([]SnapshotMedia, 0, len(r.Media)),
		EditCount:      r.EditCount,
		EditedByUserID: copyInt64(r.EditedByUserID),
	}
	if r.EditedAt != nil {
		s := r.EditedAt.Format(time.RFC3339)
		snap.EditedAt = &s
	}
	for _, t := range r.Tasks {
		snap.Tasks = append(snap.Tasks, SnapshotTask{
			WorkTypeID:   t.WorkTypeID,
			WorkTypeName: t.WorkTypeName,
			Quantity:     t.Quantity,
		})
	}
	for _, m := range r.Media {
		snap.Media = append(snap.Media, SnapshotMedia{FileID: m.FileID, MediaType: string(m.Type)})
	}
	return snap
}

// ReportEditLog immutable audit record for one edit
// (corresponds to report_edit_logs table). Append-only.
type ReportEditLog struct {
	ID           int64
	ReportID     int64
	EditorUserID int64
	EditedAt     time.Time

	OldSnapshotJSON string
	NewSnapshotJSON string
}

func copyStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyInt64(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
