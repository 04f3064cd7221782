package ledger

// TaskCell one (work type, quantity) pair of a projected report.
type TaskCell struct {
	Type     string
	Quantity int
}

// MediaCell one attachment reference of a projected record.
type MediaCell struct {
	FileID string
}

// ReportPayload everything the ledger needs to project one report.
// Timestamps are preformatted strings so the payload survives JSON
// round-trips without precision games.
type ReportPayload struct {
	Event        string
	CreatedAtUTC string

	ReportID  int64
	TgID      int64
	FirstName string
	LastName  string
	Position  string
	City      string

	ReportDate  string // ISO or D.M.YYYY
	StartTime   string
	EndTime     string
	PartnerName string

	Tasks   []TaskCell
	Comment string
	Media   []MediaCell

	Status       string
	EditCount    int
	EditedAtUTC  string
	EditedByTgID *int64
}

// ProblemPayload one problem ticket projected to the flat sheet.
type ProblemPayload struct {
	Event        string
	CreatedAtUTC string

	ProblemID int64
	TgID      int64
	FirstName string
	LastName  string
	Position  string
	City      string

	ProblemType   string
	Description   string
	Address       string
	ScooterNumber string
	Urgency       string

	Media []MediaCell
}

// EditPayload one report edit projected to the audit sheet.
type EditPayload struct {
	Event       string
	EditedAtUTC string

	ReportID   int64
	EditorTgID int64
	EditorName string
	EditCount  int
}

// StatusPayload one review decision projected to the status sheet.
type StatusPayload struct {
	Event        string
	ChangedAtUTC string

	ReportID     int64
	Status       string
	AdminTgID    int64
	AdminComment string
}
