package domain

// ReportStatus report review status (column reports.status)
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportAccepted ReportStatus = "accepted"
	ReportRejected ReportStatus = "rejected"
)

// HumanStatus returns the Russian label shown to employees and admins.
func (s ReportStatus) HumanStatus() string {
	switch s {
	case ReportPending:
		return "на проверке"
	case ReportAccepted:
		return "принят"
	case ReportRejected:
		return "отклонён"
	}
	return string(s)
}

// ProblemUrgency incident urgency tier
type ProblemUrgency string

const (
	UrgencyUrgent ProblemUrgency = "urgent"
	UrgencyMedium ProblemUrgency = "medium"
	UrgencyLow    ProblemUrgency = "low"
)

// HumanUrgency returns the label with the traffic-light marker.
func (u ProblemUrgency) HumanUrgency() string {
	switch u {
	case UrgencyUrgent:
		return "🔴 срочно"
	case UrgencyMedium:
		return "🟡 средне"
	case UrgencyLow:
		return "🟢 не срочно"
	}
	return string(u)
}

// MediaType attachment kind as reported by the chat transport
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)
