package dialog

// Flow identifies which multi-step conversation a chat is inside.
type Flow string

const (
	FlowRegistration Flow = "registration"
	FlowReport       Flow = "report"
	FlowProblem      Flow = "problem"

	// Admin one-shot prompts: a single awaited message.
	FlowAdminReject      Flow = "admin_reject"
	FlowAdminAddWorkType Flow = "admin_add_work_type"
	FlowAdminMotd        Flow = "admin_motd"
	FlowAdminDirect      Flow = "admin_direct"
)

// Step identifies the position inside a flow.
type Step string

const (
	// Registration steps, in the order the profile is collected.
	StepRegFirstName Step = "reg_first_name"
	StepRegLastName  Step = "reg_last_name"
	StepRegPosition  Step = "reg_position"
	StepRegPhone     Step = "reg_phone"
	StepRegLeader    Step = "reg_leader"
	StepRegCity      Step = "reg_city"

	// Report steps.
	StepReportDate     Step = "report_date"
	StepReportPartner  Step = "report_partner"
	StepReportTypes    Step = "report_types"
	StepReportQuantity Step = "report_quantity"
	StepReportTime     Step = "report_time"
	StepReportComment  Step = "report_comment"
	StepReportMedia    Step = "report_media"
	StepReportConfirm  Step = "report_confirm"

	// Problem steps.
	StepProblemType        Step = "problem_type"
	StepProblemDescription Step = "problem_description"
	StepProblemAddress     Step = "problem_address"
	StepProblemScooter     Step = "problem_scooter"
	StepProblemMedia       Step = "problem_media"
	StepProblemUrgency     Step = "problem_urgency"
	StepProblemConfirm     Step = "problem_confirm"

	// One-shot prompts share a single step.
	StepAwaitInput Step = "await_input"
)

// TaskDraft one collected (work type, quantity) pair, in selection order.
type TaskDraft struct {
	WorkTypeID int64 `json:"work_type_id"`
	Quantity   int   `json:"quantity"`
}

// MediaDraft one collected attachment.
type MediaDraft struct {
	FileID string `json:"file_id"`
	Type   string `json:"type"`
}

// Draft the full mutable state of one chat's conversation. Serialized
// as JSON into the KV store between updates; a chat holds at most one
// draft at a time, so starting a flow discards the previous one.
type Draft struct {
	Flow Flow `json:"flow"`
	Step Step `json:"step"`

	// Report flow. Date is stored as "2006-01-02". EditingReportID is
	// set when re-collecting an existing report instead of creating one.
	EditingReportID *int64      `json:"editing_report_id,omitempty"`
	Date            string      `json:"date,omitempty"`
	PartnerName     *string     `json:"partner_name,omitempty"`
	SelectedTypeIDs []int64     `json:"selected_type_ids,omitempty"`
	Tasks           []TaskDraft `json:"tasks,omitempty"`
	QuantityIndex   int         `json:"quantity_index,omitempty"`
	StartTime       string      `json:"start_time,omitempty"`
	EndTime         string      `json:"end_time,omitempty"`
	Comment         *string     `json:"comment,omitempty"`
	Media           []MediaDraft `json:"media,omitempty"`
	// WorkSessionID is set when the times were autofilled from a closed
	// shift; confirmation links that session to the created report.
	WorkSessionID *int64 `json:"work_session_id,omitempty"`

	// Problem flow.
	ProblemType   string  `json:"problem_type,omitempty"`
	Description   string  `json:"description,omitempty"`
	Address       string  `json:"address,omitempty"`
	ScooterNumber *string `json:"scooter_number,omitempty"`
	Urgency       string  `json:"urgency,omitempty"`

	// Admin one-shots.
	TargetReportID *int64 `json:"target_report_id,omitempty"`
	TargetTgID     *int64 `json:"target_tg_id,omitempty"`
}

// ToggleType flips a work type in the selection, preserving the order
// of the remaining picks.
func (d *Draft) ToggleType(workTypeID int64) {
	for i, id := range d.SelectedTypeIDs {
		if id == workTypeID {
			d.SelectedTypeIDs = append(d.SelectedTypeIDs[:i], d.SelectedTypeIDs[i+1:]...)
			return
		}
	}
	d.SelectedTypeIDs = append(d.SelectedTypeIDs, workTypeID)
}

// TypeSelected reports whether a work type is currently picked.
func (d *Draft) TypeSelected(workTypeID int64) bool {
	for _, id := range d.SelectedTypeIDs {
		if id == workTypeID {
			return true
		}
	}
	return false
}

// CurrentQuantityType returns the work type the flow is asking a
// quantity for, or 0 when every selected type has one.
func (d *Draft) CurrentQuantityType() int64 {
	if d.QuantityIndex >= len(d.SelectedTypeIDs) {
		return 0
	}
	return d.SelectedTypeIDs[d.QuantityIndex]
}

// RecordQuantity stores the quantity for the current work type and
// advances to the next one. Returns false when all are collected.
func (d *Draft) RecordQuantity(quantity int) bool {
	id := d.CurrentQuantityType()
	if id == 0 {
		return false
	}
	d.Tasks = append(d.Tasks, TaskDraft{WorkTypeID: id, Quantity: quantity})
	d.QuantityIndex++
	return d.QuantityIndex < len(d.SelectedTypeIDs)
}
