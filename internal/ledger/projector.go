package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// chargeSynonyms work type names that count into the charge column.
// The catalog was renamed over time, so old and new spellings coexist.
var chargeSynonyms = []string{"зарядка(scooter)", "зарядка", "сбор на зарядку"}
var buildSynonyms = []string{"сбор"}
var moveSynonyms = []string{"перестановка"}
var deploySynonyms = []string{"deploy", "деплой"}
var batterySynonyms = []string{"замена батареи", "замена батарей"}

// knownCategoryNames every name consumed by a dedicated column.
// Anything else lands in the comment as "другое".
var knownCategoryNames = map[string]bool{
	"зарядка(scooter)": true,
	"зарядка":          true,
	"сбор на зарядку":  true,
	"сбор":             true,
	"перестановка":     true,
	"deploy":           true,
	"деплой":           true,
	"замена батареи":   true,
	"замена батарей":   true,
}

// Tabs flat event sheet titles.
type Tabs struct {
	Reports  string
	Problems string
	Edits    string
	Statuses string
}

// Projector writes report lifecycle events into the company
// spreadsheet. Approved reports are aggregated into the month tab;
// everything else goes to append-only flat sheets.
type Projector struct {
	api    SheetsAPI
	tabs   Tabs
	logger *zap.Logger

	mu     sync.Mutex
	titles []string
}

func NewProjector(api SheetsAPI, tabs Tabs, logger *zap.Logger) *Projector {
	return &Projector{
		api:    api,
		tabs:   tabs,
		logger: logger,
	}
}

// EnsureSheets creates the flat event tabs that are missing. Month tabs
// are owned by the spreadsheet operators and never created here.
func (p *Projector) EnsureSheets(ctx context.Context) error {
	titles, err := p.api.SheetTitles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sheet titles: %w", err)
	}

	existing := make(map[string]bool, len(titles))
	for _, t := range titles {
		existing[t] = true
	}

	var missing []string
	for _, want := range []string{p.tabs.Reports, p.tabs.Problems, p.tabs.Edits, p.tabs.Statuses} {
		if want != "" && !existing[want] {
			missing = append(missing, want)
		}
	}

	if len(missing) > 0 {
		if err := p.api.AddSheets(ctx, missing); err != nil {
			return fmt.Errorf("failed to create sheets: %w", err)
		}
		p.logger.Info("created ledger sheets", zap.Strings("titles", missing))
	}

	p.mu.Lock()
	p.titles = nil
	p.mu.Unlock()
	return nil
}

func (p *Projector) sheetTitles(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.titles == nil {
		titles, err := p.api.SheetTitles(ctx)
		if err != nil {
			return nil, err
		}
		p.titles = titles
	}
	return p.titles, nil
}

// payloadDay resolves the day a report belongs to: the report date
// first, the creation timestamp second, today as the last resort.
func payloadDay(reportDate, createdAtUTC string, now time.Time) time.Time {
	if d := parseReportDate(reportDate); !d.IsZero() {
		return d
	}
	if d := parseCreatedAt(createdAtUTC); !d.IsZero() {
		return d
	}
	return now
}

func (p *Projector) monthSheet(ctx context.Context, day time.Time) (string, error) {
	titles, err := p.sheetTitles(ctx)
	if err != nil {
		return "", err
	}

	for _, candidate := range MonthTabCandidates(int(day.Month())) {
		if resolved := resolveTitle(titles, candidate); resolved != "" {
			return resolved, nil
		}
	}
	return "", nil
}

// firstEmptyRow scans column A for the first blank cell, rows 2..5001.
func (p *Projector) firstEmptyRow(ctx context.Context, sheet string) (int, error) {
	const startRow, maxRows = 2, 5000

	values, err := p.api.ReadColumn(ctx, sheet, fmt.Sprintf("A%d:A%d", startRow, startRow+maxRows-1))
	if err != nil {
		return 0, fmt.Errorf("failed to scan column: %w", err)
	}

	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			return startRow + i, nil
		}
	}
	return startRow + len(values), nil
}

// aggregateTasks sums quantities per lowercased name, keeping the
// first-seen order for the "другое" remainder.
func aggregateTasks(tasks []TaskCell) (map[string]int, []string) {
	totals := make(map[string]int, len(tasks))
	var order []string
	for _, t := range tasks {
		name := strings.ToLower(strings.TrimSpace(t.Type))
		if name == "" {
			continue
		}
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		qty := t.Quantity
		if qty < 0 {
			qty = 0
		}
		totals[name] += qty
	}
	return totals, order
}

func sumCategories(totals map[string]int, names []string) int {
	sum := 0
	for _, name := range names {
		sum += totals[strings.ToLower(strings.TrimSpace(name))]
	}
	return sum
}

// AppendReport projects a report into the month tab. Non-approved
// reports are skipped; an approved report whose month tab is missing is
// preserved raw on the flat Reports sheet instead of being lost.
func (p *Projector) AppendReport(ctx context.Context, payload ReportPayload) error {
	eventID := uuid.NewString()

	if !IsApproved(payload.Status) {
		p.logger.Info("skipping report projection, not approved",
			zap.String("event_id", eventID),
			zap.Int64("report_id", payload.ReportID),
			zap.String("status", payload.Status))
		return nil
	}

	day := payloadDay(payload.ReportDate, payload.CreatedAtUTC, time.Now().UTC())
	sheet, err := p.monthSheet(ctx, day)
	if err != nil {
		return err
	}

	if sheet == "" {
		p.logger.Warn("month sheet not found, writing raw record",
			zap.String("event_id", eventID),
			zap.Int64("report_id", payload.ReportID),
			zap.Int("month", int(day.Month())),
			zap.Strings("candidates", MonthTabCandidates(int(day.Month()))))
		return p.appendRawReport(ctx, payload)
	}

	totals, order := aggregateTasks(payload.Tasks)

	comment := strings.TrimSpace(payload.Comment)
	var extras []string
	for _, name := range order {
		if !knownCategoryNames[name] && totals[name] != 0 {
			extras = append(extras, fmt.Sprintf("%s=%d", name, totals[name]))
		}
	}
	if len(extras) > 0 {
		if comment != "" {
			comment += " | "
		}
		comment += "другое: " + strings.Join(extras, "; ")
	}

	fullName := strings.TrimSpace(payload.FirstName + " " + payload.LastName)
	if fullName == "" {
		fullName = fmt.Sprintf("%d", payload.TgID)
	}

	dateCell := payload.ReportDate
	if d := parseReportDate(payload.ReportDate); !d.IsZero() {
		dateCell = d.Format("02.01.2006")
	} else if d := parseCreatedAt(payload.CreatedAtUTC); !d.IsZero() {
		dateCell = d.Format("02.01.2006")
	}

	row := []interface{}{
		dateCell,                               // A date
		fullName,                               // B employee
		strings.TrimSpace(payload.PartnerName), // C partner
		sumCategories(totals, chargeSynonyms),  // D
		sumCategories(totals, buildSynonyms),   // E
		sumCategories(totals, moveSynonyms),    // F
		sumCategories(totals, deploySynonyms),  // G
		sumCategories(totals, batterySynonyms), // H
		"",                                     // I reserved
		comment,                                // J
	}

	rowIdx, err := p.firstEmptyRow(ctx, sheet)
	if err != nil {
		return err
	}
	if err := p.api.UpdateRange(ctx, sheet, fmt.Sprintf("A%d:J%d", rowIdx, rowIdx), row); err != nil {
		return fmt.Errorf("failed to write month row: %w", err)
	}

	p.logger.Info("report projected",
		zap.String("event_id", eventID),
		zap.Int64("report_id", payload.ReportID),
		zap.String("sheet", sheet),
		zap.Int("row", rowIdx))
	return nil
}

func (p *Projector) appendRawReport(ctx context.Context, payload ReportPayload) error {
	tasks := make([]string, 0, len(payload.Tasks))
	for _, t := range payload.Tasks {
		tasks = append(tasks, fmt.Sprintf("%s=%d", t.Type, t.Quantity))
	}
	mediaIDs := make([]string, 0, len(payload.Media))
	for _, m := range payload.Media {
		mediaIDs = append(mediaIDs, m.FileID)
	}

	var editedBy interface{}
	if payload.EditedByTgID != nil {
		editedBy = *payload.EditedByTgID
	} else {
		editedBy = ""
	}

	row := []interface{}{
		eventOr(payload.Event, "report_created"),
		payload.CreatedAtUTC,
		payload.ReportID,
		payload.TgID,
		payload.FirstName,
		payload.LastName,
		payload.Position,
		payload.City,
		payload.ReportDate,
		payload.StartTime,
		payload.EndTime,
		strings.Join(tasks, "; "),
		payload.Comment,
		len(payload.Media),
		strings.Join(mediaIDs, ","),
		payload.Status,
		payload.EditCount,
		payload.EditedAtUTC,
		editedBy,
	}
	if err := p.api.AppendRow(ctx, p.tabs.Reports, row); err != nil {
		return fmt.Errorf("failed to append raw report: %w", err)
	}
	return nil
}

// AppendProblem appends a problem ticket to the flat Problems sheet.
func (p *Projector) AppendProblem(ctx context.Context, payload ProblemPayload) error {
	mediaIDs := make([]string, 0, len(payload.Media))
	for _, m := range payload.Media {
		mediaIDs = append(mediaIDs, m.FileID)
	}

	row := []interface{}{
		eventOr(payload.Event, "problem_created"),
		payload.CreatedAtUTC,
		payload.ProblemID,
		payload.TgID,
		payload.FirstName,
		payload.LastName,
		payload.Position,
		payload.City,
		payload.ProblemType,
		payload.Description,
		payload.Address,
		payload.ScooterNumber,
		payload.Urgency,
		len(payload.Media),
		strings.Join(mediaIDs, ","),
	}
	if err := p.api.AppendRow(ctx, p.tabs.Problems, row); err != nil {
		return fmt.Errorf("failed to append problem: %w", err)
	}
	return nil
}

// AppendReportEdit appends an edit event to the flat edits sheet.
func (p *Projector) AppendReportEdit(ctx context.Context, payload EditPayload) error {
	row := []interface{}{
		eventOr(payload.Event, "report_edited"),
		payload.EditedAtUTC,
		payload.ReportID,
		payload.EditorTgID,
		payload.EditorName,
		payload.EditCount,
	}
	if err := p.api.AppendRow(ctx, p.tabs.Edits, row); err != nil {
		return fmt.Errorf("failed to append edit event: %w", err)
	}
	return nil
}

// AppendReportStatus appends a review decision to the flat status sheet.
func (p *Projector) AppendReportStatus(ctx context.Context, payload StatusPayload) error {
	row := []interface{}{
		eventOr(payload.Event, "report_status"),
		payload.ChangedAtUTC,
		payload.ReportID,
		payload.Status,
		payload.AdminTgID,
		payload.AdminComment,
	}
	if err := p.api.AppendRow(ctx, p.tabs.Statuses, row); err != nil {
		return fmt.Errorf("failed to append status event: %w", err)
	}
	return nil
}

func eventOr(event, fallback string) string {
	if event == "" {
		return fallback
	}
	return event
}
