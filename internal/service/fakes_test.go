package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fieldops/internal/domain"
	"fieldops/internal/ledger"
	"fieldops/internal/repository"
)

// In-memory store fakes. Each records the calls the assertions need.

type fakeUsers struct {
	byTgID  map[int64]*domain.User
	fields  map[string]string // "userID/field" -> value
	admins  []domain.User
	workers []domain.User
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{byTgID: make(map[int64]*domain.User), fields: make(map[string]string)}
	for _, u := range users {
		f.byTgID[u.TgID] = u
	}
	return f
}

func (f *fakeUsers) GetOrCreate(tgID int64, markAdmin bool) (*domain.User, error) {
	if u, ok := f.byTgID[tgID]; ok {
		if markAdmin {
			u.IsAdmin = true
		}
		return u, nil
	}
	u := &domain.User{ID: tgID * 10, TgID: tgID, IsAdmin: markAdmin}
	f.byTgID[tgID] = u
	return u, nil
}

func (f *fakeUsers) GetByID(id int64) (*domain.User, error) {
	for _, u := range f.byTgID {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) SetProfileField(userID int64, field, value string) error {
	f.fields[fmt.Sprintf("%d/%s", userID, field)] = value
	return nil
}

func (f *fakeUsers) ListAdmins() ([]domain.User, error)  { return f.admins, nil }
func (f *fakeUsers) ListWorkers(int) ([]domain.User, error) { return f.workers, nil }

type fakeWorkTypes struct {
	types       []domain.WorkType
	added       []string
	deactivated []int64
}

func (f *fakeWorkTypes) ListActive() ([]domain.WorkType, error) {
	var out []domain.WorkType
	for _, wt := range f.types {
		if wt.IsActive {
			out = append(out, wt)
		}
	}
	return out, nil
}

func (f *fakeWorkTypes) GetByID(id int64) (*domain.WorkType, error) {
	for i := range f.types {
		if f.types[i].ID == id {
			wt := f.types[i]
			return &wt, nil
		}
	}
	return nil, nil
}

func (f *fakeWorkTypes) AddOrActivate(name string) (*domain.WorkType, error) {
	f.added = append(f.added, name)
	wt := domain.WorkType{ID: int64(len(f.types) + 1), Name: name, IsActive: true}
	f.types = append(f.types, wt)
	return &wt, nil
}

func (f *fakeWorkTypes) Deactivate(id int64) error {
	f.deactivated = append(f.deactivated, id)
	for i := range f.types {
		if f.types[i].ID == id {
			f.types[i].IsActive = false
		}
	}
	return nil
}

type fakeSettings struct {
	values map[string]string
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{values: make(map[string]string)}
}

func (f *fakeSettings) GetText(key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return domain.DefaultSettings[key], nil
}

func (f *fakeSettings) GetBool(key string) (bool, error) {
	v, err := f.GetText(key)
	return v == "1", err
}

func (f *fakeSettings) SetText(key, value string) error {
	f.values[key] = value
	return nil
}

func (f *fakeSettings) SetBool(key string, value bool) error {
	if value {
		return f.SetText(key, "1")
	}
	return f.SetText(key, "0")
}

type fakeSessions struct {
	open     *domain.WorkSession
	sameDay  *domain.WorkSession
	linked   [][2]int64 // (sessionID, reportID)
	started  int
	stopped  int
}

func (f *fakeSessions) Start(userID int64, now time.Time) (*domain.WorkSession, bool, error) {
	f.started++
	if f.open != nil {
		return f.open, false, nil
	}
	f.open = &domain.WorkSession{ID: 1, UserID: userID, StartedAt: now}
	return f.open, true, nil
}

func (f *fakeSessions) Stop(userID int64, now time.Time) (*domain.WorkSession, error) {
	f.stopped++
	if f.open == nil {
		return nil, nil
	}
	s := f.open
	s.EndedAt = &now
	f.open = nil
	return s, nil
}

func (f *fakeSessions) FindSameDayUnlinked(int64, time.Time) (*domain.WorkSession, error) {
	return f.sameDay, nil
}

func (f *fakeSessions) LinkToReport(sessionID, reportID int64) error {
	f.linked = append(f.linked, [2]int64{sessionID, reportID})
	return nil
}

type statusCall struct {
	reportID int64
	status   domain.ReportStatus
	comment  *string
}

type fakeReports struct {
	byID         map[int64]*domain.Report
	nextID       int64
	created      []repository.ReportInput
	updated      []repository.ReportInput
	statuses     []statusCall
	sums         map[string]int
	pendingLimit int
}

func newFakeReports(reports ...*domain.Report) *fakeReports {
	f := &fakeReports{byID: make(map[int64]*domain.Report), nextID: 100}
	for _, r := range reports {
		f.byID[r.ID] = r
	}
	return f
}

func (f *fakeReports) Create(userID int64, input repository.ReportInput) (*domain.Report, error) {
	f.created = append(f.created, input)
	f.nextID++
	r := &domain.Report{
		ID:          f.nextID,
		UserID:      userID,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		PartnerName: input.PartnerName,
		Comment:     input.Comment,
		Status:      domain.ReportPending,
		CreatedAt:   time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	for _, t := range input.Tasks {
		r.Tasks = append(r.Tasks, domain.ReportTask{
			WorkTypeID: t.WorkTypeID, WorkTypeName: fmt.Sprintf("type-%d", t.WorkTypeID), Quantity: t.Quantity,
		})
	}
	for _, m := range input.Media {
		r.Media = append(r.Media, domain.ReportMedia{FileID: m.FileID, Type: m.Type})
	}
	r.User = &domain.User{ID: userID, TgID: userID}
	f.byID[r.ID] = r
	return r, nil
}

func (f *fakeReports) GetWithRelations(id int64) (*domain.Report, error) {
	return f.byID[id], nil
}

func (f *fakeReports) ListByUser(userID int64, limit int) ([]domain.Report, error) {
	var out []domain.Report
	for _, r := range f.byID {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReports) ListPending(limit int) ([]domain.Report, error) {
	f.pendingLimit = limit
	var ids []int64
	for id, r := range f.byID {
		if r.Status == domain.ReportPending {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	var out []domain.Report
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		out = append(out, *f.byID[id])
	}
	return out, nil
}

func (f *fakeReports) ListRecent(int) ([]domain.Report, error) {
	var out []domain.Report
	for _, r := range f.byID {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeReports) ListForMonth(int, time.Month) ([]domain.Report, error) {
	return f.ListRecent(0)
}

func (f *fakeReports) ListRecentEdits(int) ([]domain.ReportEditLog, error) { return nil, nil }

func (f *fakeReports) SetStatus(id int64, status domain.ReportStatus, adminComment *string) error {
	f.statuses = append(f.statuses, statusCall{reportID: id, status: status, comment: adminComment})
	if r, ok := f.byID[id]; ok {
		r.Status = status
		r.AdminComment = adminComment
	}
	return nil
}

func (f *fakeReports) UpdateWithAudit(reportID, editorUserID int64, input repository.ReportInput) (*domain.Report, error) {
	f.updated = append(f.updated, input)
	r := f.byID[reportID]
	r.Date = input.Date
	r.StartTime = input.StartTime
	r.EndTime = input.EndTime
	r.PartnerName = input.PartnerName
	r.Comment = input.Comment
	r.EditCount++
	return r, nil
}

func (f *fakeReports) SumTasksForMonth(int64, int, time.Month) (map[string]int, error) {
	return f.sums, nil
}

type fakeProblems struct {
	created []repository.ProblemInput
}

func (f *fakeProblems) Create(userID int64, input repository.ProblemInput) (*domain.Problem, error) {
	f.created = append(f.created, input)
	p := &domain.Problem{
		ID:            int64(len(f.created)),
		UserID:        userID,
		Type:          input.ProblemType,
		Description:   input.Description,
		Address:       input.Address,
		ScooterNumber: input.ScooterNumber,
		Urgency:       input.Urgency,
		CreatedAt:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	for _, m := range input.Media {
		p.Media = append(p.Media, domain.ProblemMedia{FileID: m.FileID, Type: m.Type})
	}
	return p, nil
}

func (f *fakeProblems) ListRecent(int) ([]domain.Problem, error) { return nil, nil }

// fakeGateway records everything the service sends out.

type sentMessage struct {
	chatID int64
	text   string
	markup interface{}
}

type fakeGateway struct {
	messages  []sentMessage
	photos    []sentMessage
	videos    []sentMessage
	documents []string
	cleared   []int64
	acks      []string
}

func (g *fakeGateway) SendMessage(_ context.Context, chatID int64, text string, markup interface{}) (int64, error) {
	g.messages = append(g.messages, sentMessage{chatID: chatID, text: text, markup: markup})
	return int64(len(g.messages)), nil
}

func (g *fakeGateway) SendPhoto(_ context.Context, chatID int64, fileID, _ string) error {
	g.photos = append(g.photos, sentMessage{chatID: chatID, text: fileID})
	return nil
}

func (g *fakeGateway) SendVideo(_ context.Context, chatID int64, fileID, _ string) error {
	g.videos = append(g.videos, sentMessage{chatID: chatID, text: fileID})
	return nil
}

func (g *fakeGateway) SendDocument(_ context.Context, _ int64, filename string, _ []byte, _ string) error {
	g.documents = append(g.documents, filename)
	return nil
}

func (g *fakeGateway) ClearReplyMarkup(_ context.Context, _ int64, messageID int64) error {
	g.cleared = append(g.cleared, messageID)
	return nil
}

func (g *fakeGateway) AnswerCallback(_ context.Context, _ string, text string) error {
	g.acks = append(g.acks, text)
	return nil
}

// textsTo returns the message texts sent to one chat, in order.
func (g *fakeGateway) textsTo(chatID int64) []string {
	var out []string
	for _, m := range g.messages {
		if m.chatID == chatID {
			out = append(out, m.text)
		}
	}
	return out
}

// fakeLedger records projected payloads.

type fakeLedger struct {
	reports  []ledger.ReportPayload
	problems []ledger.ProblemPayload
	edits    []ledger.EditPayload
	statuses []ledger.StatusPayload
}

func (l *fakeLedger) AppendReport(_ context.Context, p ledger.ReportPayload) error {
	l.reports = append(l.reports, p)
	return nil
}

func (l *fakeLedger) AppendProblem(_ context.Context, p ledger.ProblemPayload) error {
	l.problems = append(l.problems, p)
	return nil
}

func (l *fakeLedger) AppendReportEdit(_ context.Context, p ledger.EditPayload) error {
	l.edits = append(l.edits, p)
	return nil
}

func (l *fakeLedger) AppendReportStatus(_ context.Context, p ledger.StatusPayload) error {
	l.statuses = append(l.statuses, p)
	return nil
}
