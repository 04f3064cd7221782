package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSheets in-memory SheetsAPI recording every write.
type fakeSheets struct {
	titles  []string
	columns map[string][]string // sheet -> column A contents from row 2

	added    []string
	appends  []appendCall
	updates  []updateCall
}

type appendCall struct {
	sheet  string
	values []interface{}
}

type updateCall struct {
	sheet   string
	a1Range string
	values  []interface{}
}

func newFakeSheets(titles ...string) *fakeSheets {
	return &fakeSheets{
		titles:  titles,
		columns: make(map[string][]string),
	}
}

func (f *fakeSheets) SheetTitles(ctx context.Context) ([]string, error) {
	return f.titles, nil
}

func (f *fakeSheets) AddSheets(ctx context.Context, titles []string) error {
	f.added = append(f.added, titles...)
	f.titles = append(f.titles, titles...)
	return nil
}

func (f *fakeSheets) AppendRow(ctx context.Context, sheet string, values []interface{}) error {
	f.appends = append(f.appends, appendCall{sheet: sheet, values: values})
	return nil
}

func (f *fakeSheets) UpdateRange(ctx context.Context, sheet, a1Range string, values []interface{}) error {
	f.updates = append(f.updates, updateCall{sheet: sheet, a1Range: a1Range, values: values})
	return nil
}

func (f *fakeSheets) ReadColumn(ctx context.Context, sheet, a1Range string) ([]string, error) {
	return f.columns[sheet], nil
}

func testTabs() Tabs {
	return Tabs{Reports: "Reports", Problems: "Problems", Edits: "ReportEdits", Statuses: "ReportStatuses"}
}

func TestMonthTabCandidates(t *testing.T) {
	assert.Equal(t, []string{"0.3", "0.03", "03", "3"}, MonthTabCandidates(3))
	assert.Equal(t, []string{"0.11", "11", "1.1"}, MonthTabCandidates(11))
	assert.Equal(t, []string{"0.10", "10", "1.0"}, MonthTabCandidates(10))
}

func TestIsApproved(t *testing.T) {
	assert.True(t, IsApproved("approved"))
	assert.True(t, IsApproved("подтверждён"))
	assert.True(t, IsApproved("  Принят  "))
	assert.False(t, IsApproved("rejected"))
	assert.False(t, IsApproved("отклонён"))
	assert.False(t, IsApproved(""))
	assert.False(t, IsApproved("foo"))
}

func TestIsRejected(t *testing.T) {
	assert.True(t, IsRejected("rejected"))
	assert.True(t, IsRejected("  Отклонён  "))
	assert.True(t, IsRejected("не принято"))
	assert.False(t, IsRejected("approved"))
	assert.False(t, IsRejected(""))
	assert.False(t, IsRejected("foo"))
}

func TestEnsureSheets_CreatesMissingTabs(t *testing.T) {
	api := newFakeSheets("Reports", "0.3")
	p := NewProjector(api, testTabs(), zap.NewNop())

	require.NoError(t, p.EnsureSheets(context.Background()))
	assert.Equal(t, []string{"Problems", "ReportEdits", "ReportStatuses"}, api.added)
}

func TestAppendReport_SkipsNonApproved(t *testing.T) {
	api := newFakeSheets("Reports", "0.3")
	p := NewProjector(api, testTabs(), zap.NewNop())

	for _, status := range []string{"", "pending", "rejected", "что-то"} {
		err := p.AppendReport(context.Background(), ReportPayload{ReportID: 1, Status: status, ReportDate: "2026-03-14"})
		require.NoError(t, err)
	}

	assert.Empty(t, api.appends)
	assert.Empty(t, api.updates)
}

func TestAppendReport_WritesAggregatedMonthRow(t *testing.T) {
	api := newFakeSheets("Reports", "0.3")
	api.columns["0.3"] = []string{"14.03.2026", "13.03.2026", "", "старое"}
	p := NewProjector(api, testTabs(), zap.NewNop())

	payload := ReportPayload{
		ReportID:    42,
		TgID:        555000111,
		FirstName:   "Пётр",
		LastName:    "Смирнов",
		ReportDate:  "2026-03-14",
		PartnerName: "Иван",
		Comment:     "всё в порядке",
		Status:      "принят",
		Tasks: []TaskCell{
			{Type: "сбор на зарядку", Quantity: 3},
			{Type: "Зарядка", Quantity: 2},
			{Type: "деплой", Quantity: 5},
			{Type: "мойка", Quantity: 1},
			{Type: "ремонт", Quantity: 0},
		},
	}

	require.NoError(t, p.AppendReport(context.Background(), payload))

	require.Len(t, api.updates, 1)
	upd := api.updates[0]
	assert.Equal(t, "0.3", upd.sheet)
	// first blank cell of column A is index 2 => row 4
	assert.Equal(t, "A4:J4", upd.a1Range)

	require.Len(t, upd.values, 10)
	assert.Equal(t, "14.03.2026", upd.values[0])
	assert.Equal(t, "Пётр Смирнов", upd.values[1])
	assert.Equal(t, "Иван", upd.values[2])
	assert.Equal(t, 5, upd.values[3]) // charge: сбор на зарядку + зарядка
	assert.Equal(t, 0, upd.values[4])
	assert.Equal(t, 0, upd.values[5])
	assert.Equal(t, 5, upd.values[6]) // deploy
	assert.Equal(t, 0, upd.values[7])
	assert.Equal(t, "", upd.values[8])
	// zero-quantity unknown types are dropped, non-zero ones trail the comment
	assert.Equal(t, "всё в порядке | другое: мойка=1", upd.values[9])

	assert.Empty(t, api.appends)
}

func TestAppendReport_FallsBackToRawSheetWhenMonthTabMissing(t *testing.T) {
	api := newFakeSheets("Reports")
	p := NewProjector(api, testTabs(), zap.NewNop())

	payload := ReportPayload{
		Event:      "report_status",
		ReportID:   42,
		TgID:       555000111,
		ReportDate: "2026-03-14",
		Status:     "accepted",
		Tasks:      []TaskCell{{Type: "деплой", Quantity: 5}},
		Media:      []MediaCell{{FileID: "file-abc"}},
	}

	require.NoError(t, p.AppendReport(context.Background(), payload))

	assert.Empty(t, api.updates)
	require.Len(t, api.appends, 1)
	call := api.appends[0]
	assert.Equal(t, "Reports", call.sheet)
	require.Len(t, call.values, 19)
	assert.Equal(t, "report_status", call.values[0])
	assert.Equal(t, int64(42), call.values[2])
	assert.Equal(t, "деплой=5", call.values[11])
	assert.Equal(t, 1, call.values[13])
	assert.Equal(t, "file-abc", call.values[14])
}

func TestAppendReport_ResolvesMonthTabCaseInsensitively(t *testing.T) {
	api := newFakeSheets("Reports", " 0.11 ")
	p := NewProjector(api, testTabs(), zap.NewNop())

	payload := ReportPayload{
		ReportID:   1,
		Status:     "ok",
		ReportDate: "2026-11-02",
	}

	require.NoError(t, p.AppendReport(context.Background(), payload))

	require.Len(t, api.updates, 1)
	assert.Equal(t, " 0.11 ", api.updates[0].sheet)
	assert.Equal(t, "A2:J2", api.updates[0].a1Range)
}

func TestAppendReport_DateFallsBackToCreatedAt(t *testing.T) {
	api := newFakeSheets("Reports", "0.7")
	p := NewProjector(api, testTabs(), zap.NewNop())

	payload := ReportPayload{
		ReportID:     1,
		Status:       "accepted",
		ReportDate:   "не дата",
		CreatedAtUTC: "2026-07-20T10:00:00Z",
	}

	require.NoError(t, p.AppendReport(context.Background(), payload))

	require.Len(t, api.updates, 1)
	assert.Equal(t, "0.7", api.updates[0].sheet)
	assert.Equal(t, "20.07.2026", api.updates[0].values[0])
}

func TestAppendProblemAndEvents(t *testing.T) {
	api := newFakeSheets("Reports", "Problems", "ReportEdits", "ReportStatuses")
	p := NewProjector(api, testTabs(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, p.AppendProblem(ctx, ProblemPayload{
		ProblemID: 9, TgID: 555000111, ProblemType: "самокат", Urgency: "urgent",
		Media: []MediaCell{{FileID: "a"}, {FileID: "b"}},
	}))
	require.NoError(t, p.AppendReportEdit(ctx, EditPayload{ReportID: 42, EditorTgID: 555000111, EditCount: 2}))
	require.NoError(t, p.AppendReportStatus(ctx, StatusPayload{ReportID: 42, Status: "rejected", AdminTgID: 1, AdminComment: "мало фото"}))

	require.Len(t, api.appends, 3)
	assert.Equal(t, "Problems", api.appends[0].sheet)
	assert.Equal(t, "problem_created", api.appends[0].values[0])
	assert.Equal(t, 2, api.appends[0].values[13])
	assert.Equal(t, "a,b", api.appends[0].values[14])

	assert.Equal(t, "ReportEdits", api.appends[1].sheet)
	assert.Equal(t, "report_edited", api.appends[1].values[0])

	assert.Equal(t, "ReportStatuses", api.appends[2].sheet)
	assert.Equal(t, "report_status", api.appends[2].values[0])
	assert.Equal(t, "мало фото", api.appends[2].values[5])
}
