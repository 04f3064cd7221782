package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fieldops/internal/bot"
	"fieldops/internal/dialog"
	"fieldops/internal/domain"
	"fieldops/internal/ledger"
	"fieldops/internal/repository"
)

// Store interfaces cut down to what the flows call, so tests swap in
// fakes without a database.

type UserStore interface {
	GetOrCreate(tgID int64, markAdmin bool) (*domain.User, error)
	GetByID(id int64) (*domain.User, error)
	SetProfileField(userID int64, field, value string) error
	ListAdmins() ([]domain.User, error)
	ListWorkers(limit int) ([]domain.User, error)
}

type WorkTypeStore interface {
	ListActive() ([]domain.WorkType, error)
	GetByID(id int64) (*domain.WorkType, error)
	AddOrActivate(name string) (*domain.WorkType, error)
	Deactivate(id int64) error
}

type SettingStore interface {
	GetText(key string) (string, error)
	GetBool(key string) (bool, error)
	SetText(key, value string) error
	SetBool(key string, value bool) error
}

type SessionStore interface {
	Start(userID int64, now time.Time) (*domain.WorkSession, bool, error)
	Stop(userID int64, now time.Time) (*domain.WorkSession, error)
	FindSameDayUnlinked(userID int64, day time.Time) (*domain.WorkSession, error)
	LinkToReport(sessionID, reportID int64) error
}

type ReportStore interface {
	Create(userID int64, input repository.ReportInput) (*domain.Report, error)
	GetWithRelations(id int64) (*domain.Report, error)
	ListByUser(userID int64, limit int) ([]domain.Report, error)
	ListPending(limit int) ([]domain.Report, error)
	ListRecent(limit int) ([]domain.Report, error)
	ListForMonth(year int, month time.Month) ([]domain.Report, error)
	ListRecentEdits(limit int) ([]domain.ReportEditLog, error)
	SetStatus(id int64, status domain.ReportStatus, adminComment *string) error
	UpdateWithAudit(reportID, editorUserID int64, input repository.ReportInput) (*domain.Report, error)
	SumTasksForMonth(userID int64, year int, month time.Month) (map[string]int, error)
}

type ProblemStore interface {
	Create(userID int64, input repository.ProblemInput) (*domain.Problem, error)
	ListRecent(limit int) ([]domain.Problem, error)
}

// Ledger spreadsheet projection sink. Nil-able: when the spreadsheet is
// not configured the bot runs without it.
type Ledger interface {
	AppendReport(ctx context.Context, payload ledger.ReportPayload) error
	AppendProblem(ctx context.Context, payload ledger.ProblemPayload) error
	AppendReportEdit(ctx context.Context, payload ledger.EditPayload) error
	AppendReportStatus(ctx context.Context, payload ledger.StatusPayload) error
}

// Service the conversation engine: routes updates, walks flows, stores
// results and fans out notifications.
type Service struct {
	users     UserStore
	workTypes WorkTypeStore
	settings  SettingStore
	sessions  SessionStore
	reports   ReportStore
	problems  ProblemStore

	dialogs *dialog.Store
	gateway bot.Gateway
	ledger  Ledger

	adminIDs map[int64]bool
	logger   *zap.Logger

	now func() time.Time
}

// Deps constructor dependencies.
type Deps struct {
	Users     UserStore
	WorkTypes WorkTypeStore
	Settings  SettingStore
	Sessions  SessionStore
	Reports   ReportStore
	Problems  ProblemStore
	Dialogs   *dialog.Store
	Gateway   bot.Gateway
	Ledger    Ledger
	AdminIDs  []int64
	Logger    *zap.Logger
}

func New(deps Deps) *Service {
	admins := make(map[int64]bool, len(deps.AdminIDs))
	for _, id := range deps.AdminIDs {
		admins[id] = true
	}

	return &Service{
		users:     deps.Users,
		workTypes: deps.WorkTypes,
		settings:  deps.Settings,
		sessions:  deps.Sessions,
		reports:   deps.Reports,
		problems:  deps.Problems,
		dialogs:   deps.Dialogs,
		gateway:   deps.Gateway,
		ledger:    deps.Ledger,
		adminIDs:  admins,
		logger:    deps.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// send is a fire-and-log wrapper around the gateway: a delivery failure
// must never abort a flow mid-step.
func (s *Service) send(ctx context.Context, chatID int64, text string, markup interface{}) {
	if _, err := s.gateway.SendMessage(ctx, chatID, text, markup); err != nil {
		s.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// adminChatIDs union of role-flagged admins and statically configured
// ones, minus the excluded id (0 excludes nobody).
func (s *Service) adminChatIDs(exclude int64) []int64 {
	seen := make(map[int64]bool)
	var ids []int64

	admins, err := s.users.ListAdmins()
	if err != nil {
		s.logger.Warn("failed to list admins", zap.Error(err))
	}
	for i := range admins {
		seen[admins[i].TgID] = true
	}
	for id := range s.adminIDs {
		seen[id] = true
	}
	for id := range seen {
		if id != exclude {
			ids = append(ids, id)
		}
	}
	return ids
}

// resendMedia pushes stored attachments to a chat.
func (s *Service) resendMedia(ctx context.Context, chatID int64, fileID string, mediaType domain.MediaType) {
	var err error
	if mediaType == domain.MediaVideo {
		err = s.gateway.SendVideo(ctx, chatID, fileID, "")
	} else {
		err = s.gateway.SendPhoto(ctx, chatID, fileID, "")
	}
	if err != nil {
		s.logger.Warn("failed to resend media", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
