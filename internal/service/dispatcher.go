package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"fieldops/internal/bot"
	"fieldops/internal/dialog"
	"fieldops/internal/domain"
)

// HandleUpdate entry point for one update. Errors are terminal for the
// update, not the service: they are logged and the chat gets a chance
// to retry its step.
func (s *Service) HandleUpdate(ctx context.Context, update bot.Update) {
	switch {
	case update.Callback != nil:
		s.handleCallback(ctx, update.Callback)
	case update.Message != nil:
		s.handleMessage(ctx, update.Message)
	}
}

func (s *Service) handleCallback(ctx context.Context, cb *bot.CallbackQuery) {
	if cb.Message == nil || cb.From == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	tgID := cb.From.ID

	user, err := s.users.GetOrCreate(tgID, s.adminIDs[tgID])
	if err != nil {
		s.logger.Error("failed to load user", zap.Int64("tg_id", tgID), zap.Error(err))
		return
	}

	ack := func(text string) {
		if err := s.gateway.AnswerCallback(ctx, cb.ID, text); err != nil {
			s.logger.Warn("failed to answer callback", zap.Error(err))
		}
	}

	data := cb.Data
	switch {
	case data == "menu:main":
		// Returning to the menu discards whatever flow was in progress.
		if err := s.dialogs.Clear(ctx, chatID); err != nil {
			s.logger.Warn("failed to clear draft", zap.Error(err))
		}
		if !user.Registered() {
			s.send(ctx, chatID, textNeedProfile, nil)
			ack("")
			return
		}
		s.send(ctx, chatID, textMainMenu, mainMenu(user.IsWorking))
		ack("")

	case data == "work:start":
		s.startShift(ctx, chatID, user)
		ack("")
	case data == "work:stop":
		s.stopShift(ctx, chatID, user)
		ack("")

	case data == "menu:report":
		s.startReportFlow(ctx, chatID, user, nil)
		ack("")
	case data == "menu:problem":
		s.startProblemFlow(ctx, chatID, user)
		ack("")
	case data == "menu:history":
		s.showMyReports(ctx, chatID, user)
		ack("")
	case strings.HasPrefix(data, "my:edit:"):
		id := parseID(data)
		s.startReportFlow(ctx, chatID, user, &id)
		ack("")

	case strings.HasPrefix(data, "city:"):
		s.handleCityCallback(ctx, chatID, user, data, ack)

	case strings.HasPrefix(data, "r:accept:"):
		s.acceptReport(ctx, chatID, user, parseID(data), ack, cb.Message.MessageID)
	case strings.HasPrefix(data, "r:reject:"):
		s.startRejectPrompt(ctx, chatID, user, parseID(data), ack)

	case strings.HasPrefix(data, "r:") || strings.HasPrefix(data, "wt:"):
		s.handleReportCallback(ctx, chatID, user, cb, ack)
	case strings.HasPrefix(data, "p:"):
		s.handleProblemCallback(ctx, chatID, user, cb, ack)

	case strings.HasPrefix(data, "admin:") || strings.HasPrefix(data, "set:"):
		s.handleAdminCallback(ctx, chatID, user, cb, ack)

	default:
		ack("")
	}
}

func (s *Service) handleMessage(ctx context.Context, m *bot.Message) {
	if m.From == nil {
		return
	}
	chatID := m.Chat.ID
	tgID := m.From.ID

	user, err := s.users.GetOrCreate(tgID, s.adminIDs[tgID])
	if err != nil {
		s.logger.Error("failed to load user", zap.Int64("tg_id", tgID), zap.Error(err))
		return
	}

	switch strings.TrimSpace(m.Text) {
	case "/start":
		s.handleStart(ctx, chatID, user)
		return
	case "/admin":
		if !user.IsAdmin {
			s.send(ctx, chatID, textNoAccess, nil)
			return
		}
		s.send(ctx, chatID, textAdminMenu, adminMenu())
		return
	case "Сдать рапорт":
		s.startReportFlow(ctx, chatID, user, nil)
		return
	case "Сообщить о проблеме":
		s.startProblemFlow(ctx, chatID, user)
		return
	case "Мои рапорты":
		s.showMyReports(ctx, chatID, user)
		return
	}

	draft, err := s.dialogs.Get(ctx, chatID)
	if err != nil {
		s.logger.Error("failed to load draft", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	if draft == nil {
		return
	}

	switch draft.Flow {
	case dialog.FlowRegistration:
		s.handleRegistrationMessage(ctx, chatID, user, draft, m)
	case dialog.FlowReport:
		s.handleReportMessage(ctx, chatID, user, draft, m)
	case dialog.FlowProblem:
		s.handleProblemMessage(ctx, chatID, user, draft, m)
	case dialog.FlowAdminReject:
		s.handleRejectComment(ctx, chatID, user, draft, m)
	case dialog.FlowAdminAddWorkType:
		s.handleAddWorkTypeName(ctx, chatID, user, draft, m)
	case dialog.FlowAdminMotd:
		s.handleMotdText(ctx, chatID, user, draft, m)
	case dialog.FlowAdminDirect:
		s.handleDirectMessageText(ctx, chatID, user, draft, m)
	}
}

// handleStart greets a new user and enters registration, or shows the
// main menu for a complete profile. Any draft in progress is dropped.
func (s *Service) handleStart(ctx context.Context, chatID int64, user *domain.User) {
	if err := s.dialogs.Clear(ctx, chatID); err != nil {
		s.logger.Warn("failed to clear draft", zap.Error(err))
	}

	if !user.Registered() {
		s.send(ctx, chatID, welcomeText, nil)
		s.send(ctx, chatID, textAskRegFirstName, nil)
		draft := &dialog.Draft{Flow: dialog.FlowRegistration, Step: dialog.StepRegFirstName}
		if err := s.dialogs.Save(ctx, chatID, draft); err != nil {
			s.logger.Error("failed to save draft", zap.Error(err))
		}
		return
	}

	s.send(ctx, chatID, textMainMenu, mainMenu(user.IsWorking))
}

// parseID extracts the trailing numeric id of a callback payload.
func parseID(data string) int64 {
	parts := strings.Split(data, ":")
	id, _ := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	return id
}
