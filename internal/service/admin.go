package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"fieldops/internal/bot"
	"fieldops/internal/dialog"
	"fieldops/internal/domain"
	"fieldops/internal/ledger"
)

func (s *Service) handleAdminCallback(ctx context.Context, chatID int64, user *domain.User, cb *bot.CallbackQuery, ack func(string)) {
	if !user.IsAdmin {
		ack(textNoAccess)
		return
	}

	data := cb.Data
	switch {
	case data == "admin:pending":
		s.showPending(ctx, chatID)
		ack("")
	case data == "admin:history:reports":
		s.showReportHistory(ctx, chatID)
		ack("")
	case data == "admin:history:edits":
		s.showEditHistory(ctx, chatID)
		ack("")
	case data == "admin:history:problems":
		s.showProblemHistory(ctx, chatID)
		ack("")
	case data == "admin:export":
		s.exportMonth(ctx, chatID)
		ack("")
	case data == "admin:settings":
		s.showSettings(ctx, chatID)
		ack("")
	case strings.HasPrefix(data, "set:toggle:"):
		s.toggleSetting(ctx, chatID, strings.TrimPrefix(data, "set:toggle:"))
		ack("")
	case data == "set:add_work_type":
		s.promptOneShot(ctx, chatID, dialog.FlowAdminAddWorkType, textAskWorkTypeName, nil)
		ack("")
	case data == "set:del_work_type":
		s.showHideWorkTypes(ctx, chatID)
		ack("")
	case strings.HasPrefix(data, "set:wt_off:"):
		s.hideWorkType(ctx, chatID, parseID(data))
		ack("")
	case data == "admin:motd":
		s.promptMotd(ctx, chatID)
		ack("")
	case data == "admin:workers":
		s.showWorkers(ctx, chatID)
		ack("")
	case strings.HasPrefix(data, "admin:msg:"):
		tgID := parseID(data)
		s.promptOneShot(ctx, chatID, dialog.FlowAdminDirect, textAskAdminMessage, &tgID)
		ack("")
	case data == "admin:back":
		s.send(ctx, chatID, textAdminMenu, adminMenu())
		ack("")
	default:
		ack("")
	}
}

// promptOneShot arms a single-message admin prompt.
func (s *Service) promptOneShot(ctx context.Context, chatID int64, flow dialog.Flow, prompt string, targetTgID *int64) {
	draft := &dialog.Draft{Flow: flow, Step: dialog.StepAwaitInput, TargetTgID: targetTgID}
	s.saveDraft(ctx, chatID, draft)
	s.send(ctx, chatID, prompt, nil)
}

func (s *Service) showPending(ctx context.Context, chatID int64) {
	reports, err := s.reports.ListPending(15)
	if err != nil {
		s.logger.Error("failed to list pending reports", zap.Error(err))
		return
	}
	if len(reports) == 0 {
		s.send(ctx, chatID, textNothingPending, adminMenu())
		return
	}

	s.send(ctx, chatID, fmt.Sprintf("Рапорты на проверке (до 15, новые первыми): %d", len(reports)), nil)
	for i := range reports {
		r := &reports[i]
		s.send(ctx, chatID, adminReportCard(r), reviewKeyboard(r.ID))
	}
}

func (s *Service) showReportHistory(ctx context.Context, chatID int64) {
	reports, err := s.reports.ListRecent(20)
	if err != nil {
		s.logger.Error("failed to list reports", zap.Error(err))
		return
	}
	if len(reports) == 0 {
		s.send(ctx, chatID, "Рапортов пока нет.", adminMenu())
		return
	}

	lines := []string{"Последние рапорты (до 20):\n"}
	for i := range reports {
		r := &reports[i]
		name := fmt.Sprintf("user#%d", r.UserID)
		if r.User != nil {
			name = r.User.DisplayName()
		}
		line := fmt.Sprintf("• #%d - %s - %s - %s", r.ID, fmtDate(r.Date), name, r.Status.HumanStatus())
		if r.EditCount > 0 {
			line += fmt.Sprintf(" | правок: %d", r.EditCount)
		}
		lines = append(lines, line)
	}
	s.send(ctx, chatID, strings.Join(lines, "\n"), adminMenu())
}

func (s *Service) showEditHistory(ctx context.Context, chatID int64) {
	edits, err := s.reports.ListRecentEdits(20)
	if err != nil {
		s.logger.Error("failed to list report edits", zap.Error(err))
		return
	}
	if len(edits) == 0 {
		s.send(ctx, chatID, "Изменений пока нет.", adminMenu())
		return
	}

	lines := []string{"Последние изменения (до 20):\n"}
	for _, e := range edits {
		editor := fmt.Sprintf("user#%d", e.EditorUserID)
		if u, err := s.users.GetByID(e.EditorUserID); err == nil && u != nil {
			editor = u.DisplayName()
		}
		lines = append(lines, fmt.Sprintf("• Рапорт #%d - %s - %s", e.ReportID, fmtDateTime(e.EditedAt), editor))
	}
	s.send(ctx, chatID, strings.Join(lines, "\n"), adminMenu())
}

func (s *Service) showProblemHistory(ctx context.Context, chatID int64) {
	problems, err := s.problems.ListRecent(20)
	if err != nil {
		s.logger.Error("failed to list problems", zap.Error(err))
		return
	}
	if len(problems) == 0 {
		s.send(ctx, chatID, "Проблем пока нет.", adminMenu())
		return
	}

	lines := []string{"Последние проблемы (до 20):\n"}
	for i := range problems {
		p := &problems[i]
		name := fmt.Sprintf("user#%d", p.UserID)
		if p.User != nil {
			name = p.User.DisplayName()
		}
		lines = append(lines, fmt.Sprintf("• #%d - %s - %s - %s - %s",
			p.ID, fmtDateTime(p.CreatedAt), name, p.Type, p.Urgency.HumanUrgency()))
	}
	s.send(ctx, chatID, strings.Join(lines, "\n"), adminMenu())
}

func (s *Service) showSettings(ctx context.Context, chatID int64) {
	photoReports, err := s.settings.GetBool(domain.SettingPhotoRequiredReports)
	if err != nil {
		s.logger.Warn("failed to read setting", zap.Error(err))
	}
	photoProblems, err := s.settings.GetBool(domain.SettingPhotoRequiredProblems)
	if err != nil {
		s.logger.Warn("failed to read setting", zap.Error(err))
	}
	s.send(ctx, chatID, textSettings, settingsKeyboard(photoReports, photoProblems))
}

func (s *Service) toggleSetting(ctx context.Context, chatID int64, key string) {
	if key != domain.SettingPhotoRequiredReports && key != domain.SettingPhotoRequiredProblems {
		return
	}
	current, err := s.settings.GetBool(key)
	if err != nil {
		s.logger.Warn("failed to read setting", zap.String("key", key), zap.Error(err))
	}
	if err := s.settings.SetBool(key, !current); err != nil {
		s.logger.Error("failed to write setting", zap.String("key", key), zap.Error(err))
		return
	}
	s.showSettings(ctx, chatID)
}

// showHideWorkTypes lists the active catalog so one entry can be
// deactivated. Historical report tasks keep referencing hidden types.
func (s *Service) showHideWorkTypes(ctx context.Context, chatID int64) {
	types, err := s.workTypes.ListActive()
	if err != nil {
		s.logger.Error("failed to list work types", zap.Error(err))
		return
	}
	if len(types) == 0 {
		s.send(ctx, chatID, textNoWorkTypes, adminMenu())
		return
	}
	s.send(ctx, chatID, textPickWorkTypeOff, hideWorkTypesKeyboard(types))
}

func (s *Service) hideWorkType(ctx context.Context, chatID int64, id int64) {
	wt, err := s.workTypes.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load work type", zap.Int64("work_type_id", id), zap.Error(err))
		return
	}
	if wt == nil {
		s.showSettings(ctx, chatID)
		return
	}
	if err := s.workTypes.Deactivate(id); err != nil {
		s.logger.Error("failed to deactivate work type", zap.Int64("work_type_id", id), zap.Error(err))
		return
	}
	s.send(ctx, chatID, fmt.Sprintf("Скрыто: %s", wt.Name), nil)
	s.showSettings(ctx, chatID)
}

func (s *Service) promptMotd(ctx context.Context, chatID int64) {
	motd, err := s.settings.GetText(domain.SettingMotd)
	if err != nil {
		s.logger.Warn("failed to load motd", zap.Error(err))
	}
	current := "Текущее сообщение дня: не задано."
	if motd != "" {
		current = "Текущее сообщение дня:\n" + motd
	}
	s.send(ctx, chatID, current, nil)
	s.promptOneShot(ctx, chatID, dialog.FlowAdminMotd, "Введите новое сообщение дня:", nil)
}

func (s *Service) showWorkers(ctx context.Context, chatID int64) {
	workers, err := s.users.ListWorkers(30)
	if err != nil {
		s.logger.Error("failed to list workers", zap.Error(err))
		return
	}
	if len(workers) == 0 {
		s.send(ctx, chatID, "Сотрудников пока нет.", adminMenu())
		return
	}
	s.send(ctx, chatID, workersText(workers), workersKeyboard(workers))
}

// acceptReport marks a report accepted, notifies the owner and the
// other admins, projects the decision and clears the review buttons.
func (s *Service) acceptReport(ctx context.Context, chatID int64, admin *domain.User, reportID int64, ack func(string), messageID int64) {
	if !admin.IsAdmin {
		ack(textNoAccess)
		return
	}

	report, err := s.reports.GetWithRelations(reportID)
	if err != nil {
		s.logger.Error("failed to load report", zap.Int64("report_id", reportID), zap.Error(err))
		ack("")
		return
	}
	if report == nil {
		ack(textReportNotFound)
		return
	}

	if err := s.reports.SetStatus(reportID, domain.ReportAccepted, nil); err != nil {
		s.logger.Error("failed to accept report", zap.Int64("report_id", reportID), zap.Error(err))
		ack("")
		return
	}
	report.Status = domain.ReportAccepted
	report.AdminComment = nil

	s.logger.Info("report accepted",
		zap.Int64("report_id", reportID), zap.Int64("admin_tg_id", admin.TgID))

	if report.User != nil {
		s.send(ctx, report.User.TgID, fmt.Sprintf("Ваш рапорт #%d принят ✅", report.ID), nil)
	}

	note := fmt.Sprintf("Рапорт #%d принят админом: %s\nВремя: %s",
		report.ID, admin.DisplayName(), fmtDateTime(s.now()))
	ownerTgID := int64(0)
	if report.User != nil {
		ownerTgID = report.User.TgID
	}
	for _, adminID := range s.adminChatIDs(admin.TgID) {
		if adminID == ownerTgID {
			continue
		}
		s.send(ctx, adminID, note, nil)
	}

	s.projectStatus(ctx, report.ID, domain.ReportAccepted, admin.TgID, "")
	// An accepted report is what lands on the month sheet, so the full
	// payload is re-projected with the final status.
	s.projectReport(ctx, report, "report_created")

	if err := s.gateway.ClearReplyMarkup(ctx, chatID, messageID); err != nil {
		s.logger.Warn("failed to clear review buttons", zap.Error(err))
	}
	ack("Принято.")
}

// startRejectPrompt arms the rejection-comment prompt for a report.
func (s *Service) startRejectPrompt(ctx context.Context, chatID int64, admin *domain.User, reportID int64, ack func(string)) {
	if !admin.IsAdmin {
		ack(textNoAccess)
		return
	}

	draft := &dialog.Draft{
		Flow:           dialog.FlowAdminReject,
		Step:           dialog.StepAwaitInput,
		TargetReportID: &reportID,
	}
	s.saveDraft(ctx, chatID, draft)
	s.send(ctx, chatID, textAskRejectWhy, nil)
	ack("")
}

func (s *Service) handleRejectComment(ctx context.Context, chatID int64, admin *domain.User, draft *dialog.Draft, m *bot.Message) {
	if !admin.IsAdmin || draft.TargetReportID == nil {
		return
	}

	comment := strings.TrimSpace(m.Text)
	if len([]rune(comment)) < 2 {
		s.send(ctx, chatID, textShortReject, nil)
		return
	}
	reportID := *draft.TargetReportID

	report, err := s.reports.GetWithRelations(reportID)
	if err != nil {
		s.logger.Error("failed to load report", zap.Int64("report_id", reportID), zap.Error(err))
		return
	}
	if report == nil {
		s.send(ctx, chatID, textReportNotFound, adminMenu())
		return
	}

	if err := s.reports.SetStatus(reportID, domain.ReportRejected, &comment); err != nil {
		s.logger.Error("failed to reject report", zap.Int64("report_id", reportID), zap.Error(err))
		return
	}

	s.logger.Info("report rejected",
		zap.Int64("report_id", reportID), zap.Int64("admin_tg_id", admin.TgID))

	if report.User != nil {
		s.send(ctx, report.User.TgID,
			fmt.Sprintf("Ваш рапорт #%d отклонён ❌\nКомментарий: %s", report.ID, comment), nil)
	}

	s.projectStatus(ctx, report.ID, domain.ReportRejected, admin.TgID, comment)

	if err := s.dialogs.Clear(ctx, chatID); err != nil {
		s.logger.Warn("failed to clear draft", zap.Error(err))
	}
	s.send(ctx, chatID, fmt.Sprintf("Готово. Рапорт #%d отклонён.", report.ID), adminMenu())
}

func (s *Service) projectStatus(ctx context.Context, reportID int64, status domain.ReportStatus, adminTgID int64, comment string) {
	if s.ledger == nil {
		return
	}
	err := s.ledger.AppendReportStatus(ctx, ledger.StatusPayload{
		Event:        "report_status_changed",
		ChangedAtUTC: s.now().Format(time.RFC3339),
		ReportID:     reportID,
		Status:       string(status),
		AdminTgID:    adminTgID,
		AdminComment: comment,
	})
	if err != nil {
		s.logger.Warn("failed to project status change", zap.Int64("report_id", reportID), zap.Error(err))
	}
}

func (s *Service) handleAddWorkTypeName(ctx context.Context, chatID int64, admin *domain.User, draft *dialog.Draft, m *bot.Message) {
	if !admin.IsAdmin {
		return
	}

	name := strings.TrimSpace(m.Text)
	if len([]rune(name)) < 2 {
		s.send(ctx, chatID, textShortWorkType, nil)
		return
	}

	wt, err := s.workTypes.AddOrActivate(name)
	if err != nil {
		s.logger.Error("failed to add work type", zap.String("name", name), zap.Error(err))
		return
	}

	if err := s.dialogs.Clear(ctx, chatID); err != nil {
		s.logger.Warn("failed to clear draft", zap.Error(err))
	}
	s.send(ctx, chatID, fmt.Sprintf("Добавлено/активировано: %s", wt.Name), nil)
	s.showSettings(ctx, chatID)
}

func (s *Service) handleMotdText(ctx context.Context, chatID int64, admin *domain.User, draft *dialog.Draft, m *bot.Message) {
	if !admin.IsAdmin {
		return
	}

	if err := s.settings.SetText(domain.SettingMotd, strings.TrimSpace(m.Text)); err != nil {
		s.logger.Error("failed to save motd", zap.Error(err))
		return
	}
	if err := s.dialogs.Clear(ctx, chatID); err != nil {
		s.logger.Warn("failed to clear draft", zap.Error(err))
	}
	s.send(ctx, chatID, textMotdSaved, adminMenu())
}

func (s *Service) handleDirectMessageText(ctx context.Context, chatID int64, admin *domain.User, draft *dialog.Draft, m *bot.Message) {
	if !admin.IsAdmin || draft.TargetTgID == nil {
		return
	}

	text := strings.TrimSpace(m.Text)
	if text == "" {
		return
	}

	_, err := s.gateway.SendMessage(ctx, *draft.TargetTgID, "Сообщение от администратора:\n\n"+text, nil)

	if clearErr := s.dialogs.Clear(ctx, chatID); clearErr != nil {
		s.logger.Warn("failed to clear draft", zap.Error(clearErr))
	}
	if err != nil {
		s.logger.Warn("failed to deliver direct message", zap.Int64("target_tg_id", *draft.TargetTgID), zap.Error(err))
		s.send(ctx, chatID, textMessageFailed, adminMenu())
		return
	}
	s.send(ctx, chatID, textMessageSent, adminMenu())
}
