package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"fieldops/internal/bot"
	"fieldops/internal/dialog"
	"fieldops/internal/domain"
	"fieldops/internal/ledger"
	"fieldops/internal/repository"
)

// startReportFlow begins collecting a new report, or re-collects an
// existing one when editingID is set. Editing walks the same steps and
// replaces every field on confirmation.
func (s *Service) startReportFlow(ctx context.Context, chatID int64, user *domain.User, editingID *int64) {
	if !user.Registered() {
		s.send(ctx, chatID, textNeedProfile, nil)
		return
	}

	if err := s.dialogs.Clear(ctx, chatID); err != nil {
		s.logger.Warn("failed to clear draft", zap.Error(err))
	}

	draft := &dialog.Draft{Flow: dialog.FlowReport, Step: dialog.StepReportDate}
	if editingID != nil {
		report, err := s.reports.GetWithRelations(*editingID)
		if err != nil || report == nil || report.UserID != user.ID {
			s.send(ctx, chatID, textReportNotFound, nil)
			return
		}
		draft.EditingReportID = editingID
		s.send(ctx, chatID, fmt.Sprintf("Редактирование рапорта #%d. Все поля вводятся заново.", *editingID), nil)
	}

	s.saveDraft(ctx, chatID, draft)
	s.send(ctx, chatID, textAskDate, backToMenu())
}

func (s *Service) handleReportMessage(ctx context.Context, chatID int64, user *domain.User, draft *dialog.Draft, m *bot.Message) {
	text := strings.TrimSpace(m.Text)

	switch draft.Step {
	case dialog.StepReportDate:
		date, err := dialog.ParseDate(text, s.now())
		if err != nil {
			s.send(ctx, chatID, textBadDate, nil)
			return
		}
		draft.Date = date.Format("2006-01-02")
		draft.Step = dialog.StepReportPartner
		s.saveDraft(ctx, chatID, draft)
		s.send(ctx, chatID, textAskPartner, skipKeyboard("r:skip_partner"))

	case dialog.StepReportPartner:
		if text == "" {
			return
		}
		draft.PartnerName = &text
		s.askWorkTypes(ctx, chatID, draft)

	case dialog.StepReportQuantity:
		qty, err := strconv.Atoi(text)
		if err != nil || qty < 0 {
			s.send(ctx, chatID, textBadQuantity, nil)
			return
		}
		if draft.RecordQuantity(qty) {
			s.saveDraft(ctx, chatID, draft)
			s.askQuantity(ctx, chatID, draft)
			return
		}
		s.afterQuantities(ctx, chatID, user, draft)

	case dialog.StepReportTime:
		clock, err := dialog.ParseClock(text)
		if err != nil {
			if draft.StartTime == "" {
				s.send(ctx, chatID, textBadStartTime, nil)
			} else {
				s.send(ctx, chatID, textBadEndTime, nil)
			}
			return
		}
		if draft.StartTime == "" {
			draft.StartTime = clock
			s.saveDraft(ctx, chatID, draft)
			s.send(ctx, chatID, textAskEndTime, nil)
			return
		}
		draft.EndTime = clock
		s.askComment(ctx, chatID, draft)

	case dialog.StepReportComment:
		if text == "" {
			return
		}
		draft.Comment = &text
		s.askMedia(ctx, chatID, draft)

	case dialog.StepReportMedia:
		media, ok := incomingMedia(m)
		if !ok {
			s.send(ctx, chatID, textMediaOrSkip, nil)
			return
		}
		draft.Media = []dialog.MediaDraft{media}
		s.showReportPreview(ctx, chatID, user, draft)
	}
}

func (s *Service) handleReportCallback(ctx context.Context, chatID int64, user *domain.User, cb *bot.CallbackQuery, ack func(string)) {
	draft, err := s.dialogs.Get(ctx, chatID)
	if err != nil || draft == nil || draft.Flow != dialog.FlowReport {
		ack("")
		return
	}

	data := cb.Data
	switch {
	case data == "r:skip_partner" && draft.Step == dialog.StepReportPartner:
		draft.PartnerName = nil
		s.askWorkTypes(ctx, chatID, draft)
		ack("")

	case strings.HasPrefix(data, "wt:toggle:") && draft.Step == dialog.StepReportTypes:
		draft.ToggleType(parseID(data))
		s.saveDraft(ctx, chatID, draft)
		s.sendWorkTypesKeyboard(ctx, chatID, draft)
		ack("")

	case data == "wt:next" && draft.Step == dialog.StepReportTypes:
		if len(draft.SelectedTypeIDs) == 0 {
			ack(textNeedOneType)
			return
		}
		draft.Step = dialog.StepReportQuantity
		draft.QuantityIndex = 0
		draft.Tasks = nil
		s.saveDraft(ctx, chatID, draft)
		s.askQuantity(ctx, chatID, draft)
		ack("")

	case data == "r:skip_comment" && draft.Step == dialog.StepReportComment:
		draft.Comment = nil
		s.askMedia(ctx, chatID, draft)
		ack("")

	case data == "r:skip_media" && draft.Step == dialog.StepReportMedia:
		required, err := s.settings.GetBool(domain.SettingPhotoRequiredReports)
		if err != nil {
			s.logger.Warn("failed to read setting", zap.Error(err))
		}
		if required {
			ack("")
			s.send(ctx, chatID, textMediaRequired, nil)
			return
		}
		draft.Media = nil
		s.showReportPreview(ctx, chatID, user, draft)
		ack("")

	case data == "r:confirm" && draft.Step == dialog.StepReportConfirm:
		s.submitReport(ctx, chatID, user, draft)
		ack("")

	case data == "r:confirm_edit" && draft.Step == dialog.StepReportConfirm:
		s.submitReportEdit(ctx, chatID, user, draft)
		ack("")

	case data == "r:cancel":
		if err := s.dialogs.Clear(ctx, chatID); err != nil {
			s.logger.Warn("failed to clear draft", zap.Error(err))
		}
		s.send(ctx, chatID, textCancelled, mainMenu(user.IsWorking))
		ack("")

	default:
		ack("")
	}
}

func (s *Service) askWorkTypes(ctx context.Context, chatID int64, draft *dialog.Draft) {
	draft.Step = dialog.StepReportTypes
	draft.SelectedTypeIDs = nil
	s.saveDraft(ctx, chatID, draft)
	s.sendWorkTypesKeyboard(ctx, chatID, draft)
}

func (s *Service) sendWorkTypesKeyboard(ctx context.Context, chatID int64, draft *dialog.Draft) {
	types, err := s.workTypes.ListActive()
	if err != nil {
		s.logger.Error("failed to list work types", zap.Error(err))
		return
	}
	s.send(ctx, chatID, textAskWorkTypes, workTypesKeyboard(types, draft.TypeSelected))
}

func (s *Service) askQuantity(ctx context.Context, chatID int64, draft *dialog.Draft) {
	wt, err := s.workTypeName(draft.CurrentQuantityType())
	if err != nil {
		s.logger.Error("failed to resolve work type", zap.Error(err))
		return
	}
	s.send(ctx, chatID, fmt.Sprintf("Введите количество для «%s» (целое число):", wt), nil)
}

func (s *Service) workTypeName(id int64) (string, error) {
	wt, err := s.workTypes.GetByID(id)
	if err != nil {
		return "", err
	}
	if wt == nil {
		return fmt.Sprintf("#%d", id), nil
	}
	return wt.Name, nil
}

// afterQuantities decides between session autofill and manual time
// entry. A closed, unlinked session of the report's day donates its
// start/end times and is remembered for linking on confirmation.
func (s *Service) afterQuantities(ctx context.Context, chatID int64, user *domain.User, draft *dialog.Draft) {
	day, err := time.Parse("2006-01-02", draft.Date)
	if err == nil {
		session, err := s.sessions.FindSameDayUnlinked(user.ID, day)
		if err != nil {
			s.logger.Warn("failed to look up session", zap.Error(err))
		}
		if session != nil && session.EndedAt != nil {
			draft.StartTime = session.StartedAt.Format("15:04")
			draft.EndTime = session.EndedAt.Format("15:04")
			draft.WorkSessionID = &session.ID
			s.send(ctx, chatID, fmt.Sprintf(
				"Время подставлено автоматически из смены: %s–%s", draft.StartTime, draft.EndTime), nil)
			s.askComment(ctx, chatID, draft)
			return
		}
	}

	draft.Step = dialog.StepReportTime
	draft.StartTime = ""
	draft.EndTime = ""
	s.saveDraft(ctx, chatID, draft)
	s.send(ctx, chatID, textAskStartTime, nil)
}

func (s *Service) askComment(ctx context.Context, chatID int64, draft *dialog.Draft) {
	draft.Step = dialog.StepReportComment
	s.saveDraft(ctx, chatID, draft)
	s.send(ctx, chatID, textAskComment, skipKeyboard("r:skip_comment"))
}

func (s *Service) askMedia(ctx context.Context, chatID int64, draft *dialog.Draft) {
	draft.Step = dialog.StepReportMedia
	s.saveDraft(ctx, chatID, draft)

	required, err := s.settings.GetBool(domain.SettingPhotoRequiredReports)
	if err != nil {
		s.logger.Warn("failed to read setting", zap.Error(err))
	}
	if required {
		s.send(ctx, chatID, textMediaRequired, nil)
		return
	}
	s.send(ctx, chatID, textMediaOptional, skipKeyboard("r:skip_media"))
}

func (s *Service) showReportPreview(ctx context.Context, chatID int64, user *domain.User, draft *dialog.Draft) {
	draft.Step = dialog.StepReportConfirm
	s.saveDraft(ctx, chatID, draft)

	date, _ := time.Parse("2006-01-02", draft.Date)
	tasks, err := s.previewTasks(draft)
	if err != nil {
		s.logger.Error("failed to resolve work types", zap.Error(err))
	}

	confirm := "r:confirm"
	if draft.EditingReportID != nil {
		confirm = "r:confirm_edit"
	}
	s.send(ctx, chatID,
		reportPreview(user, date, draft.StartTime, draft.EndTime, tasks, draft.PartnerName, draft.Comment),
		confirmKeyboard(confirm, "r:cancel"))
}

func (s *Service) previewTasks(draft *dialog.Draft) ([]domain.ReportTask, error) {
	types, err := s.workTypes.ListActive()
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(types))
	for _, wt := range types {
		names[wt.ID] = wt.Name
	}

	tasks := make([]domain.ReportTask, 0, len(draft.Tasks))
	for _, t := range draft.Tasks {
		name := names[t.WorkTypeID]
		if name == "" {
			name = fmt.Sprintf("#%d", t.WorkTypeID)
		}
		tasks = append(tasks, domain.ReportTask{WorkTypeID: t.WorkTypeID, WorkTypeName: name, Quantity: t.Quantity})
	}
	return tasks, nil
}

func draftReportInput(draft *dialog.Draft) repository.ReportInput {
	date, _ := time.Parse("2006-01-02", draft.Date)

	input := repository.ReportInput{
		Date:        date,
		StartTime:   draft.StartTime,
		EndTime:     draft.EndTime,
		PartnerName: draft.PartnerName,
		Comment:     draft.Comment,
	}
	for _, t := range draft.Tasks {
		input.Tasks = append(input.Tasks, domain.TaskInput{WorkTypeID: t.WorkTypeID, Quantity: t.Quantity})
	}
	for _, m := range draft.Media {
		input.Media = append(input.Media, domain.MediaInput{FileID: m.FileID, Type: domain.MediaType(m.Type)})
	}
	return input
}

func (s *Service) submitReport(ctx context.Context, chatID int64, user *domain.User, draft *dialog.Draft) {
	report, err := s.reports.Create(user.ID, draftReportInput(draft))
	if err != nil {
		s.logger.Error("failed to create report", zap.Int64("user_id", user.ID), zap.Error(err))
		s.send(ctx, chatID, "Не удалось сохранить рапорт. Попробуйте ещё раз.", nil)
		return
	}

	if draft.WorkSessionID != nil {
		if err := s.sessions.LinkToReport(*draft.WorkSessionID, report.ID); err != nil {
			s.logger.Warn("failed to link session", zap.Int64("report_id", report.ID), zap.Error(err))
		}
	}

	if err := s.dialogs.Clear(ctx, chatID); err != nil {
		s.logger.Warn("failed to clear draft", zap.Error(err))
	}

	s.logger.Info("report submitted",
		zap.Int64("report_id", report.ID), zap.Int64("user_id", user.ID))
	s.send(ctx, chatID, fmt.Sprintf("Рапорт отправлен. Номер: #%d", report.ID), mainMenu(user.IsWorking))

	s.projectReport(ctx, report, "report_created")
	s.notifyAdminsAboutReport(ctx, user.TgID, report)
}

func (s *Service) submitReportEdit(ctx context.Context, chatID int64, user *domain.User, draft *dialog.Draft) {
	reportID := *draft.EditingReportID
	report, err := s.reports.UpdateWithAudit(reportID, user.ID, draftReportInput(draft))
	if err != nil {
		s.logger.Error("failed to update report", zap.Int64("report_id", reportID), zap.Error(err))
		s.send(ctx, chatID, "Не удалось обновить рапорт. Попробуйте ещё раз.", nil)
		return
	}

	if err := s.dialogs.Clear(ctx, chatID); err != nil {
		s.logger.Warn("failed to clear draft", zap.Error(err))
	}

	s.logger.Info("report edited",
		zap.Int64("report_id", report.ID),
		zap.Int64("editor_user_id", user.ID),
		zap.Int("edit_count", report.EditCount))
	s.send(ctx, chatID, fmt.Sprintf("Рапорт #%d обновлён.", report.ID), mainMenu(user.IsWorking))

	if s.ledger != nil {
		err := s.ledger.AppendReportEdit(ctx, ledger.EditPayload{
			Event:       "report_edited",
			EditedAtUTC: s.now().Format(time.RFC3339),
			ReportID:    report.ID,
			EditorTgID:  user.TgID,
			EditorName:  user.DisplayName(),
			EditCount:   report.EditCount,
		})
		if err != nil {
			s.logger.Warn("failed to project report edit", zap.Error(err))
		}
	}

	note := fmt.Sprintf("✏️ Рапорт #%d отредактирован.\nКто: %s\nПравок: %d",
		report.ID, user.DisplayName(), report.EditCount)
	for _, adminID := range s.adminChatIDs(user.TgID) {
		s.send(ctx, adminID, note, nil)
	}
}

// projectReport pushes a full report payload to the spreadsheet ledger.
func (s *Service) projectReport(ctx context.Context, report *domain.Report, event string) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.AppendReport(ctx, reportPayload(report, event, s.now())); err != nil {
		s.logger.Warn("failed to project report", zap.Int64("report_id", report.ID), zap.Error(err))
	}
}

func reportPayload(report *domain.Report, event string, now time.Time) ledger.ReportPayload {
	payload := ledger.ReportPayload{
		Event:        event,
		CreatedAtUTC: report.CreatedAt.Format(time.RFC3339),
		ReportID:     report.ID,
		ReportDate:   report.Date.Format("2006-01-02"),
		StartTime:    report.StartTime,
		EndTime:      report.EndTime,
		Status:       string(report.Status),
		EditCount:    report.EditCount,
	}
	if report.CreatedAt.IsZero() {
		payload.CreatedAtUTC = now.Format(time.RFC3339)
	}
	if report.PartnerName != nil {
		payload.PartnerName = *report.PartnerName
	}
	if report.Comment != nil {
		payload.Comment = *report.Comment
	}
	if report.EditedAt != nil {
		payload.EditedAtUTC = report.EditedAt.Format(time.RFC3339)
	}
	if u := report.User; u != nil {
		payload.TgID = u.TgID
		if u.FirstName != nil {
			payload.FirstName = *u.FirstName
		}
		if u.LastName != nil {
			payload.LastName = *u.LastName
		}
		if u.Position != nil {
			payload.Position = *u.Position
		}
		if u.City != nil {
			payload.City = *u.City
		}
	}
	for _, t := range report.Tasks {
		payload.Tasks = append(payload.Tasks, ledger.TaskCell{Type: t.WorkTypeName, Quantity: t.Quantity})
	}
	for _, m := range report.Media {
		payload.Media = append(payload.Media, ledger.MediaCell{FileID: m.FileID})
	}
	return payload
}

// notifyAdminsAboutReport fans the review card out to every admin chat
// except the submitter's own.
func (s *Service) notifyAdminsAboutReport(ctx context.Context, submitterTgID int64, report *domain.Report) {
	card := adminReportCard(report)
	for _, adminID := range s.adminChatIDs(submitterTgID) {
		s.send(ctx, adminID, card, reviewKeyboard(report.ID))
		if len(report.Media) > 0 {
			s.resendMedia(ctx, adminID, report.Media[0].FileID, report.Media[0].Type)
		}
	}
}

// incomingMedia extracts an attachment from a message: the largest
// photo size, or the video.
func incomingMedia(m *bot.Message) (dialog.MediaDraft, bool) {
	if fileID := m.LargestPhoto(); fileID != "" {
		return dialog.MediaDraft{FileID: fileID, Type: string(domain.MediaPhoto)}, true
	}
	if m.Video != nil {
		return dialog.MediaDraft{FileID: m.Video.FileID, Type: string(domain.MediaVideo)}, true
	}
	return dialog.MediaDraft{}, false
}
