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
	"fieldops/internal/repository"
)

const maxProblemMedia = 5

// startProblemFlow begins a problem ticket.
func (s *Service) startProblemFlow(ctx context.Context, chatID int64, user *domain.User) {
	if !user.Registered() {
		s.send(ctx, chatID, textNeedProfile, nil)
		return
	}

	if err := s.dialogs.Clear(ctx, chatID); err != nil {
		s.logger.Warn("failed to clear draft", zap.Error(err))
	}

	draft := &dialog.Draft{Flow: dialog.FlowProblem, Step: dialog.StepProblemType}
	s.saveDraft(ctx, chatID, draft)
	s.send(ctx, chatID, textAskProblemType, problemTypesKeyboard())
}

func (s *Service) handleProblemMessage(ctx context.Context, chatID int64, user *domain.User, draft *dialog.Draft, m *bot.Message) {
	text := strings.TrimSpace(m.Text)

	switch draft.Step {
	case dialog.StepProblemDescription:
		if len([]rune(text)) < 3 {
			s.send(ctx, chatID, textShortDesc, nil)
			return
		}
		draft.Description = text
		draft.Step = dialog.StepProblemAddress
		s.saveDraft(ctx, chatID, draft)
		s.send(ctx, chatID, textAskAddress, nil)

	case dialog.StepProblemAddress:
		if len([]rune(text)) < 3 {
			s.send(ctx, chatID, textShortAddress, nil)
			return
		}
		draft.Address = text
		draft.Step = dialog.StepProblemScooter
		s.saveDraft(ctx, chatID, draft)
		s.send(ctx, chatID, textAskScooter, skipKeyboard("p:skip_scooter"))

	case dialog.StepProblemScooter:
		if text == "" {
			return
		}
		draft.ScooterNumber = &text
		s.askProblemMedia(ctx, chatID, draft)

	case dialog.StepProblemMedia:
		media, ok := incomingMedia(m)
		if !ok {
			s.send(ctx, chatID, textMediaOrSkip, nil)
			return
		}
		if len(draft.Media) >= maxProblemMedia {
			s.send(ctx, chatID, fmt.Sprintf("Максимум %d вложений. Нажмите «Готово».", maxProblemMedia),
				doneKeyboard("p:media_done", ""))
			return
		}
		draft.Media = append(draft.Media, media)
		s.saveDraft(ctx, chatID, draft)
		s.send(ctx, chatID,
			fmt.Sprintf("Добавлено %d/%d. Отправьте ещё или нажмите «Готово».", len(draft.Media), maxProblemMedia),
			doneKeyboard("p:media_done", ""))
	}
}

func (s *Service) handleProblemCallback(ctx context.Context, chatID int64, user *domain.User, cb *bot.CallbackQuery, ack func(string)) {
	draft, err := s.dialogs.Get(ctx, chatID)
	if err != nil || draft == nil || draft.Flow != dialog.FlowProblem {
		ack("")
		return
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, "p:type:") && draft.Step == dialog.StepProblemType:
		parts := strings.SplitN(data, ":", 4)
		if len(parts) < 4 || parts[3] == "" {
			ack("")
			return
		}
		draft.ProblemType = parts[3]
		draft.Step = dialog.StepProblemDescription
		s.saveDraft(ctx, chatID, draft)
		s.send(ctx, chatID, textAskProblemDesc, nil)
		ack("")

	case data == "p:skip_scooter" && draft.Step == dialog.StepProblemScooter:
		draft.ScooterNumber = nil
		s.askProblemMedia(ctx, chatID, draft)
		ack("")

	case data == "p:skip_media" && draft.Step == dialog.StepProblemMedia:
		if s.problemMediaRequired() {
			ack("")
			s.send(ctx, chatID, textMediaRequired, nil)
			return
		}
		draft.Media = nil
		s.askUrgency(ctx, chatID, draft)
		ack("")

	case data == "p:media_done" && draft.Step == dialog.StepProblemMedia:
		if len(draft.Media) == 0 && s.problemMediaRequired() {
			ack("")
			s.send(ctx, chatID, textNeedMedia, nil)
			return
		}
		s.askUrgency(ctx, chatID, draft)
		ack("")

	case strings.HasPrefix(data, "p:urgency:") && draft.Step == dialog.StepProblemUrgency:
		draft.Urgency = strings.TrimPrefix(data, "p:urgency:")
		s.showProblemPreview(ctx, chatID, user, draft)
		ack("")

	case data == "p:confirm" && draft.Step == dialog.StepProblemConfirm:
		s.submitProblem(ctx, chatID, user, draft)
		ack("")

	case data == "p:cancel":
		if err := s.dialogs.Clear(ctx, chatID); err != nil {
			s.logger.Warn("failed to clear draft", zap.Error(err))
		}
		s.send(ctx, chatID, textCancelled, mainMenu(user.IsWorking))
		ack("")

	default:
		ack("")
	}
}

func (s *Service) problemMediaRequired() bool {
	required, err := s.settings.GetBool(domain.SettingPhotoRequiredProblems)
	if err != nil {
		s.logger.Warn("failed to read setting", zap.Error(err))
	}
	return required
}

func (s *Service) askProblemMedia(ctx context.Context, chatID int64, draft *dialog.Draft) {
	draft.Step = dialog.StepProblemMedia
	draft.Media = nil
	s.saveDraft(ctx, chatID, draft)

	if s.problemMediaRequired() {
		s.send(ctx, chatID,
			fmt.Sprintf("Прикрепите фото/видео (до %d, обязательно по настройкам). Когда закончите - «Готово».", maxProblemMedia),
			doneKeyboard("p:media_done", ""))
		return
	}
	s.send(ctx, chatID,
		fmt.Sprintf("Прикрепите фото/видео (до %d, можно пропустить). Когда закончите - «Готово».", maxProblemMedia),
		doneKeyboard("p:media_done", "p:skip_media"))
}

func (s *Service) askUrgency(ctx context.Context, chatID int64, draft *dialog.Draft) {
	draft.Step = dialog.StepProblemUrgency
	s.saveDraft(ctx, chatID, draft)
	s.send(ctx, chatID, textAskUrgency, urgencyKeyboard())
}

func (s *Service) showProblemPreview(ctx context.Context, chatID int64, user *domain.User, draft *dialog.Draft) {
	draft.Step = dialog.StepProblemConfirm
	s.saveDraft(ctx, chatID, draft)

	s.send(ctx, chatID,
		problemPreview(user, draft.ProblemType, draft.Description, draft.Address,
			draft.ScooterNumber, domain.ProblemUrgency(draft.Urgency), len(draft.Media)),
		confirmKeyboard("p:confirm", "p:cancel"))
}

func (s *Service) submitProblem(ctx context.Context, chatID int64, user *domain.User, draft *dialog.Draft) {
	input := repository.ProblemInput{
		ProblemType:   draft.ProblemType,
		Description:   draft.Description,
		Address:       draft.Address,
		ScooterNumber: draft.ScooterNumber,
		Urgency:       domain.ProblemUrgency(draft.Urgency),
	}
	for _, m := range draft.Media {
		input.Media = append(input.Media, domain.MediaInput{FileID: m.FileID, Type: domain.MediaType(m.Type)})
	}

	problem, err := s.problems.Create(user.ID, input)
	if err != nil {
		s.logger.Error("failed to create problem", zap.Int64("user_id", user.ID), zap.Error(err))
		s.send(ctx, chatID, "Не удалось сохранить проблему. Попробуйте ещё раз.", nil)
		return
	}

	if err := s.dialogs.Clear(ctx, chatID); err != nil {
		s.logger.Warn("failed to clear draft", zap.Error(err))
	}

	s.logger.Info("problem submitted",
		zap.Int64("problem_id", problem.ID),
		zap.Int64("user_id", user.ID),
		zap.String("urgency", string(problem.Urgency)))
	s.send(ctx, chatID, fmt.Sprintf("Проблема отправлена. Номер: #%d", problem.ID), mainMenu(user.IsWorking))

	s.projectProblem(ctx, problem, user)

	card := adminProblemCard(problem, user)
	for _, adminID := range s.adminChatIDs(user.TgID) {
		s.send(ctx, adminID, card, nil)
		for _, m := range problem.Media {
			s.resendMedia(ctx, adminID, m.FileID, m.Type)
		}
	}
}

func (s *Service) projectProblem(ctx context.Context, problem *domain.Problem, user *domain.User) {
	if s.ledger == nil {
		return
	}

	payload := ledger.ProblemPayload{
		Event:        "problem_created",
		CreatedAtUTC: problem.CreatedAt.Format(time.RFC3339),
		ProblemID:    problem.ID,
		TgID:         user.TgID,
		ProblemType:  problem.Type,
		Description:  problem.Description,
		Address:      problem.Address,
		Urgency:      string(problem.Urgency),
	}
	if user.FirstName != nil {
		payload.FirstName = *user.FirstName
	}
	if user.LastName != nil {
		payload.LastName = *user.LastName
	}
	if user.Position != nil {
		payload.Position = *user.Position
	}
	if user.City != nil {
		payload.City = *user.City
	}
	if problem.ScooterNumber != nil {
		payload.ScooterNumber = *problem.ScooterNumber
	}
	for _, m := range problem.Media {
		payload.Media = append(payload.Media, ledger.MediaCell{FileID: m.FileID})
	}

	if err := s.ledger.AppendProblem(ctx, payload); err != nil {
		s.logger.Warn("failed to project problem", zap.Int64("problem_id", problem.ID), zap.Error(err))
	}
}
