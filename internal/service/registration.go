package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fieldops/internal/bot"
	"fieldops/internal/dialog"
	"fieldops/internal/domain"
)

// handleRegistrationMessage walks the six-step profile collection. Each
// answered step is written to the database immediately, so an aborted
// registration resumes where it stopped.
func (s *Service) handleRegistrationMessage(ctx context.Context, chatID int64, user *domain.User, draft *dialog.Draft, m *bot.Message) {
	text := strings.TrimSpace(m.Text)

	switch draft.Step {
	case dialog.StepRegFirstName:
		if text == "" {
			return
		}
		s.saveProfileField(ctx, user.ID, "first_name", text)
		s.advanceRegistration(ctx, chatID, draft, dialog.StepRegLastName, textAskRegLastName, nil)

	case dialog.StepRegLastName:
		if text == "" {
			return
		}
		s.saveProfileField(ctx, user.ID, "last_name", text)
		s.advanceRegistration(ctx, chatID, draft, dialog.StepRegPosition, textAskRegPosition, nil)

	case dialog.StepRegPosition:
		if text == "" {
			return
		}
		s.saveProfileField(ctx, user.ID, "position", text)
		s.advanceRegistration(ctx, chatID, draft, dialog.StepRegPhone, textAskRegPhone, contactKeyboard())

	case dialog.StepRegPhone:
		if m.Contact == nil {
			s.send(ctx, chatID, textBadRegPhone, contactKeyboard())
			return
		}
		// Only the sender's own contact counts: a forwarded contact
		// card would register someone else's number.
		if m.Contact.UserID != m.From.ID {
			s.send(ctx, chatID, textNotOwnContact, contactKeyboard())
			return
		}
		s.saveProfileField(ctx, user.ID, "phone", strings.TrimSpace(m.Contact.PhoneNumber))
		s.send(ctx, chatID, textAskRegLeader, bot.ReplyKeyboardRemove{RemoveKeyboard: true})
		draft.Step = dialog.StepRegLeader
		s.saveDraft(ctx, chatID, draft)

	case dialog.StepRegLeader:
		if text == "" {
			return
		}
		s.saveProfileField(ctx, user.ID, "leader", text)
		s.advanceRegistration(ctx, chatID, draft, dialog.StepRegCity, textAskRegCity, cityKeyboard())

	case dialog.StepRegCity:
		if m.Location != nil {
			city := fmt.Sprintf("GPS %.5f,%.5f", m.Location.Latitude, m.Location.Longitude)
			s.finishRegistration(ctx, chatID, user, city)
			return
		}
		if text == "" {
			return
		}
		s.finishRegistration(ctx, chatID, user, text)
	}
}

// handleCityCallback city step buttons: preset city, manual entry,
// location hint.
func (s *Service) handleCityCallback(ctx context.Context, chatID int64, user *domain.User, data string, ack func(string)) {
	draft, err := s.dialogs.Get(ctx, chatID)
	if err != nil || draft == nil || draft.Step != dialog.StepRegCity {
		ack("")
		return
	}

	switch {
	case strings.HasPrefix(data, "city:set:"):
		city := strings.TrimSpace(strings.TrimPrefix(data, "city:set:"))
		s.finishRegistration(ctx, chatID, user, city)
	case data == "city:manual":
		s.send(ctx, chatID, textAskCityManual, nil)
	case data == "city:location":
		s.send(ctx, chatID, textAskCityLocation, nil)
	}
	ack("")
}

func (s *Service) finishRegistration(ctx context.Context, chatID int64, user *domain.User, city string) {
	s.saveProfileField(ctx, user.ID, "city", city)
	if err := s.dialogs.Clear(ctx, chatID); err != nil {
		s.logger.Warn("failed to clear draft", zap.Error(err))
	}

	s.logger.Info("registration completed", zap.Int64("user_id", user.ID), zap.String("city", city))
	s.send(ctx, chatID, textProfileSaved, mainMenu(user.IsWorking))
}

func (s *Service) advanceRegistration(ctx context.Context, chatID int64, draft *dialog.Draft, next dialog.Step, prompt string, markup interface{}) {
	draft.Step = next
	s.saveDraft(ctx, chatID, draft)
	s.send(ctx, chatID, prompt, markup)
}

func (s *Service) saveProfileField(ctx context.Context, userID int64, field, value string) {
	if err := s.users.SetProfileField(userID, field, value); err != nil {
		s.logger.Error("failed to save profile field",
			zap.Int64("user_id", userID),
			zap.String("field", field),
			zap.Error(err))
	}
}

func (s *Service) saveDraft(ctx context.Context, chatID int64, draft *dialog.Draft) {
	if err := s.dialogs.Save(ctx, chatID, draft); err != nil {
		s.logger.Error("failed to save draft", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
