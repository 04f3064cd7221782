package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fieldops/internal/domain"
)

// startShift opens a work session. Repeated presses reuse the open
// session. The message of the day, if set, is shown before the
// confirmation.
func (s *Service) startShift(ctx context.Context, chatID int64, user *domain.User) {
	if !user.Registered() {
		s.send(ctx, chatID, textNeedProfile, nil)
		return
	}

	session, created, err := s.sessions.Start(user.ID, s.now())
	if err != nil {
		s.logger.Error("failed to start shift", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	if created {
		user.IsWorking = true
	}

	motd, err := s.settings.GetText(domain.SettingMotd)
	if err != nil {
		s.logger.Warn("failed to load motd", zap.Error(err))
	}
	if motd != "" {
		s.send(ctx, chatID, "Сообщение дня\n"+motd, nil)
	}

	s.send(ctx, chatID,
		fmt.Sprintf("Работа начата. Время: %s", session.StartedAt.Format("15:04")),
		mainMenu(true))
}

// stopShift closes the open session, if any.
func (s *Service) stopShift(ctx context.Context, chatID int64, user *domain.User) {
	if !user.Registered() {
		s.send(ctx, chatID, textNeedProfile, nil)
		return
	}

	session, err := s.sessions.Stop(user.ID, s.now())
	if err != nil {
		s.logger.Error("failed to stop shift", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	if session == nil {
		s.send(ctx, chatID, "У вас не было активной смены. Главное меню:", mainMenu(false))
		return
	}
	user.IsWorking = false

	s.send(ctx, chatID, fmt.Sprintf(
		"Работа завершена.\nНачало: %s\nКонец: %s\n\n"+
			"Теперь можно сдавать рапорт - время подставится автоматически (если дата совпадает).",
		session.StartedAt.Format("15:04"), session.EndedAt.Format("15:04")),
		mainMenu(false))
}
