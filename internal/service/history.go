package service

import (
	"context"

	"go.uber.org/zap"

	"fieldops/internal/domain"
)

// showMyReports lists the employee's latest reports with the current
// month's task total, each with an edit shortcut.
func (s *Service) showMyReports(ctx context.Context, chatID int64, user *domain.User) {
	if !user.Registered() {
		s.send(ctx, chatID, textNeedProfile, nil)
		return
	}

	reports, err := s.reports.ListByUser(user.ID, 10)
	if err != nil {
		s.logger.Error("failed to list reports", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}

	now := s.now()
	totals, err := s.reports.SumTasksForMonth(user.ID, now.Year(), now.Month())
	if err != nil {
		s.logger.Warn("failed to sum month tasks", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	monthTotal := 0
	for _, qty := range totals {
		monthTotal += qty
	}

	ids := make([]int64, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}

	s.send(ctx, chatID, myReportsText(reports, monthTotal), myReportsKeyboard(ids))
}
