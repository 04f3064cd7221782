package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"fieldops/internal/domain"
)

var exportHeaders = []string{
	"№", "Дата", "Сотрудник", "Напарник", "Начало", "Конец",
	"Задачи", "Комментарий", "Статус", "Комм. админа", "Правок",
}

// exportMonth builds an XLSX workbook with the current month's reports
// and sends it to the admin chat as a document.
func (s *Service) exportMonth(ctx context.Context, chatID int64) {
	now := s.now()
	reports, err := s.reports.ListForMonth(now.Year(), now.Month())
	if err != nil {
		s.logger.Error("failed to list month reports", zap.Error(err))
		return
	}
	if len(reports) == 0 {
		s.send(ctx, chatID, "За текущий месяц рапортов нет.", adminMenu())
		return
	}

	content, err := buildMonthWorkbook(reports)
	if err != nil {
		s.logger.Error("failed to build workbook", zap.Error(err))
		return
	}

	filename := fmt.Sprintf("reports_%s.xlsx", now.Format("2006-01"))
	caption := fmt.Sprintf("Рапорты за %s: %d шт.", now.Format("01.2006"), len(reports))
	if err := s.gateway.SendDocument(ctx, chatID, filename, content, caption); err != nil {
		s.logger.Error("failed to send export", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}

	s.logger.Info("month export sent",
		zap.Int64("chat_id", chatID), zap.Int("reports", len(reports)))
}

func buildMonthWorkbook(reports []domain.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i := range reports {
		r := &reports[i]
		name := fmt.Sprintf("user#%d", r.UserID)
		if r.User != nil {
			name = r.User.DisplayName()
		}

		tasks := make([]string, 0, len(r.Tasks))
		for _, t := range r.Tasks {
			tasks = append(tasks, fmt.Sprintf("%s: %d", t.WorkTypeName, t.Quantity))
		}

		row := []interface{}{
			r.ID,
			fmtDate(r.Date),
			name,
			strings.TrimSpace(dash(r.PartnerName)),
			r.StartTime,
			r.EndTime,
			strings.Join(tasks, "; "),
			strings.TrimSpace(dash(r.Comment)),
			r.Status.HumanStatus(),
			strings.TrimSpace(dash(r.AdminComment)),
			r.EditCount,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
