package service

import (
	"fmt"

	"fieldops/internal/bot"
	"fieldops/internal/domain"
)

// problemTypes fixed incident catalog presented to employees.
var problemTypes = []string{
	"поломка техники",
	"ошибка в задании",
	"нету самоката",
	"проблема с приложением",
	"аварийная ситуация",
	"другое",
}

func mainMenu(isWorking bool) bot.InlineKeyboardMarkup {
	shift := bot.InlineBtn("🟢 Начал работу", "work:start")
	if isWorking {
		shift = bot.InlineBtn("🔴 Закончить работу", "work:stop")
	}
	return bot.InlineKeyboardMarkup{InlineKeyboard: [][]bot.InlineKeyboardButton{
		{shift},
		{bot.InlineBtn("Сдать рапорт", "menu:report"), bot.InlineBtn("Сообщить о проблеме", "menu:problem")},
		{bot.InlineBtn("Мои рапорты", "menu:history")},
	}}
}

func backToMenu() bot.InlineKeyboardMarkup {
	return bot.InlineKeyboardMarkup{InlineKeyboard: [][]bot.InlineKeyboardButton{
		{bot.InlineBtn("⬅️ В меню", "menu:main")},
	}}
}

func adminMenu() bot.InlineKeyboardMarkup {
	rows := [][]bot.InlineKeyboardButton{
		{bot.InlineBtn("Рапорты на проверке", "admin:pending")},
		{bot.InlineBtn("История рапортов", "admin:history:reports")},
		{bot.InlineBtn("История изменений", "admin:history:edits")},
		{bot.InlineBtn("История проблем", "admin:history:problems")},
		{bot.InlineBtn("Выгрузка за месяц (XLSX)", "admin:export")},
		{bot.InlineBtn("Настройки", "admin:settings")},
		{bot.InlineBtn("Сообщение дня", "admin:motd")},
		{bot.InlineBtn("Сотрудники", "admin:workers")},
		{bot.InlineBtn("⬅️ В меню", "menu:main")},
	}
	return bot.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func skipKeyboard(action string) bot.InlineKeyboardMarkup {
	return bot.InlineKeyboardMarkup{InlineKeyboard: [][]bot.InlineKeyboardButton{
		{bot.InlineBtn("Пропустить", action)},
	}}
}

func doneKeyboard(doneAction, skipAction string) bot.InlineKeyboardMarkup {
	row := []bot.InlineKeyboardButton{bot.InlineBtn("Готово", doneAction)}
	if skipAction != "" {
		row = append(row, bot.InlineBtn("Пропустить", skipAction))
	}
	return bot.InlineKeyboardMarkup{InlineKeyboard: [][]bot.InlineKeyboardButton{row}}
}

func confirmKeyboard(confirmAction, cancelAction string) bot.InlineKeyboardMarkup {
	return bot.InlineKeyboardMarkup{InlineKeyboard: [][]bot.InlineKeyboardButton{
		{bot.InlineBtn("Подтвердить и отправить", confirmAction)},
		{bot.InlineBtn("Отмена", cancelAction)},
	}}
}

func workTypesKeyboard(types []domain.WorkType, selected func(int64) bool) bot.InlineKeyboardMarkup {
	rows := make([][]bot.InlineKeyboardButton, 0, len(types)+1)
	for _, wt := range types {
		mark := "☑️ "
		if selected(wt.ID) {
			mark = "✅ "
		}
		rows = append(rows, []bot.InlineKeyboardButton{
			bot.InlineBtn(mark+wt.Name, fmt.Sprintf("wt:toggle:%d", wt.ID)),
		})
	}
	rows = append(rows, []bot.InlineKeyboardButton{bot.InlineBtn("Далее", "wt:next")})
	return bot.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func reviewKeyboard(reportID int64) bot.InlineKeyboardMarkup {
	return bot.InlineKeyboardMarkup{InlineKeyboard: [][]bot.InlineKeyboardButton{
		{
			bot.InlineBtn("✅ Принять", fmt.Sprintf("r:accept:%d", reportID)),
			bot.InlineBtn("❌ Отклонить", fmt.Sprintf("r:reject:%d", reportID)),
		},
	}}
}

func settingsKeyboard(photoReports, photoProblems bool) bot.InlineKeyboardMarkup {
	label := func(on bool) string {
		if on {
			return "обяз."
		}
		return "не обяз."
	}
	return bot.InlineKeyboardMarkup{InlineKeyboard: [][]bot.InlineKeyboardButton{
		{bot.InlineBtn("Фото в рапорте: "+label(photoReports), "set:toggle:photo_required_reports")},
		{bot.InlineBtn("Фото в проблеме: "+label(photoProblems), "set:toggle:photo_required_problems")},
		{bot.InlineBtn("➕ Добавить тип работ", "set:add_work_type")},
		{bot.InlineBtn("➖ Скрыть тип работ", "set:del_work_type")},
	}}
}

func hideWorkTypesKeyboard(types []domain.WorkType) bot.InlineKeyboardMarkup {
	rows := make([][]bot.InlineKeyboardButton, 0, len(types)+1)
	for _, wt := range types {
		rows = append(rows, []bot.InlineKeyboardButton{
			bot.InlineBtn(wt.Name, fmt.Sprintf("set:wt_off:%d", wt.ID)),
		})
	}
	rows = append(rows, []bot.InlineKeyboardButton{bot.InlineBtn("⬅️ Назад", "admin:settings")})
	return bot.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func problemTypesKeyboard() bot.InlineKeyboardMarkup {
	rows := make([][]bot.InlineKeyboardButton, 0, len(problemTypes))
	for i, name := range problemTypes {
		rows = append(rows, []bot.InlineKeyboardButton{
			bot.InlineBtn(name, fmt.Sprintf("p:type:%d:%s", i, name)),
		})
	}
	return bot.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func urgencyKeyboard() bot.InlineKeyboardMarkup {
	return bot.InlineKeyboardMarkup{InlineKeyboard: [][]bot.InlineKeyboardButton{
		{bot.InlineBtn("🔴 срочно", "p:urgency:urgent")},
		{bot.InlineBtn("🟡 средне", "p:urgency:medium")},
		{bot.InlineBtn("🟢 не срочно", "p:urgency:low")},
	}}
}

func myReportsKeyboard(reportIDs []int64) bot.InlineKeyboardMarkup {
	rows := make([][]bot.InlineKeyboardButton, 0, len(reportIDs)+1)
	for _, id := range reportIDs {
		rows = append(rows, []bot.InlineKeyboardButton{
			bot.InlineBtn(fmt.Sprintf("✏️ Редактировать #%d", id), fmt.Sprintf("my:edit:%d", id)),
		})
	}
	rows = append(rows, []bot.InlineKeyboardButton{bot.InlineBtn("⬅️ В меню", "menu:main")})
	return bot.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func workersKeyboard(users []domain.User) bot.InlineKeyboardMarkup {
	rows := make([][]bot.InlineKeyboardButton, 0, len(users)+1)
	for i := range users {
		u := &users[i]
		rows = append(rows, []bot.InlineKeyboardButton{
			bot.InlineBtn("✉️ "+u.DisplayName(), fmt.Sprintf("admin:msg:%d", u.TgID)),
		})
	}
	rows = append(rows, []bot.InlineKeyboardButton{bot.InlineBtn("⬅️ Назад", "admin:back")})
	return bot.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func cityKeyboard() bot.InlineKeyboardMarkup {
	return bot.InlineKeyboardMarkup{InlineKeyboard: [][]bot.InlineKeyboardButton{
		{bot.InlineBtn("📍 Варшава", "city:set:Варшава"), bot.InlineBtn("📍 Вроцлав", "city:set:Вроцлав")},
		{bot.InlineBtn("✍️ Ввести вручную", "city:manual"), bot.InlineBtn("📌 Отправить местоположение", "city:location")},
	}}
}

func contactKeyboard() bot.ReplyKeyboardMarkup {
	return bot.ReplyKeyboardMarkup{
		Keyboard: [][]bot.KeyboardButton{
			{{Text: "Отправить номер телефона", RequestContact: true}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}
