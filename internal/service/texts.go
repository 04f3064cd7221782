package service

import (
	"fmt"
	"strings"
	"time"

	"fieldops/internal/domain"
)

// welcomeText greeting sent on first /start.
const welcomeText = "Приветствую!\n\n" +
	"Данный бот создан для оптимизации и дальнейшей коммуникации наших сотрудников с администрацией, коллегами.\n" +
	"Здесь вы сможете задать свои вопросы, сдать отчеты, получить бонусы и прочее.\n\n" +
	"Прошу отнестись к боту с полной серьезностью так как это часть нашей экосистемы, " +
	"благодаря которой мы будем всегда на связи и четко понимать и видеть наши усилия.\n\n" +
	"Рады принять Вас в наши ряды.\n" +
	"С уважением\nАдминистрация"

const (
	textMainMenu        = "Главное меню:"
	textAdminMenu       = "Админ-панель:"
	textNeedProfile     = "Сначала заполните профиль через /start."
	textNoAccess        = "Нет доступа."
	textCancelled       = "Отменено."
	textAskDate         = "Введите дату (ДД.ММ.ГГГГ) или напишите «сегодня»:"
	textBadDate         = "Не понял дату. Пример: 10.01.2026 или «сегодня». Попробуйте ещё раз:"
	textAskPartner      = "Введите имя напарника (можно пропустить):"
	textAskWorkTypes    = "Выберите тип(ы) работ (можно несколько), затем «Далее»:"
	textNeedOneType     = "Нужно выбрать хотя бы один тип работ."
	textBadQuantity     = "Количество должно быть целым числом ≥ 0. Введите ещё раз:"
	textAskStartTime    = "Введите время начала (HH:MM), например 09:30:"
	textAskEndTime      = "Введите время окончания (HH:MM), например 18:10:"
	textBadStartTime    = "Неверный формат. Пример: 09:30. Введите ещё раз:"
	textBadEndTime      = "Неверный формат. Пример: 18:10. Введите ещё раз:"
	textAskComment      = "Комментарий (можно пропустить):"
	textMediaRequired   = "Прикрепите фото/видео (обязательно по настройкам)."
	textMediaOptional   = "Прикрепите фото/видео (можно пропустить):"
	textNeedMedia       = "Нужно отправить фото или видео."
	textMediaOrSkip     = "Отправьте фото/видео или нажмите «Пропустить»."
	textAskProblemType  = "Выберите тип проблемы:"
	textAskProblemDesc  = "Кратко опишите проблему текстом:"
	textShortDesc       = "Опишите чуть подробнее (минимум 3 символа):"
	textAskAddress      = "Локация / объект (адрес или описание места):"
	textShortAddress    = "Укажите адрес/объект (минимум 3 символа):"
	textAskScooter      = "Номер самоката (если есть, можно пропустить):"
	textAskUrgency      = "Выберите срочность:"
	textAskRegFirstName = "Для работы нужно заполнить профиль.\n\nВведите имя:"
	textAskRegLastName  = "Введите фамилию:"
	textAskRegPosition  = "Введите должность:"
	textAskRegPhone     = "Отправьте номер телефона, привязанный к Telegram, кнопкой ниже:"
	textBadRegPhone     = "Нужно отправить номер телефона через кнопку, чтобы он был привязан к Telegram."
	textNotOwnContact   = "Нужно отправить свой контакт, привязанный к Telegram. Нажмите кнопку ниже."
	textAskRegLeader    = "Укажите лидера (с кем контакт):"
	textAskRegCity      = "Выберите город кнопкой или введите вручную:"
	textAskCityManual   = "Введите город текстом:"
	textAskCityLocation = "Отправьте геолокацию сообщением: 📎 (скрепка) -> Геопозиция."
	textProfileSaved    = "Профиль сохранен. Выберите действие:"
	textSettings        = "Настройки:"
	textAskWorkTypeName = "Введите название нового типа работ (пример: «мойка»):"
	textShortWorkType   = "Слишком коротко. Введите ещё раз:"
	textPickWorkTypeOff = "Выберите тип работ, который нужно скрыть:"
	textNoWorkTypes     = "Активных типов работ нет."
	textMotdSaved       = "Сообщение дня сохранено."
	textAskAdminMessage = "Введите сообщение сотруднику:"
	textMessageSent     = "Отправлено."
	textMessageFailed   = "Не удалось отправить (возможно пользователь не писал боту)."
	textShortReject     = "Комментарий слишком короткий. Введите ещё раз:"
	textReportNotFound  = "Рапорт не найден."
	textAskRejectWhy    = "Укажите причину отклонения (комментарий сотруднику):"
	textNothingPending  = "Рапортов на проверке нет."
)

func fmtDate(t time.Time) string {
	return t.Format("02.01.2006")
}

func fmtDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

func dash(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "-"
	}
	return *s
}

func employeeLine(u *domain.User) string {
	return fmt.Sprintf("%s (%s, %s)", u.DisplayName(), dash(u.Position), dash(u.City))
}

func taskLines(tasks []domain.ReportTask) string {
	if len(tasks) == 0 {
		return "-"
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("• %s: %d", t.WorkTypeName, t.Quantity))
	}
	return strings.Join(lines, "\n")
}

// reportPreview preview shown to the employee before confirmation.
func reportPreview(u *domain.User, date time.Time, startTime, endTime string, tasks []domain.ReportTask, partner, comment *string) string {
	return fmt.Sprintf(
		"Предпросмотр рапорта\n\n"+
			"Сотрудник: %s\n"+
			"Напарник: %s\n"+
			"Дата: %s\n"+
			"Время: %s–%s\n"+
			"Типы работ/кол-во:\n%s\n"+
			"Комментарий: %s",
		employeeLine(u), dash(partner), fmtDate(date), startTime, endTime, taskLines(tasks), dash(comment))
}

// adminReportCard notification card sent to admins for review.
func adminReportCard(r *domain.Report) string {
	return fmt.Sprintf(
		"Новый рапорт #%d\n\n"+
			"Сотрудник: %s\n"+
			"Напарник: %s\n"+
			"Дата: %s\n"+
			"Время: %s–%s\n"+
			"Типы работ/кол-во:\n%s\n"+
			"Комментарий: %s\n"+
			"Статус: %s",
		r.ID, employeeLine(r.User), dash(r.PartnerName), fmtDate(r.Date),
		r.StartTime, r.EndTime, taskLines(r.Tasks), dash(r.Comment), r.Status.HumanStatus())
}

// problemPreview preview shown to the employee before confirmation.
func problemPreview(u *domain.User, ptype, desc, address string, scooter *string, urgency domain.ProblemUrgency, mediaCount int) string {
	return fmt.Sprintf(
		"Предпросмотр проблемы\n\n"+
			"Сотрудник: %s\n"+
			"Тип: %s\n"+
			"Описание: %s\n"+
			"Адрес/объект: %s\n"+
			"Номер самоката: %s\n"+
			"Срочность: %s\n"+
			"Вложений: %d",
		employeeLine(u), ptype, desc, address, dash(scooter), urgency.HumanUrgency(), mediaCount)
}

// adminProblemCard notification sent to admins about a new problem.
func adminProblemCard(p *domain.Problem, u *domain.User) string {
	return fmt.Sprintf(
		"Новая проблема #%d\n\n"+
			"Сотрудник: %s\n"+
			"Тип: %s\n"+
			"Описание: %s\n"+
			"Адрес/объект: %s\n"+
			"Номер самоката: %s\n"+
			"Срочность: %s\n"+
			"Вложений: %d",
		p.ID, employeeLine(u), p.Type, p.Description, p.Address,
		dash(p.ScooterNumber), p.Urgency.HumanUrgency(), len(p.Media))
}

// myReportsText history list with the month's task total on top.
func myReportsText(reports []domain.Report, monthTotal int) string {
	if len(reports) == 0 {
		return fmt.Sprintf("Рапортов пока нет.\nИтого задач за месяц: %d", monthTotal)
	}

	lines := []string{fmt.Sprintf("Последние рапорты (до 10 шт.)\nИтого задач за месяц: %d\n", monthTotal)}
	for _, r := range reports {
		line := fmt.Sprintf("• #%d - %s - %s", r.ID, fmtDate(r.Date), r.Status.HumanStatus())
		if r.AdminComment != nil && *r.AdminComment != "" {
			line += " | комм.: " + *r.AdminComment
		}
		if r.EditCount > 0 {
			line += fmt.Sprintf(" | правок: %d", r.EditCount)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// workersText admin list of employees with shift state and contacts.
func workersText(users []domain.User) string {
	lines := []string{"Сотрудники (до 30):\n"}
	for i := range users {
		u := &users[i]
		status := "⚪ не работает"
		since := ""
		if u.IsWorking {
			status = "🟢 работает"
			if u.WorkStartedAt != nil {
				since = " с " + u.WorkStartedAt.Format("15:04")
			}
		}
		lines = append(lines, fmt.Sprintf(
			"• %s (%s) - %s%s\n  Номер телефона: %s\n  Лидер: %s",
			u.DisplayName(), dash(u.City), status, since, dash(u.Phone), dash(u.Leader)))
	}
	return strings.Join(lines, "\n")
}
