package domain

// Setting process-wide key/value configuration row, created lazily with
// defaults on first run.
type Setting struct {
	Key   string
	Value string
}

// Setting keys.
const (
	SettingPhotoRequiredReports  = "photo_required_reports"
	SettingPhotoRequiredProblems = "photo_required_problems"
	SettingMotd                  = "motd"
)

// DefaultSettings seeded once when the settings table is empty.
var DefaultSettings = map[string]string{
	SettingPhotoRequiredReports:  "0",
	SettingPhotoRequiredProblems: "0",
	SettingMotd:                  "",
}

// DefaultWorkTypes seeded once when the work_types table is empty.
var DefaultWorkTypes = []string{
	"сбор на зарядку",
	"перестановка",
	"деплой",
	"замена батарей",
	"ремонт",
}
