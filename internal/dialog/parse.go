package dialog

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts accepted report date inputs, tried in order.
var dateLayouts = []string{"02.01.2006", "02.01.06"}

// ParseDate parses a user-typed report date. Accepts D.M.YYYY and
// D.M.YY, plus the words for "today" which resolve against now.
func ParseDate(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	lower := strings.ToLower(input)
	if lower == "сегодня" || lower == "today" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", input)
}

// ParseClock parses a wall-clock "HH:MM" value and returns it
// normalized to two-digit fields.
func ParseClock(input string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(input))
	if err != nil {
		return "", fmt.Errorf("invalid time %q", input)
	}
	return t.Format("15:04"), nil
}
