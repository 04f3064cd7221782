package ledger

import (
	"fmt"
	"strings"
	"time"
)

// approvedStatuses status spellings that count as an approval. Admin
// tooling and older bot versions wrote several variants, so the ledger
// accepts all of them.
var approvedStatuses = map[string]bool{
	"approved":    true,
	"confirm":     true,
	"confirmed":   true,
	"accepted":    true,
	"ok":          true,
	"подтвержден": true,
	"подтверждён": true,
	"принят":      true,
	"принято":     true,
	"одобрен":     true,
	"одобрено":    true,
}

// rejectedStatuses status spellings that count as a rejection.
var rejectedStatuses = map[string]bool{
	"rejected":   true,
	"declined":   true,
	"denied":     true,
	"cancelled":  true,
	"canceled":   true,
	"отклонен":   true,
	"отклонён":   true,
	"отказ":      true,
	"не принято": true,
	"непринято":  true,
}

// IsApproved reports whether a raw status string counts as an approval.
// Rejected and unknown spellings both answer false, so only an explicit
// approval ever reaches the month sheet.
func IsApproved(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return false
	}
	if IsRejected(s) {
		return false
	}
	return approvedStatuses[s]
}

// IsRejected reports whether a raw status string counts as a rejection.
func IsRejected(raw string) bool {
	return rejectedStatuses[strings.ToLower(strings.TrimSpace(raw))]
}

// MonthTabCandidates returns the tab titles a month may live under, in
// probe order. Spreadsheet owners have named month tabs "0.3", "0.03",
// "03", "3" and (for Q4) "1.0"-style over the years; duplicates are
// removed case-insensitively.
func MonthTabCandidates(month int) []string {
	candidates := []string{
		fmt.Sprintf("0.%d", month),
		fmt.Sprintf("0.%02d", month),
		fmt.Sprintf("%02d", month),
		fmt.Sprintf("%d", month),
	}
	if month >= 10 {
		candidates = append(candidates, fmt.Sprintf("1.%d", month-10))
	}

	seen := make(map[string]bool)
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		lower := strings.ToLower(c)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, c)
	}
	return out
}

// resolveTitle finds a tab title case-insensitively.
func resolveTitle(titles []string, wanted string) string {
	wantedLower := strings.ToLower(strings.TrimSpace(wanted))
	for _, t := range titles {
		if strings.ToLower(strings.TrimSpace(t)) == wantedLower {
			return t
		}
	}
	return ""
}

// parseReportDate parses a report date in ISO, D.M.YYYY or D/M/YYYY
// form. Returns the zero time when nothing matches.
func parseReportDate(value string) time.Time {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}

	for _, sep := range []string{".", "/"} {
		parts := strings.Split(s, sep)
		if len(parts) != 3 {
			continue
		}
		var d, m, y int
		if _, err := fmt.Sscanf(s, "%d"+sep+"%d"+sep+"%d", &d, &m, &y); err != nil {
			continue
		}
		t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
		if t.Year() == y && int(t.Month()) == m && t.Day() == d {
			return t
		}
	}
	return time.Time{}
}

// parseCreatedAt parses an RFC 3339 timestamp, tolerating a trailing Z.
func parseCreatedAt(value string) time.Time {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
