package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"heavymetal-notifier/internal/errs"
)

// collapseWhitespace joins every run of whitespace (unicode aware) into a
// single space and trims both ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeAlbumTitle collapses whitespace and drops any trailing "[...]"
// annotation, ex. "Voices in the Sky [Bonus Edition]" -> "Voices in the Sky".
func NormalizeAlbumTitle(raw string) string {
	title := collapseWhitespace(raw)
	if idx := strings.Index(title, "["); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}
	return title
}

var monthNames = map[string]time.Month{
	"January":   time.January,
	"February":  time.February,
	"March":     time.March,
	"April":     time.April,
	"May":       time.May,
	"June":      time.June,
	"July":      time.July,
	"August":    time.August,
	"September": time.September,
	"October":   time.October,
	"November":  time.November,
	"December":  time.December,
}

// ParseMonth matches a full, case-sensitive english month name.
func ParseMonth(name string) (time.Month, bool) {
	month, ok := monthNames[name]
	return month, ok
}

// only strip suffixes that sit right after a digit, "August" keeps its "st"
var ordinalSuffix = regexp.MustCompile(`(\d)(st|nd|rd|th)\b`)

// ParseFreeTextDate parses dates like "November 15th, 2024" into a UTC
// midnight time.Time. The day must exist in the given month.
func ParseFreeTextDate(text string) (time.Time, error) {
	cleaned := strings.ReplaceAll(text, ",", "")
	cleaned = ordinalSuffix.ReplaceAllString(cleaned, "$1")

	parts := strings.Fields(cleaned)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("date %q: expected month, day and year: %w", text, errs.ErrParseFail)
	}

	month, ok := ParseMonth(parts[0])
	if !ok {
		return time.Time{}, fmt.Errorf("date %q: unknown month %q: %w", text, parts[0], errs.ErrParseFail)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: day: %w", text, errs.ErrParseFail)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: year: %w", text, errs.ErrParseFail)
	}

	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (April 31 -> May 1), reject that
	if day < 1 || date.Month() != month || date.Day() != day {
		return time.Time{}, fmt.Errorf("date %q: day %d is out of range: %w", text, day, errs.ErrParseFail)
	}
	return date, nil
}
