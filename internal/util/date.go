package util

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(?:[ T]\d{2}:\d{2}:\d{2})?$`)
	dmyPattern = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2,4})(?:\s+\d{1,2}:\d{2}(?::\d{2})?)?$`)
)

// ParseDate turns a cell string into a calendar date (midnight, UTC).
// ISO strings are read year-first; everything else day-first, matching the
// European layout of the source reports. Two-digit years pivot at 70.
// Unparseable input returns ok=false, never an error.
func ParseDate(input string) (time.Time, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, false
	}

	if isoPattern.MatchString(s) {
		day := s
		if len(day) > 10 {
			day = day[:10]
		}
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	m := dmyPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) <= 2 {
		if year < 70 {
			year += 2000
		} else {
			year += 1900
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31/2 -> 2/3 or 3/3); reject those.
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}
