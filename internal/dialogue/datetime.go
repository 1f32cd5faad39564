package dialogue

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
)

// ErrPastDate marks input that parsed cleanly but resolved to a moment before
// now. It is distinct from "could not parse" (a nil value, nil error) so the
// controller can explain the rejection instead of re-asking blindly.
var ErrPastDate = errors.New("dialogue: requested time is in the past")

// monthAlt matches a month name or abbreviation as a whole word, so "may"
// never fires inside "maybe". The capture is normalized to its first three
// letters for the months table.
const monthAlt = `(january|jan|february|feb|march|mar|april|apr|may|june|jun|july|jul|august|aug|september|sept|sep|october|oct|november|nov|december|dec)\b`

var (
	inRelativeRE = regexp.MustCompile(`\bin\s+(\d+)\s+(day|days|week|weeks)\b`)
	clockRE      = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	clock24RE    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	noonRE       = regexp.MustCompile(`\b(noon|midday)\b`)
	isoDateRE    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	dayMonthRE   = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+` + monthAlt)
	monthDayRE   = regexp.MustCompile(`\b` + monthAlt + `\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
)

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// prettyLayout mirrors "Monday 02 Sep, 03:04 PM".
const prettyLayout = "Monday 02 Jan, 03:04 PM"

// ExtractDateTime resolves free text into a timestamp/display pair.
// Relative terms (today, tomorrow, "in N days/weeks", weekday names) and a
// few absolute shapes are recognized; a time of day may accompany any of
// them. Returns (nil, nil) when nothing parses and (nil, ErrPastDate) when
// the resolved moment is before now. Weekday names resolve to the NEXT
// occurrence, never the current day.
func ExtractDateTime(text string, now time.Time) (*session.DateTimeValue, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return nil, nil
	}

	date, haveDate := resolveDate(t, now)
	hour, minute, haveClock := resolveClock(t)

	if !haveDate && !haveClock {
		return nil, nil
	}
	if !haveDate {
		// Bare time of day means today.
		date = now
	}
	if haveClock {
		date = time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, now.Location())
	}

	if date.Before(now) {
		return nil, ErrPastDate
	}
	return &session.DateTimeValue{At: date, Pretty: date.Format(prettyLayout)}, nil
}

func resolveDate(t string, now time.Time) (time.Time, bool) {
	switch {
	case strings.Contains(t, "today"):
		return now, true
	case strings.Contains(t, "tomorrow"):
		return now.AddDate(0, 0, 1), true
	case strings.Contains(t, "yesterday"):
		return now.AddDate(0, 0, -1), true
	}

	if m := inRelativeRE.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "week") {
			n *= 7
		}
		return now.AddDate(0, 0, n), true
	}

	for word, wd := range weekdays {
		if strings.Contains(t, word) {
			days := int(wd-now.Weekday()+7) % 7
			if days == 0 {
				days = 7 // "Friday" on a Friday means next week, not today
			}
			return now.AddDate(0, 0, days), true
		}
	}

	if m := isoDateRE.FindStringSubmatch(t); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, now.Hour(), now.Minute(), 0, 0, now.Location()), true
		}
	}

	var day int
	var monthKey string
	if m := dayMonthRE.FindStringSubmatch(t); m != nil {
		day, _ = strconv.Atoi(m[1])
		monthKey = m[2][:3]
	} else if m := monthDayRE.FindStringSubmatch(t); m != nil {
		day, _ = strconv.Atoi(m[2])
		monthKey = m[1][:3]
	}
	if monthKey != "" && day >= 1 && day <= 31 {
		date := time.Date(now.Year(), months[monthKey], day, now.Hour(), now.Minute(), 0, 0, now.Location())
		// A year-less date that already passed rolls forward to next year.
		if date.Before(now.Truncate(24 * time.Hour)) {
			date = date.AddDate(1, 0, 0)
		}
		return date, true
	}

	return time.Time{}, false
}

func resolveClock(t string) (hour, minute int, ok bool) {
	if noonRE.MatchString(t) {
		return 12, 0, true
	}
	if m := clockRE.FindStringSubmatch(t); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour > 12 || minute > 59 {
			return 0, 0, false
		}
		if m[3] == "pm" && hour != 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		return hour, minute, true
	}
	if m := clock24RE.FindStringSubmatch(t); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			return hour, minute, true
		}
	}
	return 0, 0, false
}
