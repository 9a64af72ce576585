// Package schedule reads and edits the cron expression of the daily
// meal-mail workflow and renders it as a local clock time.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Zone is a fixed UTC offset with a display label.
type Zone struct {
	Label  string
	Offset time.Duration
}

var (
	// BaseZone is the zone GitHub Actions evaluates cron expressions in.
	BaseZone = Zone{Label: "UTC", Offset: 0}
	// DisplayZone is the family's wall clock.
	DisplayZone = Zone{Label: "IST", Offset: 5*time.Hour + 30*time.Minute}
)

const minutesPerDay = 24 * 60

var (
	ErrInvalidExpression = errors.New("invalid schedule expression")
	// ErrNotClockTime is returned for valid expressions whose minute or
	// hour field is not a single number, e.g. "*/15 * * * *".
	ErrNotClockTime = errors.New("schedule is not a fixed time of day")
)

// Expression is a five-field cron expression whose minute and hour are
// fixed numbers.
type Expression struct {
	Minute  int
	Hour    int
	Day     string
	Month   string
	Weekday string
}

func Parse(expression string) (Expression, error) {
	fields := strings.Fields(expression)
	if len(fields) != 5 {
		return Expression{}, fmt.Errorf("%w: expected 5 fields, got %d", ErrInvalidExpression, len(fields))
	}

	minute, err := strconv.Atoi(fields[0])
	if err != nil {
		return Expression{}, fmt.Errorf("%w: minute %q", ErrNotClockTime, fields[0])
	}
	hour, err := strconv.Atoi(fields[1])
	if err != nil {
		return Expression{}, fmt.Errorf("%w: hour %q", ErrNotClockTime, fields[1])
	}
	if minute < 0 || minute > 59 || hour < 0 || hour > 23 {
		return Expression{}, fmt.Errorf("%w: %02d:%02d is out of range", ErrInvalidExpression, hour, minute)
	}

	return Expression{
		Minute:  minute,
		Hour:    hour,
		Day:     fields[2],
		Month:   fields[3],
		Weekday: fields[4],
	}, nil
}

func (expression Expression) String() string {
	return fmt.Sprintf("%d %d %s %s %s", expression.Minute, expression.Hour, expression.Day, expression.Month, expression.Weekday)
}

// Shift moves a time of day by offset, carrying minutes into hours and
// wrapping around midnight in either direction.
func Shift(hour, minute int, offset time.Duration) (int, int) {
	hour, minute, _ = shiftWithDays(hour, minute, offset)
	return hour, minute
}

// shiftWithDays is Shift that also reports how many days the result moved,
// -1, 0 or 1 for offsets under a day.
func shiftWithDays(hour, minute int, offset time.Duration) (int, int, int) {
	total := hour*60 + minute + int(offset/time.Minute)
	days := total / minutesPerDay
	if total%minutesPerDay < 0 {
		days--
	}
	total -= days * minutesPerDay
	return total / 60, total % 60, days
}

// FormatClock renders a 24-hour time as "6:30 AM".
func FormatClock(hour, minute int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	displayHour := hour % 12
	if displayHour == 0 {
		displayHour = 12
	}
	return fmt.Sprintf("%d:%02d %s", displayHour, minute, suffix)
}

// Display converts a base-zone cron expression to display-zone wall time,
// e.g. "0 1 * * *" becomes "6:30 AM (IST)".
func Display(expression string) (string, error) {
	parsed, err := Parse(expression)
	if err != nil {
		return "", err
	}
	hour, minute := Shift(parsed.Hour, parsed.Minute, DisplayZone.Offset-BaseZone.Offset)
	return fmt.Sprintf("%s (%s)", FormatClock(hour, minute), DisplayZone.Label), nil
}

// FromDisplayTime builds the base-zone expression that fires at hour:minute
// display-zone time, keeping the day fields of current when it parses.
// When the conversion crosses midnight a numeric weekday field (lists and
// ranges of 0-7) moves by the same day, so "0 1 * * 1-5" set to 05:00
// becomes "30 23 * * 0-4". Weekday names, steps, the day of month and the
// month are kept as written.
func FromDisplayTime(hour, minute int, current string) (string, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: %02d:%02d is out of range", ErrInvalidExpression, hour, minute)
	}

	expression := Expression{Day: "*", Month: "*", Weekday: "*"}
	if parsed, err := Parse(current); err == nil {
		expression = parsed
	}
	var days int
	expression.Hour, expression.Minute, days = shiftWithDays(hour, minute, BaseZone.Offset-DisplayZone.Offset)
	if days != 0 {
		expression.Weekday = shiftWeekdays(expression.Weekday, days)
	}
	return expression.String(), nil
}

// shiftWeekdays moves every day named by a numeric weekday field by days,
// returning the field unchanged when it uses anything but numbers, commas
// and ranges.
func shiftWeekdays(field string, days int) string {
	if field == "*" {
		return field
	}

	var named [7]bool
	for _, item := range strings.Split(field, ",") {
		low, high, isRange := strings.Cut(item, "-")
		first, ok := weekdayNumber(low)
		if !ok {
			return field
		}
		last := first
		if isRange {
			if last, ok = weekdayNumber(high); !ok || last < first {
				return field
			}
		}
		for day := first; day <= last; day++ {
			named[day%7] = true
		}
	}

	var shifted [7]bool
	for day, set := range named {
		shifted[((day+days)%7+7)%7] = set
	}

	var parts []string
	for day := 0; day < 7; {
		if !shifted[day] {
			day++
			continue
		}
		end := day
		for end+1 < 7 && shifted[end+1] {
			end++
		}
		if end == day {
			parts = append(parts, strconv.Itoa(day))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", day, end))
		}
		day = end + 1
	}
	return strings.Join(parts, ",")
}

// weekdayNumber accepts 0-7, where both 0 and 7 are Sunday.
func weekdayNumber(text string) (int, bool) {
	day, err := strconv.Atoi(text)
	if err != nil || day < 0 || day > 7 {
		return 0, false
	}
	return day, true
}

// ValidateReplacement accepts any single-line expression containing a
// wildcard. Quotes and backslashes are refused so the expression can sit
// inside a quoted YAML scalar.
func ValidateReplacement(expression string) error {
	trimmed := strings.TrimSpace(expression)
	switch {
	case trimmed == "":
		return fmt.Errorf("%w: empty", ErrInvalidExpression)
	case !strings.Contains(trimmed, "*"):
		return fmt.Errorf("%w: %q has no wildcard", ErrInvalidExpression, trimmed)
	case strings.ContainsAny(trimmed, "'\"\\\n\r#"):
		return fmt.Errorf("%w: %q contains quotes, escapes, comments or line breaks", ErrInvalidExpression, trimmed)
	}
	return nil
}

// NextRun returns the first time at or after now that a daily expression
// fires. Day fields are ignored.
func NextRun(expression string, now time.Time) (time.Time, error) {
	parsed, err := Parse(expression)
	if err != nil {
		return time.Time{}, err
	}
	base := time.FixedZone(BaseZone.Label, int(BaseZone.Offset/time.Second))
	now = now.In(base)
	next := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour, parsed.Minute, 0, 0, base)
	if next.Before(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
