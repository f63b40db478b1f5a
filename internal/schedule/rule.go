package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"listify/internal/model"
)

const (
	// DefaultHour and DefaultMinute apply when a task has no time token.
	DefaultHour   = 23
	DefaultMinute = 59

	legacyDaily         = "DAILY"
	legacyWeeklyPrefix  = "WEEKLY-"
	legacyMonthlyPrefix = "MONTHLY-"

	dateLayout = "01-02-2006"
)

// Rule is the canonical form of a task schedule. Plain and legacy tokens both parse into it.
type Rule struct {
	Kind model.RecurringKind

	// One-time date. HasDate is false when a one-time task only carries a time.
	HasDate bool
	Year    int
	Month   time.Month
	Day     int

	Weekday    time.Weekday // weekly
	DayOfMonth int          // monthly, 1..31

	HasTime bool
	Hour    int
	Minute  int
}

// ParseRule normalizes stored tokens into a Rule.
// A legacy prefixed date token (DAILY, WEEKLY-n, MONTHLY-n) on a one-time task promotes the
// task to the matching recurring kind.
func ParseRule(kind model.RecurringKind, date, clock *string) (Rule, error) {
	if date == nil && clock == nil {
		return Rule{}, ErrNoTokens
	}

	rule := Rule{Kind: EffectiveKind(kind, date), Hour: DefaultHour, Minute: DefaultMinute}

	if clock != nil {
		hour, minute, err := parseClock(*clock)
		if err != nil {
			return Rule{}, err
		}
		rule.HasTime, rule.Hour, rule.Minute = true, hour, minute
	}

	switch rule.Kind {
	case model.RecurringDaily:
		// The date token carries nothing for daily tasks.
	case model.RecurringWeekly:
		if date == nil {
			return Rule{}, dateError("", "weekly task needs a weekday")
		}
		weekday, err := parseWeekday(*date)
		if err != nil {
			return Rule{}, err
		}
		rule.Weekday = weekday
	case model.RecurringMonthly:
		if date == nil {
			return Rule{}, dateError("", "monthly task needs a day of month")
		}
		day, err := parseDayOfMonth(*date)
		if err != nil {
			return Rule{}, err
		}
		rule.DayOfMonth = day
	default:
		if date != nil {
			year, month, day, err := parseDate(*date)
			if err != nil {
				return Rule{}, err
			}
			rule.HasDate, rule.Year, rule.Month, rule.Day = true, year, month, day
		}
	}

	return rule, nil
}

// EffectiveKind is the recurring kind a task is scheduled by once a legacy date token has
// promoted it.
func EffectiveKind(kind model.RecurringKind, date *string) model.RecurringKind {
	return promoteLegacy(model.ParseRecurringKind(string(kind)), date)
}

func promoteLegacy(kind model.RecurringKind, date *string) model.RecurringKind {
	if kind != model.RecurringNone || date == nil {
		return kind
	}
	token := strings.ToUpper(strings.TrimSpace(*date))
	switch {
	case token == legacyDaily:
		return model.RecurringDaily
	case strings.HasPrefix(token, legacyWeeklyPrefix):
		return model.RecurringWeekly
	case strings.HasPrefix(token, legacyMonthlyPrefix):
		return model.RecurringMonthly
	default:
		return kind
	}
}

func parseClock(token string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(token), ":")
	if len(parts) != 2 {
		return 0, 0, timeError(token, "expected HH:MM")
	}
	hour, err := parseNumber(parts[0], 2)
	if err != nil || hour > 23 {
		return 0, 0, timeError(token, "invalid hour")
	}
	minute, err := parseNumber(parts[1], 2)
	if err != nil || minute > 59 {
		return 0, 0, timeError(token, "invalid minute")
	}
	return hour, minute, nil
}

func parseDate(token string) (int, time.Month, int, error) {
	parts := strings.Split(strings.TrimSpace(token), "-")
	if len(parts) != 3 {
		return 0, 0, 0, dateError(token, "expected MM-DD-YYYY")
	}
	month, err := parseNumber(parts[0], 2)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, dateError(token, "invalid month")
	}
	day, err := parseNumber(parts[1], 2)
	if err != nil || day < 1 {
		return 0, 0, 0, dateError(token, "invalid day")
	}
	if len(parts[2]) != 4 {
		return 0, 0, 0, dateError(token, "year must have four digits")
	}
	year, err := parseNumber(parts[2], 4)
	if err != nil {
		return 0, 0, 0, dateError(token, "invalid year")
	}
	if day > daysIn(year, time.Month(month)) {
		return 0, 0, 0, dateError(token, "day %d does not exist in %s %d", day, time.Month(month), year)
	}
	return year, time.Month(month), day, nil
}

func parseWeekday(token string) (time.Weekday, error) {
	clean := strings.TrimSpace(token)
	if upper := strings.ToUpper(clean); strings.HasPrefix(upper, legacyWeeklyPrefix) {
		index, err := parseNumber(upper[len(legacyWeeklyPrefix):], 1)
		if err != nil || index > 6 {
			return 0, dateError(token, "weekday index must be 0-6")
		}
		return time.Weekday(index), nil
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.EqualFold(clean, day.String()) {
			return day, nil
		}
	}
	return 0, dateError(token, "unknown weekday")
}

func parseDayOfMonth(token string) (int, error) {
	clean := strings.TrimSpace(token)
	if upper := strings.ToUpper(clean); strings.HasPrefix(upper, legacyMonthlyPrefix) {
		clean = upper[len(legacyMonthlyPrefix):]
	}
	day, err := parseNumber(clean, 2)
	if err != nil || day < 1 || day > 31 {
		return 0, dateError(token, "day of month must be 1-31")
	}
	return day, nil
}

// parseNumber accepts 1..maxDigits ASCII digits and nothing else.
func parseNumber(raw string, maxDigits int) (int, error) {
	if raw == "" || len(raw) > maxDigits {
		return 0, fmt.Errorf("bad width")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a digit")
		}
	}
	return strconv.Atoi(raw)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Tokens renders the rule back into canonical stored tokens. Legacy inputs come out in the
// plain format.
func (r Rule) Tokens() (date, clock *string) {
	if r.HasTime {
		value := FormatTime(r.Hour, r.Minute)
		clock = &value
	}
	var value string
	switch r.Kind {
	case model.RecurringDaily:
		return nil, clock
	case model.RecurringWeekly:
		value = r.Weekday.String()
	case model.RecurringMonthly:
		value = strconv.Itoa(r.DayOfMonth)
	default:
		if !r.HasDate {
			return nil, clock
		}
		value = fmt.Sprintf("%02d-%02d-%04d", int(r.Month), r.Day, r.Year)
	}
	return &value, clock
}

// Describe returns a short human-readable form of the rule.
func (r Rule) Describe() string {
	at := FormatTime(r.Hour, r.Minute)
	switch r.Kind {
	case model.RecurringDaily:
		return "Every day at " + at
	case model.RecurringWeekly:
		return fmt.Sprintf("Every %s at %s", r.Weekday, at)
	case model.RecurringMonthly:
		return fmt.Sprintf("Monthly on day %d at %s", r.DayOfMonth, at)
	default:
		if !r.HasDate {
			return "Today at " + at
		}
		return fmt.Sprintf("Once on %02d-%02d-%04d at %s", int(r.Month), r.Day, r.Year, at)
	}
}

// FormatDate renders a one-time date token.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatTime renders a time token.
func FormatTime(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
