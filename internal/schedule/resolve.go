package schedule

import (
	"errors"
	"time"

	"listify/internal/model"
)

// Status tells whether a Resolution carries an instant.
type Status int

const (
	NoSchedule Status = iota
	Overdue
	Upcoming
)

func (s Status) String() string {
	switch s {
	case Overdue:
		return "overdue"
	case Upcoming:
		return "upcoming"
	default:
		return "no-schedule"
	}
}

// Resolution is the outcome of resolving a task schedule against a point in time.
// At is set only when Status is Upcoming.
type Resolution struct {
	Status Status
	At     time.Time
}

// Resolve computes the next occurrence of a task schedule relative to now.
// It reads nothing but its arguments, so equal inputs give equal results.
func Resolve(kind model.RecurringKind, date, clock *string, now time.Time) (Resolution, error) {
	rule, err := ParseRule(kind, date, clock)
	if errors.Is(err, ErrNoTokens) {
		return Resolution{Status: NoSchedule}, nil
	}
	if err != nil {
		return Resolution{Status: NoSchedule}, err
	}
	return rule.Next(now), nil
}

// ResolveTask is Resolve over a task's stored fields.
func ResolveTask(task model.Task, now time.Time) (Resolution, error) {
	return Resolve(task.Recurring, task.Date, task.Time, now)
}

// Next returns the first occurrence of the rule strictly after now, or Overdue for a one-time
// rule whose only occurrence is not after now. Wall-clock fields are read in now's location.
func (r Rule) Next(now time.Time) Resolution {
	loc := now.Location()
	year, month, day := now.Date()
	at := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, r.Hour, r.Minute, 0, 0, loc)
	}

	switch r.Kind {
	case model.RecurringDaily:
		target := at(year, month, day)
		if !target.After(now) {
			target = at(year, month, day+1)
		}
		return upcoming(target)

	case model.RecurringWeekly:
		// Seven advances reach the same weekday a week later, which is always after now.
		for offset := 0; offset <= 7; offset++ {
			target := at(year, month, day+offset)
			if target.Weekday() == r.Weekday && target.After(now) {
				return upcoming(target)
			}
		}
		return upcoming(at(year, month, day+7))

	case model.RecurringMonthly:
		target := r.monthly(year, month, loc)
		if !target.After(now) {
			target = r.monthly(year, month+1, loc)
		}
		return upcoming(target)

	default:
		if r.HasDate {
			year, month, day = r.Year, r.Month, r.Day
		}
		target := at(year, month, day)
		if !target.After(now) {
			return Resolution{Status: Overdue}
		}
		return upcoming(target)
	}
}

// monthly places DayOfMonth in the given month, clamped to the month's last day.
func (r Rule) monthly(year int, month time.Month, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	year, month = first.Year(), first.Month()
	day := r.DayOfMonth
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, r.Hour, r.Minute, 0, 0, loc)
}

func upcoming(at time.Time) Resolution {
	return Resolution{Status: Upcoming, At: at}
}
