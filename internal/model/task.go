package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// RecurringKind is the repetition policy of a task. It decides how Task.Date is read.
type RecurringKind string

const (
	RecurringNone    RecurringKind = "none"
	RecurringDaily   RecurringKind = "daily"
	RecurringWeekly  RecurringKind = "weekly"
	RecurringMonthly RecurringKind = "monthly"
)

// RecurringKinds lists every valid kind in display order.
var RecurringKinds = []RecurringKind{RecurringNone, RecurringDaily, RecurringWeekly, RecurringMonthly}

// ParseRecurringKind normalizes raw input. Anything unrecognized becomes RecurringNone.
func ParseRecurringKind(raw string) RecurringKind {
	switch RecurringKind(strings.ToLower(strings.TrimSpace(raw))) {
	case RecurringDaily:
		return RecurringDaily
	case RecurringWeekly:
		return RecurringWeekly
	case RecurringMonthly:
		return RecurringMonthly
	default:
		return RecurringNone
	}
}

// IsRecurring reports whether the kind repeats.
func (k RecurringKind) IsRecurring() bool {
	return k == RecurringDaily || k == RecurringWeekly || k == RecurringMonthly
}

// Task represents a single item on the list.
//
// Date and Time are raw tokens: Date is MM-DD-YYYY for one-time tasks, a weekday name for
// weekly tasks and a day of month for monthly ones. Time is HH:MM.
type Task struct {
	ID          uint          `gorm:"primaryKey"`
	Name        string        `gorm:"not null"`
	Category    string        `gorm:"index"`
	Recurring   RecurringKind `gorm:"type:text;not null"`
	Date        *string
	Time        *string
	Completed   bool `gorm:"default:false"`
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// BeforeSave keeps the stored kind within the four known values.
func (t *Task) BeforeSave(*gorm.DB) error {
	t.Recurring = ParseRecurringKind(string(t.Recurring))
	return nil
}

// HasSchedule reports whether any schedule token is set.
func (t Task) HasSchedule() bool {
	return t.Date != nil || t.Time != nil
}
