package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRecurringKind(t *testing.T) {
	cases := map[string]RecurringKind{
		"none":     RecurringNone,
		"daily":    RecurringDaily,
		" Weekly ": RecurringWeekly,
		"MONTHLY":  RecurringMonthly,
		"yearly":   RecurringNone,
		"":         RecurringNone,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseRecurringKind(raw), "input %q", raw)
	}
}

func TestBeforeSaveNormalizesKind(t *testing.T) {
	task := Task{Name: "water plants", Recurring: "fortnightly"}
	assert.NoError(t, task.BeforeSave(nil))
	assert.Equal(t, RecurringNone, task.Recurring)
	assert.False(t, task.Recurring.IsRecurring())
}
