package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"listify/internal/model"
	"listify/internal/schedule"
)

func TestCreateTaskStoresCanonicalTokens(t *testing.T) {
	svc, _ := newTaskService(t)

	tests := []struct {
		name      string
		input     TaskInput
		kind      model.RecurringKind
		wantDate  *string
		wantClock *string
	}{
		{"weekly legacy", TaskInput{Name: "gym", Recurring: "weekly", Date: "WEEKLY-1", Time: "7:30"}, model.RecurringWeekly, strp("Monday"), strp("07:30")},
		{"monthly legacy", TaskInput{Name: "rent", Recurring: "monthly", Date: "MONTHLY-1"}, model.RecurringMonthly, strp("1"), nil},
		{"daily gets end of day", TaskInput{Name: "journal", Recurring: "daily"}, model.RecurringDaily, nil, strp("23:59")},
		{"one-time", TaskInput{Name: "dentist", Date: "11-03-2026", Time: "15:00"}, model.RecurringNone, strp("11-03-2026"), strp("15:00")},
		{"promoted legacy", TaskInput{Name: "call mom", Date: "WEEKLY-0"}, model.RecurringWeekly, strp("Sunday"), nil},
		{"unscheduled", TaskInput{Name: "read", Recurring: "someday", Category: " Personal "}, model.RecurringNone, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := svc.CreateTask(ctx, tt.input)
			require.NoError(t, err)
			assert.NotZero(t, task.ID)
			assert.Equal(t, tt.kind, task.Recurring)
			assert.Equal(t, tt.wantDate, task.Date)
			assert.Equal(t, tt.wantClock, task.Time)
		})
	}

	task, err := svc.GetTask(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, "Personal", task.Category)
}

func TestCreateTaskRejectsBadInput(t *testing.T) {
	svc, _ := newTaskService(t)

	_, err := svc.CreateTask(ctx, TaskInput{Name: "   "})
	assert.Error(t, err)

	_, err = svc.CreateTask(ctx, TaskInput{Name: "gym", Recurring: "weekly", Date: "Someday"})
	var perr *schedule.ParseError
	assert.True(t, errors.As(err, &perr))

	_, err = svc.CreateTask(ctx, TaskInput{Name: "party", Date: "02-30-2026"})
	assert.True(t, errors.As(err, &perr))

	tasks, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestToggleAndDelete(t *testing.T) {
	svc, _ := newTaskService(t)
	task, err := svc.CreateTask(ctx, TaskInput{Name: "laundry"})
	require.NoError(t, err)

	now := time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)
	toggled, err := svc.ToggleCompleted(ctx, task.ID, now)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	require.NoError(t, svc.DeleteTask(ctx, task.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, task.ID), gorm.ErrRecordNotFound)
	_, err = svc.ToggleCompleted(ctx, task.ID, now)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func strp(s string) *string { return &s }
