package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listify/internal/model"
)

func str(s string) *string { return &s }

func ids(entries []Entry) []uint {
	out := make([]uint, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Task.ID)
	}
	return out
}

func sampleTasks() []model.Task {
	created := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	return []model.Task{
		{ID: 1, Name: "no schedule", CreatedAt: created},
		{ID: 2, Name: "done", Completed: true, Recurring: model.RecurringDaily, Time: str("11:00"), CreatedAt: created},
		{ID: 3, Name: "tomorrow", Date: str("10-15-2026"), CreatedAt: created},
		{ID: 4, Name: "overdue", Date: str("01-01-2020"), CreatedAt: created},
		{ID: 5, Name: "in an hour", Recurring: model.RecurringDaily, Time: str("11:00"), CreatedAt: created},
		{ID: 6, Name: "broken", Recurring: model.RecurringMonthly, Date: str("last"), CreatedAt: created},
		{ID: 7, Name: "newer no schedule", CreatedAt: created.Add(time.Hour)},
	}
}

func TestBuildAndSort(t *testing.T) {
	var broken []uint
	entries := Build(sampleTasks(), now, func(task model.Task, err error) {
		broken = append(broken, task.ID)
		assert.Error(t, err)
	})
	Sort(entries)

	// Overdue, soonest first, unscheduled (newest first, then higher id), completed last.
	assert.Equal(t, []uint{4, 5, 3, 7, 6, 1, 2}, ids(entries))
	assert.Equal(t, []uint{6}, broken)

	require.Equal(t, uint(6), entries[4].Task.ID)
	assert.Error(t, entries[4].Err)
	assert.Empty(t, entries[4].Countdown.Label)
	assert.Equal(t, RankNoSchedule, entries[4].Countdown.Rank)
}

func TestSortIsDeterministic(t *testing.T) {
	first := Build(sampleTasks(), now, nil)
	second := Build(sampleTasks(), now, nil)
	for i, j := 0, len(second)-1; i < j; i, j = i+1, j-1 {
		second[i], second[j] = second[j], second[i]
	}
	Sort(first)
	Sort(second)
	assert.Equal(t, ids(first), ids(second))
}

func TestToggleMovesTaskToEnd(t *testing.T) {
	tasks := sampleTasks()
	tasks[3].Completed = true
	entries := Build(tasks, now, nil)
	Sort(entries)
	assert.Equal(t, []uint{5, 3, 7, 6, 1, 4, 2}, ids(entries))
}

func TestApplyFilter(t *testing.T) {
	tasks := sampleTasks()
	tasks[0].Category = "Work"
	tasks[4].Category = "work"
	entries := Build(tasks, now, nil)

	assert.Len(t, Apply(entries, Filter{}), len(tasks))
	assert.Equal(t, []uint{2, 5}, ids(Apply(entries, Filter{Kind: FilterDaily})))
	assert.Equal(t, []uint{1, 3, 4, 7}, ids(Apply(entries, Filter{Kind: FilterOneTime})))
	assert.Equal(t, []uint{1, 5}, ids(Apply(entries, Filter{Category: "WORK"})))
	assert.Equal(t, []uint{5}, ids(Apply(entries, Filter{Kind: FilterDaily, Category: "Work"})))
}

func TestApplyFilterUsesPromotedKind(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Name: "legacy weekly", Date: str("WEEKLY-1"), Time: str("09:00")},
		{ID: 2, Name: "legacy monthly", Recurring: model.RecurringNone, Date: str("MONTHLY-20")},
		{ID: 3, Name: "one-time", Date: str("10-15-2026")},
	}
	entries := Build(tasks, now, nil)
	assert.Equal(t, model.RecurringWeekly, entries[0].Kind)

	assert.Equal(t, []uint{1}, ids(Apply(entries, Filter{Kind: FilterWeekly})))
	assert.Equal(t, []uint{2}, ids(Apply(entries, Filter{Kind: FilterMonthly})))
	assert.Equal(t, []uint{3}, ids(Apply(entries, Filter{Kind: FilterOneTime})))
}

func TestParseKind(t *testing.T) {
	kind, ok := ParseKind("none")
	assert.True(t, ok)
	assert.Equal(t, FilterOneTime, kind)

	kind, ok = ParseKind("Weekly")
	assert.True(t, ok)
	assert.Equal(t, FilterWeekly, kind)

	kind, ok = ParseKind("Work")
	assert.False(t, ok)
	assert.Equal(t, FilterAll, kind)
}
