package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listify/internal/model"
	"listify/internal/schedule"
)

var now = time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)

func upcomingIn(ms int64) schedule.Resolution {
	return schedule.Resolution{Status: schedule.Upcoming, At: now.Add(time.Duration(ms) * time.Millisecond)}
}

func TestPresentLabelThresholds(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{90000000, "1d"},
		{3700000, "1h"},
		{30000, "1m"},
		{0, "1m"},
		{59999, "1m"},
		{60000, "1m"},
		{119999, "1m"},
		{120000, "2m"},
		{3599999, "59m"},
		{3600000, "1h"},
		{86399999, "23h"},
		{86400000, "1d"},
		{5 * 86400000, "5d"},
	}
	for _, tt := range tests {
		c := Present(upcomingIn(tt.ms), now, false)
		assert.Equal(t, tt.want, c.Label, "diff %d ms", tt.ms)
		assert.Equal(t, tt.ms, c.Rank)
	}
}

func TestPresentSpecialStates(t *testing.T) {
	overdue := Present(schedule.Resolution{Status: schedule.Overdue}, now, false)
	assert.Equal(t, Countdown{Label: LabelOverdue, Rank: RankOverdue}, overdue)

	none := Present(schedule.Resolution{Status: schedule.NoSchedule}, now, false)
	assert.Equal(t, Countdown{Rank: RankNoSchedule}, none)

	for _, res := range []schedule.Resolution{upcomingIn(1000), {Status: schedule.Overdue}, {Status: schedule.NoSchedule}} {
		done := Present(res, now, true)
		assert.Equal(t, Countdown{Label: LabelCompleted, Rank: RankCompleted}, done)
	}
	assert.Less(t, RankNoSchedule, RankCompleted)
}

func TestWeeklyEndToEnd(t *testing.T) {
	monday, clock := "Monday", "09:00"
	task := model.Task{Recurring: model.RecurringWeekly, Date: &monday, Time: &clock}

	res, err := schedule.ResolveTask(task, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC), res.At)
	// Wednesday 10:00 to Monday 09:00 is four days and 23 hours.
	assert.Equal(t, "4d", Present(res, now, false).Label)

	wednesday9 := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)
	res, err = schedule.ResolveTask(task, wednesday9)
	require.NoError(t, err)
	assert.Equal(t, "5d", Present(res, wednesday9, false).Label)
}

func TestOneTimeOverdueEndToEnd(t *testing.T) {
	date := "01-01-2020"
	task := model.Task{Recurring: model.RecurringNone, Date: &date}
	entries := Build([]model.Task{task}, now, nil)
	require.Len(t, entries, 1)
	assert.Equal(t, LabelOverdue, entries[0].Countdown.Label)
	assert.True(t, entries[0].Overdue())
}

func TestRankEqualsRemainingMilliseconds(t *testing.T) {
	date, clock := "10-20-2026", "12:30"
	task := model.Task{Recurring: model.RecurringNone, Date: &date, Time: &clock}
	entries := Build([]model.Task{task}, now, nil)
	want := time.Date(2026, time.October, 20, 12, 30, 0, 0, time.UTC).Sub(now).Milliseconds()
	assert.Equal(t, want, entries[0].Countdown.Rank)
	assert.Equal(t, "6d", entries[0].Countdown.Label)
}
