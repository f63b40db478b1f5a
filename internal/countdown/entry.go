package countdown

import (
	"sort"
	"time"

	"listify/internal/model"
	"listify/internal/schedule"
)

// Entry is a task together with everything derived for it at one instant.
// Kind is the recurring kind the task is scheduled by, which differs from the stored one for
// legacy rows. Err holds the parse failure for tasks whose tokens could not be read.
type Entry struct {
	Task       model.Task
	Kind       model.RecurringKind
	Resolution schedule.Resolution
	Countdown  Countdown
	Err        error
}

// Overdue reports whether the entry is past its only occurrence.
func (e Entry) Overdue() bool {
	return !e.Task.Completed && e.Resolution.Status == schedule.Overdue
}

// Build resolves and presents every task at now. Tasks with malformed tokens are treated as
// unscheduled; onParseError, when set, receives each such task and its error.
func Build(tasks []model.Task, now time.Time, onParseError func(model.Task, error)) []Entry {
	entries := make([]Entry, 0, len(tasks))
	for _, task := range tasks {
		res, err := schedule.ResolveTask(task, now)
		if err != nil {
			res = schedule.Resolution{Status: schedule.NoSchedule}
			if onParseError != nil {
				onParseError(task, err)
			}
		}
		entries = append(entries, Entry{
			Task:       task,
			Kind:       schedule.EffectiveKind(task.Recurring, task.Date),
			Resolution: res,
			Countdown:  Present(res, now, task.Completed),
			Err:        err,
		})
	}
	return entries
}

// Sort orders entries by ascending rank. Equal ranks fall back to newest first, then highest id.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Countdown.Rank != b.Countdown.Rank {
			return a.Countdown.Rank < b.Countdown.Rank
		}
		if !a.Task.CreatedAt.Equal(b.Task.CreatedAt) {
			return a.Task.CreatedAt.After(b.Task.CreatedAt)
		}
		return a.Task.ID > b.Task.ID
	})
}
