package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"listify/internal/countdown"
	"listify/internal/model"
)

// Board builds the sorted countdown view of the task list.
type Board struct {
	tasks TaskLister
	log   *zap.Logger
}

func NewBoard(tasks TaskLister, log *zap.Logger) *Board {
	return &Board{tasks: tasks, log: log}
}

// Snapshot resolves every task at now and returns the filtered entries, most urgent first.
// A failing store yields an empty board so periodic refreshes keep running.
func (b *Board) Snapshot(ctx context.Context, now time.Time, filter countdown.Filter) []countdown.Entry {
	tasks, err := b.tasks.List(ctx)
	if err != nil {
		b.log.Warn("list tasks for board", zap.Error(err))
		return nil
	}

	entries := countdown.Build(tasks, now, func(task model.Task, err error) {
		b.log.Warn("skip schedule for task", zap.Uint("task_id", task.ID), zap.Error(err))
	})
	entries = countdown.Apply(entries, filter)
	countdown.Sort(entries)
	return entries
}
