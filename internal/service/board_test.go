package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"listify/internal/countdown"
	"listify/internal/model"
)

type failingLister struct{}

func (failingLister) List(context.Context) ([]model.Task, error) {
	return nil, errors.New("disk unplugged")
}

func TestBoardSnapshotOrdersByUrgency(t *testing.T) {
	svc, repo := newTaskService(t)
	for _, in := range []TaskInput{
		{Name: "someday"},
		{Name: "old deadline", Date: "01-01-2020"},
		{Name: "standup", Recurring: "daily", Time: "11:00"},
		{Name: "review", Recurring: "weekly", Date: "Friday", Time: "09:00"},
	} {
		_, err := svc.CreateTask(ctx, in)
		require.NoError(t, err)
	}
	broken := model.Task{Name: "broken", Recurring: model.RecurringMonthly, Date: strp("last")}
	require.NoError(t, repo.Create(ctx, &broken))

	core, logs := observer.New(zap.WarnLevel)
	board := NewBoard(repo, zap.New(core))
	now := time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)

	entries := board.Snapshot(ctx, now, countdown.Filter{})
	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.Task.Name+" "+e.Countdown.Label)
	}
	assert.Equal(t, []string{"old deadline Overdue", "standup 1h", "review 1d", "broken ", "someday "}, got)
	assert.Equal(t, 1, logs.FilterMessage("skip schedule for task").Len())

	daily := board.Snapshot(ctx, now, countdown.Filter{Kind: countdown.FilterDaily})
	require.Len(t, daily, 1)
	assert.Equal(t, "standup", daily[0].Task.Name)
}

func TestBoardSnapshotSurvivesStoreFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	board := NewBoard(failingLister{}, zap.New(core))

	entries := board.Snapshot(ctx, time.Now(), countdown.Filter{})
	assert.Empty(t, entries)
	assert.Equal(t, 1, logs.Len())
}
