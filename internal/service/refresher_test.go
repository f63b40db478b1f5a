package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScheduler struct {
	mu      sync.Mutex
	next    cron.EntryID
	jobs    map[cron.EntryID]func()
	removed []cron.EntryID
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: make(map[cron.EntryID]func())}
}

func (f *fakeScheduler) ScheduleInterval(_ time.Duration, job func()) (cron.EntryID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.jobs[f.next] = job
	return f.next, nil
}

func (f *fakeScheduler) Remove(id cron.EntryID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, id)
	f.removed = append(f.removed, id)
}

func (f *fakeScheduler) tick() {
	f.mu.Lock()
	jobs := make([]func(), 0, len(f.jobs))
	for _, job := range f.jobs {
		jobs = append(jobs, job)
	}
	f.mu.Unlock()
	for _, job := range jobs {
		job()
	}
}

func TestRefresherLifecycle(t *testing.T) {
	sched := newFakeScheduler()
	runs := 0
	r := NewRefresher(sched, time.Minute, func(context.Context) { runs++ })

	r.Trigger()
	assert.Equal(t, 0, runs, "trigger before start does nothing")

	require.NoError(t, r.Start(context.Background()))
	assert.Equal(t, 1, runs, "start runs immediately")
	require.NoError(t, r.Start(context.Background()))
	assert.Len(t, sched.jobs, 1, "second start is a no-op")

	sched.tick()
	sched.tick()
	r.Trigger()
	assert.Equal(t, 4, runs)
	assert.True(t, r.Running())

	r.Stop()
	r.Stop()
	assert.False(t, r.Running())
	assert.Empty(t, sched.jobs)
	assert.Len(t, sched.removed, 1)

	sched.tick()
	r.Trigger()
	assert.Equal(t, 4, runs, "no runs after stop")
}

func TestRefresherStopsWithParentContext(t *testing.T) {
	sched := newFakeScheduler()
	runs := 0
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRefresher(sched, time.Minute, func(context.Context) { runs++ })
	require.NoError(t, r.Start(ctx))

	cancel()
	sched.tick()
	assert.Equal(t, 1, runs)
}

func TestSchedulerServiceEntries(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	_, err := s.ScheduleInterval(0, func() {})
	assert.Error(t, err)

	id, err := s.ScheduleInterval(500*time.Millisecond, func() {})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())
	s.Remove(id)
	assert.Equal(t, 0, s.Entries())
}
