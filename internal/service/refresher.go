package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// IntervalScheduler registers and removes periodic jobs.
type IntervalScheduler interface {
	ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error)
	Remove(id cron.EntryID)
}

// Refresher re-runs a function on a fixed interval between Start and Stop.
// The owner of a view starts it when the view opens and stops it when the view goes away.
// Runs never overlap.
type Refresher struct {
	scheduler IntervalScheduler
	interval  time.Duration
	fn        func(ctx context.Context)

	mu      sync.Mutex
	runMu   sync.Mutex
	entry   cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

func NewRefresher(scheduler IntervalScheduler, interval time.Duration, fn func(ctx context.Context)) *Refresher {
	return &Refresher{scheduler: scheduler, interval: interval, fn: fn}
}

// Start registers the periodic job and runs fn once right away. Starting a running refresher
// does nothing.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	entry, err := r.scheduler.ScheduleInterval(r.interval, func() { r.run(runCtx) })
	if err != nil {
		cancel()
		r.mu.Unlock()
		return err
	}
	r.entry, r.ctx, r.cancel, r.running = entry, runCtx, cancel, true
	r.mu.Unlock()

	r.run(runCtx)
	return nil
}

// Trigger runs fn now, outside the regular interval. It is a no-op when stopped.
func (r *Refresher) Trigger() {
	r.mu.Lock()
	ctx, running := r.ctx, r.running
	r.mu.Unlock()
	if running {
		r.run(ctx)
	}
}

// Stop removes the periodic job. It is safe to call more than once.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.scheduler.Remove(r.entry)
	r.cancel()
	r.running = false
}

func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Refresher) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	r.fn(ctx)
}
