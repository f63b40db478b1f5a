package service

import (
	"context"
	"fmt"
	"time"
)

// Stats summarizes the task list for the dashboard.
type Stats struct {
	Total          int
	Completed      int
	CompletionRate string
	WeekStart      time.Time
	// Weekly counts completions per day of the current week, Sunday first.
	Weekly [7]int
}

var WeekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// StatsService computes dashboard numbers.
type StatsService struct {
	tasks TaskLister
}

func NewStatsService(tasks TaskLister) *StatsService {
	return &StatsService{tasks: tasks}
}

func (s *StatsService) Compute(ctx context.Context, now time.Time) (Stats, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	year, month, day := now.Date()
	weekStart := time.Date(year, month, day-int(now.Weekday()), 0, 0, 0, 0, now.Location())
	stats := Stats{Total: len(tasks), WeekStart: weekStart, CompletionRate: "0%"}

	for _, task := range tasks {
		if !task.Completed {
			continue
		}
		stats.Completed++

		// Rows completed before completion times were tracked fall back to their creation time.
		doneAt := task.CreatedAt
		if task.CompletedAt != nil {
			doneAt = *task.CompletedAt
		}
		doneAt = doneAt.In(now.Location())
		if doneAt.Before(weekStart) {
			continue
		}
		y, m, d := doneAt.Date()
		offset := int(time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Sub(weekStart).Hours()/24 + 0.5)
		if offset < 7 {
			stats.Weekly[offset]++
		}
	}

	if stats.Total > 0 {
		stats.CompletionRate = fmt.Sprintf("%d%%", int(float64(stats.Completed)/float64(stats.Total)*100+0.5))
	}
	return stats, nil
}
