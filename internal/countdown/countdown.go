// Package countdown turns resolved schedules into display labels and urgency ranks.
package countdown

import (
	"fmt"
	"math"
	"time"

	"listify/internal/schedule"
)

const (
	LabelCompleted = "Completed"
	LabelOverdue   = "Overdue"
)

// Ranks for the states without a remaining duration. Lower ranks sort first.
const (
	RankOverdue    int64 = math.MinInt64
	RankNoSchedule int64 = math.MaxInt64 - 1
	RankCompleted  int64 = math.MaxInt64
)

const day = 24 * time.Hour

// Countdown is the presentation of one task at one instant.
type Countdown struct {
	Label string
	Rank  int64
}

// Present derives the label and rank for a resolution at now. Completed tasks always sort last.
func Present(res schedule.Resolution, now time.Time, completed bool) Countdown {
	if completed {
		return Countdown{Label: LabelCompleted, Rank: RankCompleted}
	}

	switch res.Status {
	case schedule.Overdue:
		return Countdown{Label: LabelOverdue, Rank: RankOverdue}
	case schedule.Upcoming:
		diff := res.At.Sub(now)
		if diff < 0 {
			diff = 0
		}
		return Countdown{Label: Label(diff), Rank: diff.Milliseconds()}
	default:
		return Countdown{Rank: RankNoSchedule}
	}
}

// Label renders a remaining duration with the coarsest whole unit. Anything under a minute
// still shows as one minute.
func Label(diff time.Duration) string {
	switch {
	case diff >= day:
		return fmt.Sprintf("%dd", diff/day)
	case diff >= time.Hour:
		return fmt.Sprintf("%dh", diff/time.Hour)
	default:
		minutes := diff / time.Minute
		if minutes < 1 {
			minutes = 1
		}
		return fmt.Sprintf("%dm", minutes)
	}
}
