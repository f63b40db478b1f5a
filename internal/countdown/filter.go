package countdown

import (
	"strings"

	"listify/internal/model"
)

// Kind selects tasks by recurring kind.
type Kind string

const (
	FilterAll     Kind = "all"
	FilterOneTime Kind = "once"
	FilterDaily   Kind = "daily"
	FilterWeekly  Kind = "weekly"
	FilterMonthly Kind = "monthly"
)

// Kinds lists the kind filters in the order a UI cycles through them.
var Kinds = []Kind{FilterAll, FilterOneTime, FilterDaily, FilterWeekly, FilterMonthly}

// ParseKind accepts a filter name or a recurring kind name. Unknown values select everything.
func ParseKind(raw string) (Kind, bool) {
	switch value := strings.ToLower(strings.TrimSpace(raw)); value {
	case "", string(FilterAll):
		return FilterAll, true
	case string(FilterOneTime), string(model.RecurringNone), "one-time":
		return FilterOneTime, true
	case string(FilterDaily), string(FilterWeekly), string(FilterMonthly):
		return Kind(value), true
	default:
		return FilterAll, false
	}
}

// Label is the display name of the filter.
func (k Kind) Label() string {
	switch k {
	case FilterOneTime:
		return "One-time Tasks"
	case FilterDaily:
		return "Daily Tasks"
	case FilterWeekly:
		return "Weekly Tasks"
	case FilterMonthly:
		return "Monthly Tasks"
	default:
		return "All Tasks"
	}
}

func (k Kind) matches(kind model.RecurringKind) bool {
	switch k {
	case FilterOneTime:
		return kind == model.RecurringNone
	case FilterDaily:
		return kind == model.RecurringDaily
	case FilterWeekly:
		return kind == model.RecurringWeekly
	case FilterMonthly:
		return kind == model.RecurringMonthly
	default:
		return true
	}
}

// Filter narrows a task list. An empty Category matches every category.
type Filter struct {
	Kind     Kind
	Category string
}

// Apply keeps the entries matching f, preserving order.
func Apply(entries []Entry, f Filter) []Entry {
	if (f.Kind == "" || f.Kind == FilterAll) && f.Category == "" {
		return entries
	}
	kept := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if !f.Kind.matches(entry.Kind) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(strings.TrimSpace(entry.Task.Category), strings.TrimSpace(f.Category)) {
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}
