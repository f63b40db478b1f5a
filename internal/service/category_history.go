package service

import (
	"fmt"
	"strings"
	"sync"

	"listify/internal/model"
)

type CategoryActionKind int

const (
	ActionCreate CategoryActionKind = iota
	ActionDelete
	ActionReset
)

func (k CategoryActionKind) String() string {
	switch k {
	case ActionCreate:
		return "create"
	case ActionDelete:
		return "delete"
	default:
		return "reset"
	}
}

// CategoryAction is the last undoable category change. Categories holds the created row, the
// deleted row, or the whole set as it was before a reset.
type CategoryAction struct {
	Kind       CategoryActionKind
	Categories []model.Category
}

// Describe renders what undoing the action will do.
func (a CategoryAction) Describe() string {
	names := make([]string, 0, len(a.Categories))
	for _, c := range a.Categories {
		names = append(names, c.Name)
	}
	switch a.Kind {
	case ActionCreate:
		return fmt.Sprintf("remove category %s", strings.Join(names, ", "))
	case ActionDelete:
		return fmt.Sprintf("restore category %s", strings.Join(names, ", "))
	default:
		return fmt.Sprintf("restore %d categories from before the reset", len(a.Categories))
	}
}

// CategoryHistory keeps the single most recent category action.
type CategoryHistory struct {
	mu   sync.Mutex
	last *CategoryAction
}

func NewCategoryHistory() *CategoryHistory {
	return &CategoryHistory{}
}

// Record replaces the remembered action.
func (h *CategoryHistory) Record(action CategoryAction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = &action
}

// Take returns the remembered action and forgets it.
func (h *CategoryHistory) Take() (CategoryAction, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return CategoryAction{}, false
	}
	action := *h.last
	h.last = nil
	return action, true
}

func (h *CategoryHistory) Peek() (CategoryAction, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return CategoryAction{}, false
	}
	return *h.last, true
}
