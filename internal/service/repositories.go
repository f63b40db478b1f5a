package service

import (
	"context"
	"time"

	"listify/internal/model"
)

// TaskLister is the read side of the task store.
type TaskLister interface {
	List(ctx context.Context) ([]model.Task, error)
}

// TaskRepository defines the datastore persisting task records.
type TaskRepository interface {
	TaskLister
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, taskID uint) (*model.Task, error)
	ToggleCompleted(ctx context.Context, taskID uint, now time.Time) (*model.Task, error)
	Delete(ctx context.Context, taskID uint) error
}

// CategoryRepository defines the datastore persisting categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, categoryID uint) error
	Restore(ctx context.Context, categories []model.Category) error
	ReplaceAll(ctx context.Context, categories []model.Category) ([]model.Category, error)
}
