package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"listify/internal/model"
	"listify/internal/schedule"
)

// TaskInput represents data required to create a task. Date and Time are raw tokens and may
// be empty.
type TaskInput struct {
	Name      string
	Category  string
	Recurring string
	Date      string
	Time      string
}

func (in TaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&in.Category, validation.RuneLength(0, 64)),
	)
}

// TaskService wraps task-related business logic.
type TaskService struct {
	repo TaskRepository
	log  *zap.Logger
}

func NewTaskService(repo TaskRepository, log *zap.Logger) *TaskService {
	return &TaskService{repo: repo, log: log}
}

// CreateTask validates the input and stores the task with canonical schedule tokens.
// A daily task without a time is due at the end of every day.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	kind := model.ParseRecurringKind(input.Recurring)
	date, clock := optional(input.Date), optional(input.Time)
	if kind == model.RecurringDaily && clock == nil {
		value := schedule.FormatTime(schedule.DefaultHour, schedule.DefaultMinute)
		clock = &value
	}

	if date != nil || clock != nil {
		rule, err := schedule.ParseRule(kind, date, clock)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule: %w", err)
		}
		kind = rule.Kind
		date, clock = rule.Tokens()
	}

	task := model.Task{
		Name:      input.Name,
		Category:  input.Category,
		Recurring: kind,
		Date:      date,
		Time:      clock,
	}
	if err := s.repo.Create(ctx, &task); err != nil {
		return nil, err
	}

	s.log.Info("task created", zap.Uint("task_id", task.ID), zap.String("recurring", string(task.Recurring)))
	return &task, nil
}

func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.repo.List(ctx)
}

func (s *TaskService) GetTask(ctx context.Context, taskID uint) (*model.Task, error) {
	return s.repo.FindByID(ctx, taskID)
}

// ToggleCompleted flips the completed flag. now stamps the completion time.
func (s *TaskService) ToggleCompleted(ctx context.Context, taskID uint, now time.Time) (*model.Task, error) {
	task, err := s.repo.ToggleCompleted(ctx, taskID, now)
	if err != nil {
		return nil, err
	}
	s.log.Info("task toggled", zap.Uint("task_id", task.ID), zap.Bool("completed", task.Completed))
	return task, nil
}

// DeleteTask removes a task completely.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint) error {
	if err := s.repo.Delete(ctx, taskID); err != nil {
		return err
	}
	s.log.Info("task deleted", zap.Uint("task_id", taskID))
	return nil
}

func optional(raw string) *string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	return &value
}
