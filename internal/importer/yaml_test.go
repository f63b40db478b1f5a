package importer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"listify/internal/model"
	"listify/internal/repository"
	"listify/internal/service"
)

func newServices(t *testing.T) (*service.TaskService, *service.CategoryService) {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "import.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	log := zap.NewNop()
	tasks := service.NewTaskService(repository.NewTaskRepository(db), log)
	categories := service.NewCategoryService(repository.NewCategoryRepository(db), service.NewCategoryHistory(), log)
	return tasks, categories
}

const document = `
categories:
  - name: Work
    icon: "💼"
    color: "#a5b4fc"
  - name: Fitness
tasks:
  - name: Standup
    category: Work
    recurring: daily
    time: "9:30"
  - name: Gym
    category: fitness
    recurring: weekly
    date: WEEKLY-1
  - name: Groceries
    category: Shopping
  - name: Taxes
    date: 04-15-2027
    time: "12:00"
`

func TestImport(t *testing.T) {
	ctx := context.Background()
	tasks, categories := newServices(t)
	_, err := categories.Create(ctx, service.CategoryInput{Name: "Work", Icon: "🏢"})
	require.NoError(t, err)

	res, err := Import(ctx, strings.NewReader(document), tasks, categories)
	require.NoError(t, err)
	assert.Equal(t, Result{Categories: 2, Tasks: 4}, res)

	all, err := categories.List(ctx)
	require.NoError(t, err)
	byName := make(map[string]model.Category)
	for _, c := range all {
		byName[c.Name] = c
	}
	assert.Len(t, byName, 3)
	assert.Equal(t, "🏢", byName["Work"].Icon, "existing category is kept")
	assert.Equal(t, model.DefaultIcon, byName["Shopping"].Icon)

	stored, err := tasks.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	gym := stored[2]
	assert.Equal(t, "Gym", gym.Name)
	assert.Equal(t, model.RecurringWeekly, gym.Recurring)
	require.NotNil(t, gym.Date)
	assert.Equal(t, "Monday", *gym.Date)
}

func TestImportErrors(t *testing.T) {
	ctx := context.Background()
	tasks, categories := newServices(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "no tasks"},
		{"no tasks", "tasks: []", "no tasks"},
		{"malformed", "tasks: [", "YAML parse error"},
		{"missing name", "tasks:\n  - category: Work", "name is required"},
		{"bad schedule", "tasks:\n  - name: Gym\n    recurring: weekly\n    date: Someday", "invalid schedule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(ctx, strings.NewReader(tt.input), tasks, categories)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
