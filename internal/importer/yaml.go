package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"listify/internal/model"
	"listify/internal/service"
)

// YAMLCategory represents a single category in the YAML input.
type YAMLCategory struct {
	Name  string `yaml:"name"`
	Icon  string `yaml:"icon,omitempty"`
	Color string `yaml:"color,omitempty"`
}

// YAMLTask represents a single task in the YAML input. Date and Time take the same tokens as
// the bot and the stored rows.
type YAMLTask struct {
	Name      string `yaml:"name"`
	Category  string `yaml:"category,omitempty"`
	Recurring string `yaml:"recurring,omitempty"`
	Date      string `yaml:"date,omitempty"`
	Time      string `yaml:"time,omitempty"`
}

// YAMLInput represents the root structure of the YAML input.
type YAMLInput struct {
	Categories []YAMLCategory `yaml:"categories,omitempty"`
	Tasks      []YAMLTask     `yaml:"tasks"`
}

type TaskCreator interface {
	CreateTask(ctx context.Context, input service.TaskInput) (*model.Task, error)
}

type CategoryCreator interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, input service.CategoryInput) (*model.Category, error)
}

// Result counts the rows an import created.
type Result struct {
	Categories int
	Tasks      int
}

// Import parses a YAML document and creates its categories and tasks. Categories that already
// exist are kept as they are. A task naming an unknown category creates it with a preset color.
// Import stops at the first invalid task; rows created before it stay.
func Import(ctx context.Context, r io.Reader, tasks TaskCreator, categories CategoryCreator) (Result, error) {
	var input YAMLInput
	if err := yaml.NewDecoder(r).Decode(&input); err != nil {
		if err == io.EOF {
			return Result{}, fmt.Errorf("no tasks found in YAML")
		}
		return Result{}, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(input.Tasks) == 0 && len(input.Categories) == 0 {
		return Result{}, fmt.Errorf("no tasks found in YAML")
	}

	existing, err := categories.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list categories: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[strings.ToLower(c.Name)] = true
	}

	var res Result
	ensure := func(in service.CategoryInput) error {
		name := strings.TrimSpace(in.Name)
		if name == "" || known[strings.ToLower(name)] {
			return nil
		}
		if in.Color == "" {
			in.Color = model.PresetColors[len(known)%len(model.PresetColors)]
		}
		if _, err := categories.Create(ctx, in); err != nil {
			return fmt.Errorf("create category %q: %w", name, err)
		}
		known[strings.ToLower(name)] = true
		res.Categories++
		return nil
	}

	for _, yc := range input.Categories {
		if strings.TrimSpace(yc.Name) == "" {
			return res, fmt.Errorf("category name is required")
		}
		if err := ensure(service.CategoryInput{Name: yc.Name, Icon: yc.Icon, Color: yc.Color}); err != nil {
			return res, err
		}
	}

	for i, yt := range input.Tasks {
		if strings.TrimSpace(yt.Name) == "" {
			return res, fmt.Errorf("task %d: name is required", i+1)
		}
		if err := ensure(service.CategoryInput{Name: yt.Category}); err != nil {
			return res, err
		}
		_, err := tasks.CreateTask(ctx, service.TaskInput{
			Name:      yt.Name,
			Category:  yt.Category,
			Recurring: yt.Recurring,
			Date:      yt.Date,
			Time:      yt.Time,
		})
		if err != nil {
			return res, fmt.Errorf("add task %q: %w", yt.Name, err)
		}
		res.Tasks++
	}
	return res, nil
}
