package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"listify/internal/model"
)

var (
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrNothingToUndo    = errors.New("nothing to undo")
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CategoryInput represents data required to create a category.
type CategoryInput struct {
	Name  string
	Icon  string
	Color string
}

func (in CategoryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 64)),
		validation.Field(&in.Icon, validation.RuneLength(0, 8)),
		validation.Field(&in.Color, validation.Match(colorPattern).Error("must be a #RRGGBB color")),
	)
}

// CategoryService manages categories and the one-step undo of category changes.
type CategoryService struct {
	repo    CategoryRepository
	history *CategoryHistory
	log     *zap.Logger
}

func NewCategoryService(repo CategoryRepository, history *CategoryHistory, log *zap.Logger) *CategoryService {
	return &CategoryService{repo: repo, history: history, log: log}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}

// Create stores a new category. Missing icon and color fall back to the defaults.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*model.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Icon = strings.TrimSpace(input.Icon)
	input.Color = strings.TrimSpace(input.Color)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByName(ctx, input.Name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCategoryExists, input.Name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := model.Category{Name: input.Name, Icon: input.Icon, Color: strings.ToUpper(input.Color)}
	if category.Icon == "" {
		category.Icon = model.DefaultIcon
	}
	if category.Color == "" {
		category.Color = model.PresetColors[0]
	}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, err
	}

	s.history.Record(CategoryAction{Kind: ActionCreate, Categories: []model.Category{category}})
	s.log.Info("category created", zap.Uint("category_id", category.ID), zap.String("name", category.Name))
	return &category, nil
}

// Delete removes a category by name. Tasks keep the name.
func (s *CategoryService) Delete(ctx context.Context, name string) (*model.Category, error) {
	category, err := s.repo.FindByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, strings.TrimSpace(name))
	}
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, category.ID); err != nil {
		return nil, err
	}

	s.history.Record(CategoryAction{Kind: ActionDelete, Categories: []model.Category{*category}})
	s.log.Info("category deleted", zap.Uint("category_id", category.ID), zap.String("name", category.Name))
	return category, nil
}

// ResetDefaults replaces every category with the default set.
func (s *CategoryService) ResetDefaults(ctx context.Context) ([]model.Category, error) {
	previous, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.repo.ReplaceAll(ctx, model.DefaultCategories())
	if err != nil {
		return nil, err
	}

	s.history.Record(CategoryAction{Kind: ActionReset, Categories: previous})
	s.log.Info("categories reset", zap.Int("previous", len(previous)), zap.Int("current", len(stored)))
	return stored, nil
}

// Undo reverts the last category action. A failed undo keeps the action so it can be retried.
func (s *CategoryService) Undo(ctx context.Context) (CategoryAction, error) {
	action, ok := s.history.Take()
	if !ok {
		return CategoryAction{}, ErrNothingToUndo
	}

	var err error
	switch action.Kind {
	case ActionCreate:
		for _, category := range action.Categories {
			if err = s.repo.Delete(ctx, category.ID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			err = nil
		}
	case ActionDelete:
		err = s.repo.Restore(ctx, action.Categories)
	case ActionReset:
		_, err = s.repo.ReplaceAll(ctx, action.Categories)
	}
	if err != nil {
		s.history.Record(action)
		return CategoryAction{}, fmt.Errorf("undo %s: %w", action.Kind, err)
	}

	s.log.Info("category action undone", zap.Stringer("action", action.Kind))
	return action, nil
}
