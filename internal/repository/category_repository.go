package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"listify/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// FindByName matches names ignoring ASCII case.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).Where("name = ? COLLATE NOCASE", strings.TrimSpace(name)).First(&category).Error
	if err != nil {
		return nil, fmt.Errorf("find category %q: %w", name, err)
	}
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, categoryID uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Category{}, categoryID)
	if res.Error != nil {
		return fmt.Errorf("delete category %d: %w", categoryID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete category %d: %w", categoryID, gorm.ErrRecordNotFound)
	}
	return nil
}

// Restore re-inserts categories with their original ids.
func (r *CategoryRepository) Restore(ctx context.Context, categories []model.Category) error {
	if len(categories) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&categories).Error; err != nil {
		return fmt.Errorf("restore categories: %w", err)
	}
	return nil
}

// ReplaceAll swaps the whole category table for the given set in one transaction and returns
// the stored rows.
func (r *CategoryRepository) ReplaceAll(ctx context.Context, categories []model.Category) ([]model.Category, error) {
	stored := make([]model.Category, len(categories))
	copy(stored, categories)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Category{}).Error; err != nil {
			return err
		}
		if len(stored) == 0 {
			return nil
		}
		return tx.Create(&stored).Error
	})
	if err != nil {
		return nil, fmt.Errorf("replace categories: %w", err)
	}
	return stored, nil
}
