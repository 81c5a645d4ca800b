package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sahilchouksey/mindmeld-api/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CategoryService manages product categories
type CategoryService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, log *zap.Logger) *CategoryService {
	return &CategoryService{db: db, log: log}
}

// List returns categories sorted by name, seeding the defaults into an empty table
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}

	if len(categories) == 0 {
		defaults := model.DefaultCategories()
		// a concurrent caller may seed first; the unique name index keeps one copy
		err := s.db.WithContext(ctx).Create(&defaults).Error
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		s.log.Info("Seeded default categories")

		if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
			return nil, err
		}
	}

	return categories, nil
}

// Create adds a category with a unique name
func (s *CategoryService) Create(ctx context.Context, name, description string) (*model.Category, error) {
	category := &model.Category{Name: strings.TrimSpace(name), Description: description}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return category, nil
}

// Update changes a category's name or description
func (s *CategoryService) Update(ctx context.Context, id uint, name, description *string) (*model.Category, error) {
	var category model.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if name != nil {
		category.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		category.Description = *description
	}

	if err := s.db.WithContext(ctx).Save(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return &category, nil
}

// Delete removes a category and detaches its products
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Category{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return tx.Model(&model.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error
	})
}
