package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"cashdash/internal/cache"
	apperrors "cashdash/internal/errors"
	"cashdash/internal/models"
	"cashdash/internal/validator"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db    *gorm.DB
	cache cache.Cache
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, c cache.Cache) CategoryServicer {
	return &categoryService{db: db, cache: c}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(ctx context.Context, name string, categoryType models.CategoryType, color *string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !categoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be inflow or outflow")
	}
	if err := checkColor(color); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:  name,
		Type:  categoryType,
		Color: normalizeColor(color),
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(apperrors.ErrDuplicateCategory, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// ListCategories returns categories ordered by type then name, optionally of one type.
func (s *categoryService) ListCategories(ctx context.Context, categoryType *models.CategoryType) ([]models.Category, error) {
	query := s.db.WithContext(ctx).Model(&models.Category{})
	if categoryType != nil {
		if !categoryType.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be inflow or outflow")
		}
		query = query.Where("type = ?", *categoryType)
	}

	categories := []models.Category{}
	if err := query.Order("type ASC").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID
func (s *categoryService) GetCategoryByID(ctx context.Context, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory applies the non-empty fields. An empty color string clears the color.
func (s *categoryService) UpdateCategory(ctx context.Context, categoryID string, name string, categoryType *models.CategoryType, color *string) (*models.Category, error) {
	category, err := s.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
	}
	if categoryType != nil {
		if !categoryType.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be inflow or outflow")
		}
		updates["type"] = *categoryType
	}
	if color != nil {
		if err := checkColor(color); err != nil {
			return nil, err
		}
		updates["color"] = normalizeColor(color)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.Wrap(apperrors.ErrDuplicateCategory, err)
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.cache.Invalidate(ctx, cache.PrefixTransactions, cache.PrefixCashFlow)
	}

	return s.GetCategoryByID(ctx, categoryID)
}

// DeleteCategory removes a category. Transactions that referenced it become
// uncategorized in the same database transaction.
func (s *categoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	category, err := s.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.Invalidate(ctx, cache.PrefixTransactions, cache.PrefixCashFlow)
	return nil
}

func checkColor(color *string) error {
	if color == nil || *color == "" {
		return nil
	}
	if !validator.IsHexColor(*color) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "color must be a hex color like #22c55e")
	}
	return nil
}

func normalizeColor(color *string) *string {
	if color == nil || *color == "" {
		return nil
	}
	c := strings.ToLower(*color)
	return &c
}
