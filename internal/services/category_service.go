package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(ctx context.Context, userID, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	db := s.db.WithContext(ctx)
	if err := s.checkNameFree(db, userID, "", name); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrCategoryExists
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// checkNameFree fails with ErrCategoryExists when another of the user's
// categories already uses name.
func (s *categoryService) checkNameFree(db *gorm.DB, userID, excludeID, name string) error {
	q := db.Model(&models.Category{}).Where("user_id = ? AND name = ?", userID, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrCategoryExists
	}
	return nil
}

// GetUserCategories retrieves a paginated list of categories for a user, ordered by name.
func (s *categoryService) GetUserCategories(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	q := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("user_id = ?", userID).
		Order("name ASC")

	result, err := pagination.Fetch[models.Category](q, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetCategoryByID retrieves a category owned by the user.
func (s *categoryService) GetCategoryByID(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	return findCategory(s.db.WithContext(ctx), userID, categoryID)
}

func findCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// requireOwnedCategory resolves a category referenced from a request body.
// Absent and foreign categories both yield the same 403.
func requireOwnedCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	category, err := findCategory(db, userID, categoryID)
	if errors.Is(err, apperrors.ErrCategoryNotFound) {
		return nil, apperrors.ErrCategoryForbidden
	}
	return category, err
}

// UpdateCategory updates a category's name and/or description.
func (s *categoryService) UpdateCategory(ctx context.Context, userID, categoryID string, name, description *string) (*models.Category, error) {
	db := s.db.WithContext(ctx)
	category, err := findCategory(db, userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
		}
		if trimmed != category.Name {
			if err := s.checkNameFree(db, userID, categoryID, trimmed); err != nil {
				return nil, err
			}
			updates["name"] = trimmed
		}
	}
	if description != nil {
		updates["description"] = strings.TrimSpace(*description)
	}

	if len(updates) > 0 {
		if err := db.Model(category).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrCategoryExists
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory removes a category that no plan or expense references.
// The foreign keys restrict the delete as well.
func (s *categoryService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := findCategory(tx, userID, categoryID)
		if err != nil {
			return err
		}

		for _, model := range []any{&models.BudgetPlan{}, &models.Expense{}} {
			var refs int64
			if err := tx.Model(model).Where("category_id = ?", categoryID).Count(&refs).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if refs > 0 {
				return apperrors.ErrCategoryInUse
			}
		}

		if err := tx.Delete(category).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return apperrors.ErrCategoryInUse
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
