package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/pagination"
)

// budgetPlanService handles the budget plan ledger.
type budgetPlanService struct {
	db *gorm.DB
}

// NewBudgetPlanService creates a new BudgetPlanServicer.
func NewBudgetPlanService(db *gorm.DB) BudgetPlanServicer {
	return &budgetPlanService{db: db}
}

func dateRangeError() error {
	return apperrors.WithDetails(apperrors.ErrValidation, []apperrors.FieldError{{
		Field:   "end_date",
		Rule:    "gtefield",
		Param:   "start_date",
		Message: "end_date must be on or after start_date",
	}})
}

// CreatePlan creates a plan with spent = 0 for a category the user owns.
func (s *budgetPlanService) CreatePlan(ctx context.Context, userID string, in PlanInput) (*models.BudgetPlan, error) {
	if err := validateAmount("amount", in.Amount); err != nil {
		return nil, err
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, dateRangeError()
	}

	db := s.db.WithContext(ctx)
	category, err := requireOwnedCategory(db, userID, in.CategoryID)
	if err != nil {
		return nil, err
	}

	plan := &models.BudgetPlan{
		UserID:     userID,
		CategoryID: category.ID,
		Amount:     in.Amount,
		Spent:      decimal.Zero,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
	}
	if err := db.Create(plan).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	plan.Category = category
	return plan, nil
}

// GetUserPlans returns the user's plans, newest first.
func (s *budgetPlanService) GetUserPlans(ctx context.Context, userID string, page pagination.PageRequest, filter PlanFilter) (*pagination.PageResponse[models.BudgetPlan], error) {
	q := s.db.WithContext(ctx).Model(&models.BudgetPlan{}).Where("user_id = ?", userID)
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ActiveOn != nil {
		q = q.Where("start_date <= ? AND end_date >= ?", *filter.ActiveOn, *filter.ActiveOn)
	}
	q = q.Order("created_at DESC").Order("id DESC")

	result, err := pagination.Fetch[models.BudgetPlan](q, page, "Category")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetPlanByID returns a plan owned by the user.
func (s *budgetPlanService) GetPlanByID(ctx context.Context, userID, planID string) (*models.BudgetPlan, error) {
	return findPlan(s.db.WithContext(ctx).Preload("Category"), userID, planID, false)
}

// findPlan loads a plan owned by userID, optionally taking a row lock that
// serializes concurrent spent adjustments.
func findPlan(db *gorm.DB, userID, planID string, lock bool) (*models.BudgetPlan, error) {
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var plan models.BudgetPlan
	if err := db.Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &plan, nil
}

// UpdatePlan applies the supplied fields. The merged date range must still
// be ordered and a new category must belong to the user.
func (s *budgetPlanService) UpdatePlan(ctx context.Context, userID, planID string, in PlanUpdate) (*models.BudgetPlan, error) {
	if in.Amount != nil {
		if err := validateAmount("amount", *in.Amount); err != nil {
			return nil, err
		}
	}

	var plan *models.BudgetPlan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		plan, err = findPlan(tx, userID, planID, true)
		if err != nil {
			return err
		}

		start, end := plan.StartDate, plan.EndDate
		if in.StartDate != nil {
			start = *in.StartDate
		}
		if in.EndDate != nil {
			end = *in.EndDate
		}
		if end.Before(start) {
			return dateRangeError()
		}

		updates := make(map[string]any)
		if in.CategoryID != nil && *in.CategoryID != plan.CategoryID {
			if _, err := requireOwnedCategory(tx, userID, *in.CategoryID); err != nil {
				return err
			}
			updates["category_id"] = *in.CategoryID
		}
		if in.Amount != nil {
			updates["amount"] = *in.Amount
		}
		if in.StartDate != nil {
			updates["start_date"] = start
		}
		if in.EndDate != nil {
			updates["end_date"] = end
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(plan).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetPlanByID(ctx, userID, planID)
}

// DeletePlan removes the plan and every expense under it in one
// transaction, returning how many expenses were removed.
func (s *budgetPlanService) DeletePlan(ctx context.Context, userID, planID string) (int64, error) {
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := findPlan(tx, userID, planID, true)
		if err != nil {
			return err
		}

		res := tx.Where("plan_id = ?", plan.ID).Delete(&models.Expense{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		removed = res.RowsAffected

		if err := tx.Delete(plan).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// GetRemaining reports amount - spent for a plan. The result is negative
// when the plan is overspent.
func (s *budgetPlanService) GetRemaining(ctx context.Context, userID, planID string) (*PlanRemaining, error) {
	plan, err := findPlan(s.db.WithContext(ctx), userID, planID, false)
	if err != nil {
		return nil, err
	}

	return &PlanRemaining{
		PlanID:     plan.ID,
		Amount:     plan.Amount,
		Spent:      plan.Spent,
		Remaining:  plan.Remaining(),
		Percentage: percentOf(plan.Spent, plan.Amount),
	}, nil
}
