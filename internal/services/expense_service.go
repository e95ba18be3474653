package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/events"
	"budgetbuddy/internal/logger"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/pagination"
)

// expenseService handles the expense journal. Every mutation runs in one
// transaction that locks the parent plan, changes the expense row and
// adjusts the plan's spent column with an atomic SQL expression.
type expenseService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

// NewExpenseService creates a new ExpenseServicer. publisher may be nil.
func NewExpenseService(db *gorm.DB, publisher events.Publisher) ExpenseServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &expenseService{db: db, publisher: publisher, now: time.Now}
}

// adjustSpent adds delta to the plan's spent column in place.
func adjustSpent(tx *gorm.DB, planID string, delta decimal.Decimal) error {
	res := tx.Model(&models.BudgetPlan{}).
		Where("id = ?", planID).
		UpdateColumn("spent", gorm.Expr("spent + ?", delta))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected != 1 {
		return apperrors.Wrap(apperrors.ErrInternalServer, errors.New("plan row vanished during spent adjustment"))
	}
	return nil
}

// CreateExpense records an expense against a plan the user owns and adds
// its amount to the plan's spent total. The expense inherits the plan's
// category.
func (s *expenseService) CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error) {
	if err := validateAmount("amount", in.Amount); err != nil {
		return nil, err
	}

	date := s.now().UTC()
	if in.ExpenseDate != nil && !in.ExpenseDate.IsZero() {
		date = in.ExpenseDate.UTC()
	}

	var (
		expense *models.Expense
		plan    *models.BudgetPlan
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		plan, err = findPlan(tx, userID, in.PlanID, true)
		if err != nil {
			if errors.Is(err, apperrors.ErrPlanNotFound) {
				return apperrors.ErrPlanForbidden
			}
			return err
		}

		expense = &models.Expense{
			UserID:      userID,
			PlanID:      plan.ID,
			CategoryID:  plan.CategoryID,
			Amount:      in.Amount,
			Description: strings.TrimSpace(in.Description),
			ExpenseDate: date,
		}
		if err := tx.Create(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := adjustSpent(tx, plan.ID, in.Amount); err != nil {
			return err
		}
		plan, err = findPlan(tx, userID, plan.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ExpenseCreated, expense.ID, in.Amount, plan)
	return expense, nil
}

// GetUserExpenses returns the user's expenses, newest first, with their category.
func (s *expenseService) GetUserExpenses(ctx context.Context, userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	q := s.db.WithContext(ctx).Model(&models.Expense{}).Where("user_id = ?", userID)
	q = applyExpenseFilters(q, filter).Order("expense_date DESC").Order("id DESC")

	result, err := pagination.Fetch[models.Expense](q, page, "Category")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetPlanExpenses returns the expenses of one plan owned by the user.
func (s *expenseService) GetPlanExpenses(ctx context.Context, userID, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	db := s.db.WithContext(ctx)
	if _, err := findPlan(db, userID, planID, false); err != nil {
		return nil, err
	}

	q := db.Model(&models.Expense{}).
		Where("user_id = ? AND plan_id = ?", userID, planID).
		Order("expense_date DESC").Order("id DESC")

	result, err := pagination.Fetch[models.Expense](q, page, "Category")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func applyExpenseFilters(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("expense_date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("expense_date <= ?", *f.ToDate)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.PlanID != nil {
		q = q.Where("plan_id = ?", *f.PlanID)
	}
	return q
}

// GetExpenseByID returns one expense owned by the user.
func (s *expenseService) GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	return findExpense(s.db.WithContext(ctx).Preload("Category"), userID, expenseID)
}

func findExpense(db *gorm.DB, userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense applies the supplied fields. The old amount is always
// subtracted from the plan and the effective new amount added back, so an
// update from A to B moves spent by exactly B - A.
func (s *expenseService) UpdateExpense(ctx context.Context, userID, expenseID string, in ExpenseUpdate) (*models.Expense, error) {
	if in.Amount != nil {
		if err := validateAmount("amount", *in.Amount); err != nil {
			return nil, err
		}
	}

	var (
		expense   *models.Expense
		plan      *models.BudgetPlan
		newAmount decimal.Decimal
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		expense, err = findExpense(tx, userID, expenseID)
		if err != nil {
			return err
		}
		if plan, err = findPlan(tx, userID, expense.PlanID, true); err != nil {
			return err
		}

		if err := adjustSpent(tx, plan.ID, expense.Amount.Neg()); err != nil {
			return err
		}

		updates := make(map[string]any)
		if in.CategoryID != nil && *in.CategoryID != expense.CategoryID {
			if _, err := requireOwnedCategory(tx, userID, *in.CategoryID); err != nil {
				return err
			}
			updates["category_id"] = *in.CategoryID
		}
		if in.Description != nil {
			updates["description"] = strings.TrimSpace(*in.Description)
		}
		if in.ExpenseDate != nil && !in.ExpenseDate.IsZero() {
			updates["expense_date"] = in.ExpenseDate.UTC()
		}
		newAmount = expense.Amount
		if in.Amount != nil {
			newAmount = *in.Amount
			updates["amount"] = newAmount
		}

		if len(updates) > 0 {
			if err := tx.Model(expense).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := adjustSpent(tx, plan.ID, newAmount); err != nil {
			return err
		}
		plan, err = findPlan(tx, userID, plan.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ExpenseUpdated, expense.ID, newAmount, plan)
	return s.GetExpenseByID(ctx, userID, expenseID)
}

// DeleteExpense removes an expense and subtracts its amount from the plan.
func (s *expenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	var (
		expense *models.Expense
		plan    *models.BudgetPlan
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		expense, err = findExpense(tx, userID, expenseID)
		if err != nil {
			return err
		}
		if plan, err = findPlan(tx, userID, expense.PlanID, true); err != nil {
			return err
		}

		if err := adjustSpent(tx, plan.ID, expense.Amount.Neg()); err != nil {
			return err
		}
		if err := tx.Delete(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		plan, err = findPlan(tx, userID, plan.ID, false)
		return err
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.ExpenseDeleted, expense.ID, expense.Amount, plan)
	return nil
}

// ExportExpenses returns every matching expense, oldest first, for export.
func (s *expenseService) ExportExpenses(ctx context.Context, userID string, filter ExpenseFilter) ([]models.Expense, error) {
	q := s.db.WithContext(ctx).Preload("Category").Where("user_id = ?", userID)
	q = applyExpenseFilters(q, filter).Order("expense_date ASC").Order("id ASC")

	var expenses []models.Expense
	if err := q.Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// publish emits the mutation event, plus plan.overspent when spending now
// exceeds the allocation. Failures are logged and never returned.
func (s *expenseService) publish(ctx context.Context, eventType, expenseID string, amount decimal.Decimal, plan *models.BudgetPlan) {
	event := events.BudgetEvent{
		Type:       eventType,
		UserID:     plan.UserID,
		PlanID:     plan.ID,
		ExpenseID:  expenseID,
		Amount:     amount,
		Spent:      plan.Spent,
		Remaining:  plan.Remaining(),
		OccurredAt: s.now().UTC(),
	}

	toSend := []events.BudgetEvent{event}
	if eventType != events.ExpenseDeleted && plan.Overspent() {
		overspent := event
		overspent.Type = events.PlanOverspent
		toSend = append(toSend, overspent)
	}

	for _, e := range toSend {
		if err := s.publisher.Publish(ctx, e); err != nil {
			logger.Named("expenses").Warnw("failed to publish budget event",
				"error", err,
				"type", e.Type,
				"plan_id", e.PlanID,
			)
		}
	}
}
