package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/models"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertDecimal fails the test unless got equals want numerically.
func AssertDecimal(t *testing.T, got decimal.Decimal, want, label string) {
	t.Helper()

	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected %s %s, got %s", label, want, got.String())
	}
}

// AssertSpentMatchesExpenses reloads the plan and checks that its spent
// column equals the sum of its expense rows, returning the reloaded plan.
func AssertSpentMatchesExpenses(t *testing.T, db *gorm.DB, planID string) *models.BudgetPlan {
	t.Helper()

	var plan models.BudgetPlan
	if err := db.First(&plan, "id = ?", planID).Error; err != nil {
		t.Fatalf("failed to reload plan %s: %v", planID, err)
	}

	var amounts []decimal.Decimal
	if err := db.Model(&models.Expense{}).Where("plan_id = ?", planID).Pluck("amount", &amounts).Error; err != nil {
		t.Fatalf("failed to load expense amounts: %v", err)
	}
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}

	if !plan.Spent.Equal(sum) {
		t.Errorf("plan spent %s does not match expense total %s", plan.Spent.String(), sum.String())
	}
	return &plan
}
