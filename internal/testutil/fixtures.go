package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"budgetbuddy/internal/models"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique username and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWith(t, db, fmt.Sprintf("user%d", n), fmt.Sprintf("user%d@test.com", n))
}

// CreateTestUserWith creates a user with the given username and email.
func CreateTestUserWith(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Currency: models.DefaultCurrency,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a uniquely named category.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, userID, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryNamed creates a category with the given name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, userID, name string) *models.Category {
	t.Helper()

	category := &models.Category{UserID: userID, Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestPlan creates a plan for January 2024 with the given amount and zero spent.
func CreateTestPlan(t *testing.T, db *gorm.DB, userID, categoryID, amount string) *models.BudgetPlan {
	t.Helper()

	plan := &models.BudgetPlan{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
		Spent:      decimal.Zero,
		StartDate:  models.NewDate(2024, time.January, 1),
		EndDate:    models.NewDate(2024, time.January, 31),
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("failed to create test plan: %v", err)
	}
	return plan
}

// CreateTestExpense inserts an expense row and bumps the plan's spent the
// same way the expense service does.
func CreateTestExpense(t *testing.T, db *gorm.DB, plan *models.BudgetPlan, amount string) *models.Expense {
	t.Helper()

	amt := decimal.RequireFromString(amount)
	expense := &models.Expense{
		UserID:      plan.UserID,
		PlanID:      plan.ID,
		CategoryID:  plan.CategoryID,
		Amount:      amt,
		Description: fmt.Sprintf("Test Expense %d", nextID()),
		ExpenseDate: time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC),
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(expense).Error; err != nil {
			return err
		}
		return tx.Model(&models.BudgetPlan{}).Where("id = ?", plan.ID).
			UpdateColumn("spent", gorm.Expr("spent + ?", amt)).Error
	})
	if err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
