package testutil_test

import (
	"testing"

	"budgetbuddy/internal/errors"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"users", "categories", "budget_plans", "expenses", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	db1 := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db1)
	db2 := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db2)

	testutil.CreateTestUser(t, db1)

	var count int64
	db2.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected second database to be empty, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}
	if user.Currency != models.DefaultCurrency {
		t.Errorf("expected currency %s, got %s", models.DefaultCurrency, user.Currency)
	}

	category := testutil.CreateTestCategory(t, db, user.ID)
	plan := testutil.CreateTestPlan(t, db, user.ID, category.ID, "500")
	testutil.CreateTestExpense(t, db, plan, "50")
	testutil.CreateTestExpense(t, db, plan, "30.25")

	reloaded := testutil.AssertSpentMatchesExpenses(t, db, plan.ID)
	testutil.AssertDecimal(t, reloaded.Spent, "80.25", "spent")
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrPlanNotFound, "PLAN_NOT_FOUND")
	testutil.AssertAppError(t, errors.Wrap(errors.ErrInternalServer, nil), "INTERNAL_ERROR")
}
