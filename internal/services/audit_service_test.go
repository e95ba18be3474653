package services

import (
	"testing"

	"budgetbuddy/internal/models"
	"budgetbuddy/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, AuditDeletePlan, "budget_plan", "plan-1", "10.0.0.1", map[string]any{"deleted_expenses": 3})
	svc.Log(user.ID, AuditLogin, "user", user.ID, "10.0.0.1", nil)

	var entries []models.AuditLog
	if err := db.Order("created_at ASC").Find(&entries).Error; err != nil {
		t.Fatalf("failed to load audit logs: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Changes != `{"deleted_expenses":3}` {
		t.Errorf("unexpected changes %q", entries[0].Changes)
	}
	if entries[1].Changes != "" {
		t.Errorf("expected empty changes, got %q", entries[1].Changes)
	}
}

func TestAuditLogNeverPanicsOnStoreFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAuditService(db)
	testutil.TeardownTestDB(t, db)

	svc.Log("user", AuditLogin, "user", "user", "", nil)
}
