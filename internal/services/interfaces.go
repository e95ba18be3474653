package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/models"
	"budgetbuddy/internal/pagination"
)

// UserServicer defines the contract for identity-store operations.
type UserServicer interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, username, email *string) (*models.User, error)
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error
	UpdateCurrency(ctx context.Context, id, currency string) (*models.User, error)
	UpdatePicture(ctx context.Context, id, pictureURL string) (*models.User, error)
}

// CategoryServicer defines the contract for the per-user category registry.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, userID, name, description string) (*models.Category, error)
	GetUserCategories(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(ctx context.Context, userID, categoryID string) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, categoryID string, name, description *string) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error
}

// PlanInput holds the fields of a new budget plan.
type PlanInput struct {
	CategoryID string
	Amount     decimal.Decimal
	StartDate  models.Date
	EndDate    models.Date
}

// PlanUpdate holds a partial plan update. Nil fields are left unchanged.
type PlanUpdate struct {
	CategoryID *string
	Amount     *decimal.Decimal
	StartDate  *models.Date
	EndDate    *models.Date
}

// PlanFilter holds optional filters for listing plans.
type PlanFilter struct {
	CategoryID *string
	ActiveOn   *models.Date
}

// PlanRemaining reports how much of a plan's allocation is left.
type PlanRemaining struct {
	PlanID     string          `json:"plan_id"`
	Amount     decimal.Decimal `json:"amount"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
}

// BudgetPlanServicer defines the contract for the budget plan ledger.
type BudgetPlanServicer interface {
	CreatePlan(ctx context.Context, userID string, in PlanInput) (*models.BudgetPlan, error)
	GetUserPlans(ctx context.Context, userID string, page pagination.PageRequest, filter PlanFilter) (*pagination.PageResponse[models.BudgetPlan], error)
	GetPlanByID(ctx context.Context, userID, planID string) (*models.BudgetPlan, error)
	UpdatePlan(ctx context.Context, userID, planID string, in PlanUpdate) (*models.BudgetPlan, error)
	DeletePlan(ctx context.Context, userID, planID string) (int64, error)
	GetRemaining(ctx context.Context, userID, planID string) (*PlanRemaining, error)
}

// ExpenseInput holds the fields of a new expense. The category is always
// taken from the plan.
type ExpenseInput struct {
	PlanID      string
	Amount      decimal.Decimal
	Description string
	ExpenseDate *time.Time
}

// ExpenseUpdate holds a partial expense update. Nil fields are left unchanged.
type ExpenseUpdate struct {
	CategoryID  *string
	Amount      *decimal.Decimal
	Description *string
	ExpenseDate *time.Time
}

// ExpenseFilter holds optional filters for listing expenses.
type ExpenseFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	CategoryID *string
	PlanID     *string
}

// ExpenseServicer defines the contract for the expense journal. Every
// mutation adjusts the parent plan's spent total in the same transaction.
type ExpenseServicer interface {
	CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error)
	GetUserExpenses(ctx context.Context, userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetPlanExpenses(ctx context.Context, userID, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, in ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
	ExportExpenses(ctx context.Context, userID string, filter ExpenseFilter) ([]models.Expense, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
