package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"budgetbuddy/internal/middleware"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/pagination"
	"budgetbuddy/internal/quote"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/validator"
)

const (
	testUserID     = "0190f2c4-0000-7000-8000-000000000001"
	testCategoryID = "0190f2c4-0000-7000-8000-0000000000c1"
	testPlanID     = "0190f2c4-0000-7000-8000-0000000000b1"
	testExpenseID  = "0190f2c4-0000-7000-8000-0000000000e1"
)

// --- mock services ---

type mockUserService struct {
	registerFn       func(username, email, password string) (*models.User, error)
	authenticateFn   func(email, password string) (*models.User, error)
	getUserByIDFn    func(id string) (*models.User, error)
	updateProfileFn  func(id string, username, email *string) (*models.User, error)
	changePasswordFn func(id, oldPassword, newPassword string) error
	updateCurrencyFn func(id, currency string) (*models.User, error)
	updatePictureFn  func(id, pictureURL string) (*models.User, error)
}

func (m *mockUserService) Register(_ context.Context, username, email, password string) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(username, email, password)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Username: username, Email: email}, nil
}

func (m *mockUserService) Authenticate(_ context.Context, email, password string) (*models.User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(email, password)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Email: email}, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) UpdateProfile(_ context.Context, id string, username, email *string) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(id, username, email)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) ChangePassword(_ context.Context, id, oldPassword, newPassword string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(id, oldPassword, newPassword)
	}
	return nil
}

func (m *mockUserService) UpdateCurrency(_ context.Context, id, currency string) (*models.User, error) {
	if m.updateCurrencyFn != nil {
		return m.updateCurrencyFn(id, currency)
	}
	return &models.User{Base: models.Base{ID: id}, Currency: currency}, nil
}

func (m *mockUserService) UpdatePicture(_ context.Context, id, pictureURL string) (*models.User, error) {
	if m.updatePictureFn != nil {
		return m.updatePictureFn(id, pictureURL)
	}
	return &models.User{Base: models.Base{ID: id}, ProfilePictureURL: pictureURL}, nil
}

type mockCategoryService struct {
	createFn func(userID, name, description string) (*models.Category, error)
	listFn   func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	getFn    func(userID, categoryID string) (*models.Category, error)
	updateFn func(userID, categoryID string, name, description *string) (*models.Category, error)
	deleteFn func(userID, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(_ context.Context, userID, name, description string) (*models.Category, error) {
	if m.createFn != nil {
		return m.createFn(userID, name, description)
	}
	return &models.Category{Base: models.Base{ID: testCategoryID}, UserID: userID, Name: name, Description: description}, nil
}

func (m *mockCategoryService) GetUserCategories(_ context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.listFn != nil {
		return m.listFn(userID, page)
	}
	resp := pagination.NewPageResponse[models.Category](nil, 1, pagination.DefaultPageSize, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(_ context.Context, userID, categoryID string) (*models.Category, error) {
	if m.getFn != nil {
		return m.getFn(userID, categoryID)
	}
	return &models.Category{Base: models.Base{ID: categoryID}, UserID: userID}, nil
}

func (m *mockCategoryService) UpdateCategory(_ context.Context, userID, categoryID string, name, description *string) (*models.Category, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, categoryID, name, description)
	}
	return &models.Category{Base: models.Base{ID: categoryID}, UserID: userID}, nil
}

func (m *mockCategoryService) DeleteCategory(_ context.Context, userID, categoryID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, categoryID)
	}
	return nil
}

type mockPlanService struct {
	createFn    func(userID string, in services.PlanInput) (*models.BudgetPlan, error)
	listFn      func(userID string, page pagination.PageRequest, filter services.PlanFilter) (*pagination.PageResponse[models.BudgetPlan], error)
	getFn       func(userID, planID string) (*models.BudgetPlan, error)
	updateFn    func(userID, planID string, in services.PlanUpdate) (*models.BudgetPlan, error)
	deleteFn    func(userID, planID string) (int64, error)
	remainingFn func(userID, planID string) (*services.PlanRemaining, error)
}

func (m *mockPlanService) CreatePlan(_ context.Context, userID string, in services.PlanInput) (*models.BudgetPlan, error) {
	if m.createFn != nil {
		return m.createFn(userID, in)
	}
	return &models.BudgetPlan{Base: models.Base{ID: testPlanID}, UserID: userID, CategoryID: in.CategoryID, Amount: in.Amount}, nil
}

func (m *mockPlanService) GetUserPlans(_ context.Context, userID string, page pagination.PageRequest, filter services.PlanFilter) (*pagination.PageResponse[models.BudgetPlan], error) {
	if m.listFn != nil {
		return m.listFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse[models.BudgetPlan](nil, 1, pagination.DefaultPageSize, 0)
	return &resp, nil
}

func (m *mockPlanService) GetPlanByID(_ context.Context, userID, planID string) (*models.BudgetPlan, error) {
	if m.getFn != nil {
		return m.getFn(userID, planID)
	}
	return &models.BudgetPlan{Base: models.Base{ID: planID}, UserID: userID}, nil
}

func (m *mockPlanService) UpdatePlan(_ context.Context, userID, planID string, in services.PlanUpdate) (*models.BudgetPlan, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, planID, in)
	}
	return &models.BudgetPlan{Base: models.Base{ID: planID}, UserID: userID}, nil
}

func (m *mockPlanService) DeletePlan(_ context.Context, userID, planID string) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(userID, planID)
	}
	return 0, nil
}

func (m *mockPlanService) GetRemaining(_ context.Context, userID, planID string) (*services.PlanRemaining, error) {
	if m.remainingFn != nil {
		return m.remainingFn(userID, planID)
	}
	return &services.PlanRemaining{PlanID: planID}, nil
}

type mockExpenseService struct {
	createFn     func(userID string, in services.ExpenseInput) (*models.Expense, error)
	listFn       func(userID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	listPlanFn   func(userID, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	getFn        func(userID, expenseID string) (*models.Expense, error)
	updateFn     func(userID, expenseID string, in services.ExpenseUpdate) (*models.Expense, error)
	deleteFn     func(userID, expenseID string) error
	exportFn     func(userID string, filter services.ExpenseFilter) ([]models.Expense, error)
}

func (m *mockExpenseService) CreateExpense(_ context.Context, userID string, in services.ExpenseInput) (*models.Expense, error) {
	if m.createFn != nil {
		return m.createFn(userID, in)
	}
	return &models.Expense{Base: models.Base{ID: testExpenseID}, UserID: userID, PlanID: in.PlanID, Amount: in.Amount}, nil
}

func (m *mockExpenseService) GetUserExpenses(_ context.Context, userID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	if m.listFn != nil {
		return m.listFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse[models.Expense](nil, 1, pagination.DefaultPageSize, 0)
	return &resp, nil
}

func (m *mockExpenseService) GetPlanExpenses(_ context.Context, userID, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	if m.listPlanFn != nil {
		return m.listPlanFn(userID, planID, page)
	}
	resp := pagination.NewPageResponse[models.Expense](nil, 1, pagination.DefaultPageSize, 0)
	return &resp, nil
}

func (m *mockExpenseService) GetExpenseByID(_ context.Context, userID, expenseID string) (*models.Expense, error) {
	if m.getFn != nil {
		return m.getFn(userID, expenseID)
	}
	return &models.Expense{Base: models.Base{ID: expenseID}, UserID: userID}, nil
}

func (m *mockExpenseService) UpdateExpense(_ context.Context, userID, expenseID string, in services.ExpenseUpdate) (*models.Expense, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, expenseID, in)
	}
	return &models.Expense{Base: models.Base{ID: expenseID}, UserID: userID}, nil
}

func (m *mockExpenseService) DeleteExpense(_ context.Context, userID, expenseID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, expenseID)
	}
	return nil
}

func (m *mockExpenseService) ExportExpenses(_ context.Context, userID string, filter services.ExpenseFilter) ([]models.Expense, error) {
	if m.exportFn != nil {
		return m.exportFn(userID, filter)
	}
	return nil, nil
}

type auditEntry struct {
	userID, action, resourceType, resourceID string
	changes                                  map[string]any
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, changes map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{userID, action, resourceType, resourceID, changes})
}

type staticQuotes struct {
	quote quote.Quote
}

func (s staticQuotes) Quote(context.Context) quote.Quote { return s.quote }

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func newTestTokens(t *testing.T) *middleware.TokenManager {
	t.Helper()
	tokens, err := middleware.NewTokenManager("handler-test-secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}
	return tokens
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d\nbody: %s", want, rec.Code, rec.Body.String())
	}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()
	body := parseJSON(t, rec)
	code, ok := body["error"].(string)
	if !ok {
		t.Fatalf("expected error code in response, got: %s", rec.Body.String())
	}
	if code != expectedCode {
		t.Errorf("expected error code %q, got %q", expectedCode, code)
	}
}

func assertMessage(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if got, _ := parseJSON(t, rec)["message"].(string); got != want {
		t.Errorf("expected message %q, got %q", want, got)
	}
}
