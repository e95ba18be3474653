package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/export"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/uuid"
)

// ExpenseHandler handles expense requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// CreateExpenseRequest represents the request payload for recording an
// expense. The category always comes from the plan.
type CreateExpenseRequest struct {
	PlanID      string          `json:"plan_id" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"50.00" binding:"required,gt=0"`
	Description string          `json:"description" binding:"max=255"`
	ExpenseDate *time.Time      `json:"expense_date"`
}

// UpdateExpenseRequest represents a partial expense update.
type UpdateExpenseRequest struct {
	CategoryID  *string          `json:"category_id" binding:"omitempty,uuid"`
	Amount      *decimal.Decimal `json:"amount" swaggertype:"string" binding:"omitempty,gt=0"`
	Description *string          `json:"description" binding:"omitempty,max=255"`
	ExpenseDate *time.Time       `json:"expense_date"`
}

// ExpenseResponse wraps an expense with a status message.
type ExpenseResponse struct {
	Message string          `json:"message,omitempty" example:"expense_added"`
	Expense *models.Expense `json:"expense"`
}

// CreateExpense records an expense and adds it to the plan's spent total.
// @Summary     Add an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense details"
// @Success     201 {object} ExpenseResponse "Expense added"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Plan not owned"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), userID, services.ExpenseInput{
		PlanID:      req.PlanID,
		Amount:      req.Amount,
		Description: req.Description,
		ExpenseDate: req.ExpenseDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ExpenseResponse{Message: "expense_added", Expense: expense})
}

// parseExpenseFilter reads the optional from, to, category_id and plan_id
// query parameters. Dates are YYYY-MM-DD; to is inclusive.
func parseExpenseFilter(c *gin.Context) (services.ExpenseFilter, error) {
	var filter services.ExpenseFilter
	if v := c.Query("from"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "from must be YYYY-MM-DD")
		}
		from := d.Time()
		filter.FromDate = &from
	}
	if v := c.Query("to"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must be YYYY-MM-DD")
		}
		to := d.Time().Add(24*time.Hour - time.Nanosecond)
		filter.ToDate = &to
	}
	for param, dst := range map[string]**string{"category_id": &filter.CategoryID, "plan_id": &filter.PlanID} {
		if v := c.Query(param); v != "" {
			if !uuid.IsValid(v) {
				return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
			}
			*dst = &v
		}
	}
	return filter, nil
}

// GetExpenses lists the user's expenses, newest first.
// @Summary     List expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       from        query string false "Earliest expense date (YYYY-MM-DD)"
// @Param       to          query string false "Latest expense date, inclusive (YYYY-MM-DD)"
// @Param       category_id query string false "Filter by category"
// @Param       plan_id     query string false "Filter by plan"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter, err := parseExpenseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.expenseService.GetUserExpenses(c.Request.Context(), userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPlanExpenses lists the expenses of one plan.
// @Summary     List a plan's expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       plan_id   path  string true  "Plan ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /expenses/plan/{plan_id} [get]
func (h *ExpenseHandler) GetPlanExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "plan_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.expenseService.GetPlanExpenses(c.Request.Context(), userID, planID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpense returns one expense.
// @Summary     Get an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} ExpenseResponse
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExpenseResponse{Expense: expense})
}

// UpdateExpense changes the supplied fields and re-applies the amount to
// the plan.
// @Summary     Update an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to change"
// @Success     200 {object} ExpenseResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Category not owned"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), userID, expenseID, services.ExpenseUpdate{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
		ExpenseDate: req.ExpenseDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExpenseResponse{Message: "expense_updated", Expense: expense})
}

// DeleteExpense removes an expense and subtracts it from the plan.
// @Summary     Delete an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteExpense, "expense", expenseID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "expense_deleted"})
}

// ExportExpenses downloads the user's expenses.
// @Summary     Export expenses
// @Description Download matching expenses as CSV or XLSX
// @Tags        expenses
// @Produce     text/csv
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       format      query string false "csv (default) or xlsx"
// @Param       from        query string false "Earliest expense date (YYYY-MM-DD)"
// @Param       to          query string false "Latest expense date, inclusive (YYYY-MM-DD)"
// @Param       category_id query string false "Filter by category"
// @Param       plan_id     query string false "Filter by plan"
// @Success     200 {file} file
// @Failure     400 {object} ErrorResponse "Unknown format"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/export [get]
func (h *ExpenseHandler) ExportExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	filter, err := parseExpenseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.ExportExpenses(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, expenses); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+format.Filename(time.Now())+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
