package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/uuid"
)

// BudgetPlanHandler handles budget plan requests.
type BudgetPlanHandler struct {
	planService  services.BudgetPlanServicer
	auditService services.AuditServicer
}

// NewBudgetPlanHandler creates a new BudgetPlanHandler.
func NewBudgetPlanHandler(planService services.BudgetPlanServicer, auditService services.AuditServicer) *BudgetPlanHandler {
	return &BudgetPlanHandler{planService: planService, auditService: auditService}
}

// CreatePlanRequest represents the request payload for creating a plan.
type CreatePlanRequest struct {
	CategoryID string          `json:"category_id" binding:"required,uuid"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"string" example:"500.00" binding:"required,gt=0"`
	StartDate  models.Date     `json:"start_date" swaggertype:"string" example:"2024-01-01" binding:"required"`
	EndDate    models.Date     `json:"end_date" swaggertype:"string" example:"2024-01-31" binding:"required,gtefield=StartDate"`
}

// UpdatePlanRequest represents a partial plan update. The date order is
// checked against the stored values by the service.
type UpdatePlanRequest struct {
	CategoryID *string          `json:"category_id" binding:"omitempty,uuid"`
	Amount     *decimal.Decimal `json:"amount" swaggertype:"string" binding:"omitempty,gt=0"`
	StartDate  *models.Date     `json:"start_date" swaggertype:"string"`
	EndDate    *models.Date     `json:"end_date" swaggertype:"string"`
}

// PlanResponse wraps a plan with a status message.
type PlanResponse struct {
	Message string             `json:"message,omitempty" example:"plan_created"`
	Plan    *models.BudgetPlan `json:"plan"`
}

// DeletePlanResponse reports how many expenses went with the plan.
type DeletePlanResponse struct {
	Message         string `json:"message" example:"plan_deleted"`
	DeletedExpenses int64  `json:"deleted_expenses" example:"3"`
}

// CreatePlan handles the creation of a new budget plan.
// @Summary     Create a budget plan
// @Description Allocate an amount to a category over a date range
// @Tags        budget_plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePlanRequest true "Plan details"
// @Success     201 {object} PlanResponse "Plan created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Category not owned"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget_plans [post]
func (h *BudgetPlanHandler) CreatePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePlanRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), userID, services.PlanInput{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, PlanResponse{Message: "plan_created", Plan: plan})
}

// GetPlans handles listing plans for the authenticated user.
// @Summary     List budget plans
// @Description Get a paginated list of the user's plans, newest first
// @Tags        budget_plans
// @Produce     json
// @Security    BearerAuth
// @Param       category_id query string false "Filter by category"
// @Param       active_on   query string false "Only plans whose range covers this date (YYYY-MM-DD)"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.BudgetPlan] "Paginated plans"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget_plans [get]
func (h *BudgetPlanHandler) GetPlans(c *gin.Context) {
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

	var filter services.PlanFilter
	if v := c.Query("category_id"); v != "" {
		if !uuid.IsValid(v) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category_id"))
			return
		}
		filter.CategoryID = &v
	}
	if v := c.Query("active_on"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "active_on must be YYYY-MM-DD"))
			return
		}
		filter.ActiveOn = &d
	}

	result, err := h.planService.GetUserPlans(c.Request.Context(), userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPlan returns one plan.
// @Summary     Get a budget plan
// @Tags        budget_plans
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Success     200 {object} PlanResponse
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /budget_plans/{id} [get]
func (h *BudgetPlanHandler) GetPlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	plan, err := h.planService.GetPlanByID(c.Request.Context(), userID, planID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, PlanResponse{Plan: plan})
}

// UpdatePlan changes only the supplied fields.
// @Summary     Update a budget plan
// @Tags        budget_plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Plan ID"
// @Param       request body UpdatePlanRequest true "Fields to change"
// @Success     200 {object} PlanResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Category not owned"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /budget_plans/{id} [put]
func (h *BudgetPlanHandler) UpdatePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePlanRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), userID, planID, services.PlanUpdate{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, PlanResponse{Message: "plan_updated", Plan: plan})
}

// DeletePlan removes a plan and all of its expenses.
// @Summary     Delete a budget plan
// @Tags        budget_plans
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Success     200 {object} DeletePlanResponse
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /budget_plans/{id} [delete]
func (h *BudgetPlanHandler) DeletePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.planService.DeletePlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeletePlan, "budget_plan", planID, c.ClientIP(),
		map[string]any{"deleted_expenses": deleted})

	c.JSON(http.StatusOK, DeletePlanResponse{Message: "plan_deleted", DeletedExpenses: deleted})
}

// GetRemaining reports the allocation left on a plan.
// @Summary     Remaining amount
// @Description Amount minus spent; negative when overspent
// @Tags        budget_plans
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Success     200 {object} services.PlanRemaining
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /budget_plans/{id}/remaining [get]
func (h *BudgetPlanHandler) GetRemaining(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	remaining, err := h.planService.GetRemaining(c.Request.Context(), userID, planID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, remaining)
}
