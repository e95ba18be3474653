// Package router assembles the Gin engine and the /api route table.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"budgetbuddy/internal/cache"
	_ "budgetbuddy/internal/docs" // Import swagger docs
	"budgetbuddy/internal/handlers"
	"budgetbuddy/internal/middleware"
	"budgetbuddy/internal/services"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Users      services.UserServicer
	Categories services.CategoryServicer
	Plans      services.BudgetPlanServicer
	Expenses   services.ExpenseServicer
	Audit      services.AuditServicer
	Quotes     handlers.QuoteSource
	Tokens     *middleware.TokenManager
	Identities cache.IdentityCache
	Ping       handlers.Pinger
}

// New builds the engine with the standard middleware chain.
func New(d Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(d.Users, d.Audit, d.Tokens)
	categoryHandler := handlers.NewCategoryHandler(d.Categories, d.Audit)
	planHandler := handlers.NewBudgetPlanHandler(d.Plans, d.Audit)
	expenseHandler := handlers.NewExpenseHandler(d.Expenses, d.Audit)
	quoteHandler := handlers.NewQuoteHandler(d.Quotes)
	healthHandler := handlers.NewHealthHandler(d.Ping)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.GET("/health", healthHandler.Health)

	// Public routes
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	api.GET("/quotes/quote", quoteHandler.GetQuote)

	// Protected routes
	requireAuth := middleware.AuthMiddleware(d.Tokens, d.Users, d.Identities)

	profile := auth.Group("", requireAuth)
	profile.GET("/profile", authHandler.GetProfile)
	profile.PUT("/update_profile", authHandler.UpdateProfile)
	profile.PUT("/change_password", authHandler.ChangePassword)
	profile.PUT("/update_currency", authHandler.UpdateCurrency)
	profile.PUT("/update_picture", authHandler.UpdatePicture)

	protected := api.Group("", requireAuth)

	plans := protected.Group("/budget_plans")
	plans.POST("", planHandler.CreatePlan)
	plans.GET("", planHandler.GetPlans)
	plans.GET("/:id", planHandler.GetPlan)
	plans.PUT("/:id", planHandler.UpdatePlan)
	plans.DELETE("/:id", planHandler.DeletePlan)
	plans.GET("/:id/remaining", planHandler.GetRemaining)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/export", expenseHandler.ExportExpenses)
	expenses.GET("/plan/:plan_id", expenseHandler.GetPlanExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	return router
}
