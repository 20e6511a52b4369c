package main

import (
	"shop-service/internal/handler"
	"shop-service/internal/middleware"
	"shop-service/pkg/config"
	"shop-service/pkg/database"
	"shop-service/pkg/jwtutil"
	"shop-service/pkg/logger"
	"shop-service/prometheus"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// requestValidator plugs go-playground validation into echo's Bind/Validate
// cycle.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting shop service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize Echo framework
	e := echo.New()
	e.Validator = &requestValidator{validate: validator.New()}

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(middleware.MetricsMiddleware)

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/api/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.POST("/refresh", handler.RefreshToken)

	// All remaining API routes require a valid token
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	api.POST("/auth/logout", handler.Logout)
	api.POST("/auth/send-verification", handler.SendVerification)
	api.POST("/auth/verify-email", handler.VerifyEmail)

	// Company profile and user management
	company := api.Group("/company")
	company.GET("", handler.GetMyCompany)
	company.PUT("", handler.UpdateMyCompany)
	company.GET("/users", handler.ListCompanyUsers)
	company.GET("/users/search", handler.SearchCompanyUsers)
	company.POST("/users/invite", handler.InviteCompanyUser)
	company.PUT("/users/:id/role", handler.UpdateCompanyUserRole)
	company.DELETE("/users/:id", handler.RemoveCompanyUser)
	company.POST("/users/:id/activate", handler.ActivateCompanyUser)
	company.POST("/users/:id/deactivate", handler.DeactivateCompanyUser)
	company.GET("/users/pending", handler.ListUnassignedUsers)
	company.POST("/users/:id/link", handler.LinkCompanyUser)

	// Branches
	branches := api.Group("/branches")
	branches.GET("", handler.ListBranches)
	branches.POST("", handler.CreateBranch)
	branches.PUT("/:id", handler.UpdateBranch)
	branches.DELETE("/:id", handler.DeleteBranch)

	// Platform administration
	admin := api.Group("/admin")
	admin.GET("/companies", handler.ListAllCompanies)
	admin.POST("/companies", handler.CreateCompany)
	admin.GET("/companies/pending", handler.ListPendingCompanies)
	admin.POST("/companies/:id/approve", handler.ApproveCompany)
	admin.POST("/companies/:id/reject", handler.RejectCompany)
	admin.POST("/companies/:id/suspend", handler.SuspendCompany)
	admin.POST("/assign-user", handler.AssignUserToCompany)

	// Catalog
	products := api.Group("/products")
	products.GET("", handler.ListProducts)
	products.POST("", handler.CreateProduct)
	products.GET("/low-stock", handler.ListLowStockProducts)
	products.GET("/:id", handler.GetProduct)
	products.PUT("/:id", handler.UpdateProduct)
	products.DELETE("/:id", handler.DeleteProduct)
	products.GET("/:id/history", handler.ListProductHistory)

	categories := api.Group("/categories")
	categories.GET("", handler.ListCategories)
	categories.POST("", handler.CreateCategory)
	categories.GET("/:id", handler.GetCategory)
	categories.PUT("/:id", handler.UpdateCategory)
	categories.DELETE("/:id", handler.DeleteCategory)

	// Customers and suppliers
	customers := api.Group("/customers")
	customers.GET("", handler.ListCustomers)
	customers.POST("", handler.CreateCustomer)
	customers.GET("/search", handler.SearchCustomers)
	customers.GET("/top", handler.ListTopCustomers)
	customers.GET("/:id", handler.GetCustomer)
	customers.PUT("/:id", handler.UpdateCustomer)
	customers.DELETE("/:id", handler.DeleteCustomer)

	suppliers := api.Group("/suppliers")
	suppliers.GET("", handler.ListSuppliers)
	suppliers.POST("", handler.CreateSupplier)
	suppliers.GET("/search", handler.SearchSuppliers)
	suppliers.GET("/top", handler.ListTopSuppliers)
	suppliers.GET("/:id", handler.GetSupplier)
	suppliers.PUT("/:id", handler.UpdateSupplier)
	suppliers.DELETE("/:id", handler.DeleteSupplier)

	// Sales
	sales := api.Group("/sales")
	sales.GET("", handler.ListSales)
	sales.POST("", handler.CreateSale)
	sales.GET("/today", handler.ListTodaySales)
	sales.GET("/:id", handler.GetSale)
	sales.PUT("/:id", handler.UpdateSale)
	sales.DELETE("/:id", handler.DeleteSale)

	// Inventory
	inventory := api.Group("/inventory")
	inventory.GET("/summary", handler.GetInventorySummary)
	inventory.GET("/alerts", handler.GetStockAlerts)
	inventory.GET("/by-category", handler.GetCategoryInventory)
	inventory.GET("/restock", handler.GetRestockList)
	inventory.GET("/turnover", handler.GetInventoryTurnover)

	// Reports
	reports := api.Group("/reports")
	reports.GET("/profit-loss", handler.GetProfitLossReport)
	reports.GET("/daily-sales", handler.GetDailySalesReport)
	reports.GET("/daily-sales/export", handler.ExportDailySalesReport)
	reports.GET("/top-products", handler.GetTopProducts)

	// Invitations
	invitations := api.Group("/invitations")
	invitations.POST("", handler.CreateInvitation)
	invitations.GET("/my", handler.ListMyInvitations)
	invitations.POST("/claim", handler.ClaimInvitation)
	invitations.POST("/:id/accept", handler.AcceptInvitation)
	invitations.POST("/:id/reject", handler.RejectInvitation)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
