package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	router.Use(cfg.AuthMiddleware.Handler())

	// Create controllers
	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Books, cfg.Reviews, cfg.ActivityLog)
	circulationController := NewCirculationController(cfg.Circulation)
	finesController := NewFinesController(cfg.Circulation)
	settingsController := NewSettingsController(cfg.Settings, cfg.ActivityLog)
	reservationsController := NewReservationsController(cfg.Reservations, cfg.ActivityLog)
	reviewsController := NewReviewsController(cfg.Reviews)
	activityController := NewActivityController(cfg.Activity, cfg.Archiver)
	reportsController := NewReportsController(cfg.Reports)
	usersController := NewUsersController(cfg.AuthService, cfg.SessionManager, cfg.Users, cfg.Loans, cfg.ActivityLog)
	dashboardController := NewDashboardController(cfg.Books, cfg.Users, cfg.Loans)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Auth endpoints (public paths handled by the auth middleware)
	router.POST("/setup", usersController.Setup)
	router.POST("/login", usersController.Login)
	router.POST("/register", usersController.Register)
	router.POST("/logout", usersController.Logout)

	// Profile endpoints
	router.GET("/api/profile", usersController.Profile)
	router.POST("/api/profile/password", usersController.ChangePassword)
	router.POST("/api/auth/token", usersController.GenerateToken)
	router.DELETE("/api/auth/token", usersController.RevokeToken)

	// Catalog: reads are open to any authenticated user
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/available", booksController.ListAvailableBooks)
	router.GET("/api/books/:id", booksController.GetBook)
	router.GET("/api/books/:id/reviews", reviewsController.ListReviewsForBook)
	router.GET("/api/categories", booksController.ListCategories)
	router.GET("/api/publishers", booksController.ListPublishers)

	// Catalog management
	manage := router.Group("/api", cfg.AuthMiddleware.RequirePermission(auth.OpManageCatalog))
	{
		manage.POST("/books", booksController.CreateBook)
		manage.PUT("/books/:id", booksController.UpdateBook)
		manage.DELETE("/books/:id", booksController.DeleteBook)
		manage.POST("/categories", booksController.CreateCategory)
		manage.POST("/publishers", booksController.CreatePublisher)
	}

	// Circulation
	router.POST("/api/loans", cfg.AuthMiddleware.RequirePermission(auth.OpIssueBook), circulationController.IssueBook)
	router.POST("/api/loans/:id/return", cfg.AuthMiddleware.RequirePermission(auth.OpReturnBook), circulationController.ReturnBook)
	router.GET("/api/loans", cfg.AuthMiddleware.RequirePermission(auth.OpViewCirculation), circulationController.ListLoans)
	router.GET("/api/loans/:id", cfg.AuthMiddleware.RequirePermission(auth.OpViewCirculation), circulationController.GetLoan)
	router.GET("/api/my/books", circulationController.MyBooks)

	// Fines
	router.GET("/api/fines", cfg.AuthMiddleware.RequirePermission(auth.OpViewCirculation), finesController.ListFines)
	router.POST("/api/fines/:id/pay", cfg.AuthMiddleware.RequirePermission(auth.OpMarkFinePaid), finesController.MarkPaid)
	router.POST("/api/fines/:id/waive", cfg.AuthMiddleware.RequirePermission(auth.OpWaiveFine), finesController.Waive)

	// Fine settings
	router.GET("/api/settings/fines", cfg.AuthMiddleware.RequirePermission(auth.OpViewCirculation), settingsController.GetFineSettings)
	router.PUT("/api/settings/fines", cfg.AuthMiddleware.RequirePermission(auth.OpEditFineSettings), settingsController.UpdateFineSettings)

	// Reservations
	router.POST("/api/reservations", reservationsController.PlaceReservation)
	router.GET("/api/my/reservations", reservationsController.MyReservations)
	router.DELETE("/api/reservations/:id", reservationsController.Cancel)
	router.GET("/api/reservations", cfg.AuthMiddleware.RequirePermission(auth.OpManageHolds), reservationsController.ListReservations)
	router.POST("/api/reservations/:id/ready", cfg.AuthMiddleware.RequirePermission(auth.OpManageHolds), reservationsController.MarkReady)
	router.POST("/api/reservations/:id/fulfill", cfg.AuthMiddleware.RequirePermission(auth.OpManageHolds), reservationsController.Fulfill)

	// Reviews
	router.POST("/api/books/:id/reviews", reviewsController.CreateReview)
	router.PUT("/api/reviews/:id", reviewsController.UpdateReview)
	router.DELETE("/api/reviews/:id", reviewsController.DeleteReview)

	// Activity log
	router.GET("/api/activity", cfg.AuthMiddleware.RequirePermission(auth.OpViewActivityLog), activityController.ListEntries)
	router.POST("/api/activity/export", cfg.AuthMiddleware.RequirePermission(auth.OpViewActivityLog), activityController.ExportArchive)

	// Reports
	reportsGroup := router.Group("/api/reports", cfg.AuthMiddleware.RequirePermission(auth.OpExportReports))
	{
		reportsGroup.GET("/issued-books.xlsx", reportsController.IssuedBooksExcel)
		reportsGroup.GET("/issued-books.pdf", reportsController.IssuedBooksPDF)
		reportsGroup.GET("/fines.xlsx", reportsController.FinesExcel)
		reportsGroup.GET("/fines.pdf", reportsController.FinesPDF)
		reportsGroup.GET("/catalog.xlsx", reportsController.CatalogExcel)
		reportsGroup.GET("/catalog.pdf", reportsController.CatalogPDF)
	}

	// User management
	admin := router.Group("/api/users", cfg.AuthMiddleware.RequirePermission(auth.OpManageUsers))
	{
		admin.GET("", usersController.ListUsers)
		admin.POST("", usersController.CreateUser)
		admin.GET("/:id", usersController.GetUser)
		admin.DELETE("/:id", usersController.DeleteUser)
	}

	// Dashboard
	router.GET("/api/dashboard", cfg.AuthMiddleware.RequirePermission(auth.OpViewCirculation), dashboardController.Stats)

	return router
}
