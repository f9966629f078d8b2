package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/circulation"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	activitydb "github.com/openshelf/openshelf/internal/database/activity"
	booksdb "github.com/openshelf/openshelf/internal/database/books"
	circulationdb "github.com/openshelf/openshelf/internal/database/circulation"
	reservationsdb "github.com/openshelf/openshelf/internal/database/reservations"
	reviewsdb "github.com/openshelf/openshelf/internal/database/reviews"
	settingsdb "github.com/openshelf/openshelf/internal/database/settings"
	usersdb "github.com/openshelf/openshelf/internal/database/users"
	http_controllers "github.com/openshelf/openshelf/internal/http"
	"github.com/openshelf/openshelf/internal/reports"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting OpenShelf v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	booksRepo := booksdb.NewRepository(db.DB)
	usersRepo := usersdb.NewRepository(db.DB)
	loansRepo := circulationdb.NewRepository(db.DB)
	reservationsRepo := reservationsdb.NewRepository(db.DB)
	reviewsRepo := reviewsdb.NewRepository(db.DB)
	settingsRepo := settingsdb.NewRepository(db.DB)
	activityRepo := activitydb.NewRepository(db.DB)

	// Services
	activityLog := activity.NewService(activityRepo)
	archiver := activity.NewArchiver(cfg.Activity.ArchiveDir)
	circulationService := circulation.NewService(loansRepo, usersRepo, settingsRepo, activityLog)
	reportsGenerator := reports.NewGenerator(booksRepo, loansRepo, cfg.Reports.LibraryName)

	// Authentication
	authService := auth.NewService(db.DB, cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(authService, sessionManager, cfg.Auth)

	// Generate or use configured CSRF secret
	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	hasUsers, _ := authService.HasUsers()
	if !hasUsers {
		log.Printf("No users found. POST to /setup to create an administrator account.")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Circulation:    circulationService,
		ActivityLog:    activityLog,
		Archiver:       archiver,
		Reports:        reportsGenerator,
		Books:          booksRepo,
		Users:          usersRepo,
		Loans:          loansRepo,
		Reservations:   reservationsRepo,
		Reviews:        reviewsRepo,
		Settings:       settingsRepo,
		Activity:       activityRepo,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, nil)
}
