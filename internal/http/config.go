package http

import (
	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/circulation"
	"github.com/openshelf/openshelf/internal/database"
	activitydb "github.com/openshelf/openshelf/internal/database/activity"
	booksdb "github.com/openshelf/openshelf/internal/database/books"
	circulationdb "github.com/openshelf/openshelf/internal/database/circulation"
	reservationsdb "github.com/openshelf/openshelf/internal/database/reservations"
	reviewsdb "github.com/openshelf/openshelf/internal/database/reviews"
	settingsdb "github.com/openshelf/openshelf/internal/database/settings"
	usersdb "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/reports"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database    *database.Database
	Circulation *circulation.Service
	ActivityLog *activity.Service
	Archiver    *activity.Archiver
	Reports     *reports.Generator

	// Repositories
	Books        *booksdb.Repository
	Users        *usersdb.Repository
	Loans        *circulationdb.Repository
	Reservations *reservationsdb.Repository
	Reviews      *reviewsdb.Repository
	Settings     *settingsdb.Repository
	Activity     *activitydb.Repository

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool

	// Application info
	Version string
}
