// Package auth provides authentication and authorization for the application.
//
// Authentication supports session cookies for browser clients and Bearer
// tokens for API clients. Authorization is role-based: every privileged
// operation is listed in one policy table mapping it to the roles allowed
// to perform it.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_TOKEN_EXPIRY=720h              # API token expiry (30 days default)
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//
// # Usage
//
//	authService := auth.NewService(db.DB, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//	staff.Use(authMiddleware.RequirePermission(auth.OpIssueBook))
//
// Extract the actor in handlers:
//
//	user := auth.GetUser(c)
package auth
