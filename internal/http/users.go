package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/auth"
	circulationdb "github.com/openshelf/openshelf/internal/database/circulation"
	usersdb "github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

type UsersController struct {
	auth        *auth.Service
	sessions    *auth.SessionManager
	users       *usersdb.Repository
	circulation *circulationdb.Repository
	activityLog *activity.Service
}

func NewUsersController(authService *auth.Service, sessions *auth.SessionManager, users *usersdb.Repository, circulation *circulationdb.Repository, activityLog *activity.Service) *UsersController {
	return &UsersController{
		auth:        authService,
		sessions:    sessions,
		users:       users,
		circulation: circulation,
		activityLog: activityLog,
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type newUserRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// userView strips sensitive fields from responses.
type userView struct {
	ID           uint              `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	FirstName    string            `json:"first_name,omitempty"`
	LastName     string            `json:"last_name,omitempty"`
	Role         entities.UserRole `json:"role"`
	MembershipID string            `json:"membership_id"`
	Phone        string            `json:"phone,omitempty"`
	Address      string            `json:"address,omitempty"`
}

func viewOf(user *entities.User) userView {
	return userView{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Role:         user.Role,
		MembershipID: user.MembershipID,
		Phone:        user.Phone,
		Address:      user.Address,
	}
}

// Setup creates the first admin account. It only works on an empty user table.
func (controller *UsersController) Setup(c *gin.Context) {
	hasUsers, err := controller.auth.HasUsers()
	if err != nil {
		respondInternalError(c, err, "setup")
		return
	}
	if hasUsers {
		respondConflict(c, "setup has already been completed")
		return
	}

	var req newUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username, email and password are required")
		return
	}

	user, err := controller.auth.CreateUser(auth.NewUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      entities.UserRoleAdmin,
	})
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	controller.activityLog.Record(user, entities.ActivityUserAdded,
		"Initial admin account "+user.Username+" created", c.ClientIP())
	respondCreated(c, viewOf(user))
}

func (controller *UsersController) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username and password are required")
		return
	}

	user, err := controller.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountLocked) {
			respondError(c, http.StatusTooManyRequests, err.Error())
			return
		}
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := controller.sessions.CreateSession(c.Request, user); err != nil {
		respondInternalError(c, err, "login")
		return
	}

	controller.activityLog.Record(user, entities.ActivityUserLogin,
		user.Username+" logged in", c.ClientIP())
	c.IndentedJSON(http.StatusOK, gin.H{"user": viewOf(user)})
}

func (controller *UsersController) Logout(c *gin.Context) {
	user := auth.GetUser(c)
	if err := controller.sessions.DestroySession(c.Request); err != nil {
		respondInternalError(c, err, "logout")
		return
	}
	if user != nil {
		controller.activityLog.Record(user, entities.ActivityUserLogout,
			user.Username+" logged out", c.ClientIP())
	}
	respondSuccess(c, "logged out")
}

// Register self-registers a student account.
func (controller *UsersController) Register(c *gin.Context) {
	var req newUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username, email and password are required")
		return
	}

	user, err := controller.auth.CreateUser(auth.NewUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      entities.UserRoleStudent,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			respondConflict(c, err.Error())
			return
		}
		respondBadRequest(c, err.Error())
		return
	}

	controller.activityLog.Record(user, entities.ActivityUserAdded,
		"Student account "+user.Username+" registered", c.ClientIP())
	respondCreated(c, viewOf(user))
}

// CreateUser lets an admin create an account with any role.
func (controller *UsersController) CreateUser(c *gin.Context) {
	var req newUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username, email and password are required")
		return
	}

	role := entities.UserRole(req.Role)
	if role == "" {
		role = entities.UserRoleStudent
	}

	user, err := controller.auth.CreateUser(auth.NewUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			respondConflict(c, err.Error())
			return
		}
		respondBadRequest(c, err.Error())
		return
	}

	controller.activityLog.Record(auth.GetUser(c), entities.ActivityUserAdded,
		"Account "+user.Username+" ("+string(user.Role)+") created", c.ClientIP())
	respondCreated(c, viewOf(user))
}

func (controller *UsersController) ListUsers(c *gin.Context) {
	role := entities.UserRole(c.Query("role"))
	users, err := controller.users.ListUsers(role)
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}

	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, viewOf(&users[i]))
	}
	c.IndentedJSON(http.StatusOK, gin.H{"users": views, "count": len(views)})
}

func (controller *UsersController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := controller.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, usersdb.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get user")
		return
	}
	c.IndentedJSON(http.StatusOK, viewOf(user))
}

func (controller *UsersController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor := auth.GetUser(c)
	if actor != nil && actor.ID == id {
		respondBadRequest(c, "cannot delete your own account")
		return
	}

	user, err := controller.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, usersdb.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "delete user")
		return
	}

	if err := controller.users.DeleteUser(id); err != nil {
		if errors.Is(err, usersdb.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "delete user")
		return
	}

	controller.activityLog.Record(actor, entities.ActivityUserDeleted,
		"Account "+user.Username+" deleted", c.ClientIP())
	respondSuccess(c, "user deleted")
}

// Profile returns the calling user's own account.
func (controller *UsersController) Profile(c *gin.Context) {
	user := auth.GetUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	c.IndentedJSON(http.StatusOK, viewOf(user))
}

func (controller *UsersController) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "old_password and new_password are required")
		return
	}

	if err := controller.auth.ChangePassword(auth.GetUserID(c), req.OldPassword, req.NewPassword); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondSuccess(c, "password changed")
}

// GenerateToken issues a fresh API token, invalidating any previous one.
func (controller *UsersController) GenerateToken(c *gin.Context) {
	token, err := controller.auth.GenerateToken(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "generate token")
		return
	}
	// The plaintext token is shown exactly once.
	c.IndentedJSON(http.StatusOK, gin.H{"token": token})
}

func (controller *UsersController) RevokeToken(c *gin.Context) {
	if err := controller.auth.RevokeToken(auth.GetUserID(c)); err != nil {
		respondInternalError(c, err, "revoke token")
		return
	}
	respondSuccess(c, "token revoked")
}
