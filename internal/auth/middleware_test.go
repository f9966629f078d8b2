package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/openshelf/openshelf/internal/entities"
)

func permissionRouter(role entities.UserRole, op Operation) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextKeyRole, role)
		c.Next()
	})
	router.POST("/guarded", (&Middleware{}).RequirePermission(op), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestMiddleware_RequirePermission(t *testing.T) {
	t.Run("allows roles in the policy table", func(t *testing.T) {
		router := permissionRouter(entities.UserRoleLibrarian, OpIssueBook)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/guarded", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("librarian cannot waive fines", func(t *testing.T) {
		router := permissionRouter(entities.UserRoleLibrarian, OpWaiveFine)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/guarded", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("students are denied staff operations", func(t *testing.T) {
		router := permissionRouter(entities.UserRoleStudent, OpIssueBook)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/guarded", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unauthenticated requests carry no role", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.POST("/guarded", (&Middleware{}).RequirePermission(OpIssueBook), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/guarded", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
