package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pictochat-service/internal/auth"
	"pictochat-service/internal/mocks"
	"pictochat-service/internal/models"
	"pictochat-service/internal/repositories"
)

func setupProtectedRouter(users repositories.UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(auth.NewGuard(users)))
	r.GET("/protected", func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	return r
}

func TestAuthMiddlewareAcceptsCurrentToken(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	secret := "s1"
	users.On("GetUserByID", mock.Anything, 7).Return(models.User{ID: 7, Username: "alice", SessionToken: &secret}, nil).Once()

	router := setupProtectedRouter(users)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+auth.FormatToken(7, "s1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareRejectsSupersededToken(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	rotated := "newer"
	users.On("GetUserByID", mock.Anything, 7).Return(models.User{ID: 7, SessionToken: &rotated}, nil).Once()

	router := setupProtectedRouter(users)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+auth.FormatToken(7, "older"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "newer login")
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	router := setupProtectedRouter(new(mocks.UserRepositoryMock))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	router := setupProtectedRouter(new(mocks.UserRepositoryMock))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
