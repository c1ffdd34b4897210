package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pictochat-service/internal/middleware"
	"pictochat-service/internal/mocks"
	"pictochat-service/internal/models"
	"pictochat-service/internal/repositories"
)

func setupAdminRouter(handler *AdminHandler, user models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", user.ID)
		c.Set(middleware.UserContextKey, user)
		c.Next()
	})
	r.GET("/admin/stats", handler.Stats)
	r.DELETE("/admin/messages/:id", handler.DeleteMessage)
	r.POST("/admin/users/:id/toggle-admin", handler.ToggleAdmin)
	return r
}

func TestAdminStats(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := NewAdminHandler(users, messages, nil)
	router := setupAdminRouter(handler, models.User{ID: 1, Username: "root", IsAdmin: true})

	users.On("CountUsers", mock.Anything).Return(10, nil).Once()
	users.On("CountAdmins", mock.Anything).Return(2, nil).Once()
	messages.On("CountMessages", mock.Anything).Return(321, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, float64(10), resp["users"])
	require.Equal(t, float64(321), resp["messages"])
	users.AssertExpectations(t)
	messages.AssertExpectations(t)
}

func TestAdminStatsForbiddenForNonAdmin(t *testing.T) {
	handler := NewAdminHandler(new(mocks.UserRepositoryMock), new(mocks.MessageRepositoryMock), nil)
	router := setupAdminRouter(handler, models.User{ID: 1, Username: "alice"})

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminDeleteMessage(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	handler := NewAdminHandler(new(mocks.UserRepositoryMock), messages, nil)
	router := setupAdminRouter(handler, models.User{ID: 1, Username: "root", IsAdmin: true})

	messages.On("DeleteMessage", mock.Anything, 44).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/admin/messages/44", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	messages.AssertExpectations(t)
}

func TestAdminDeleteMessageNotFound(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	handler := NewAdminHandler(new(mocks.UserRepositoryMock), messages, nil)
	router := setupAdminRouter(handler, models.User{ID: 1, Username: "root", IsAdmin: true})

	messages.On("DeleteMessage", mock.Anything, 44).Return(repositories.ErrMessageNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/admin/messages/44", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminToggleAdmin(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := NewAdminHandler(users, new(mocks.MessageRepositoryMock), nil)
	router := setupAdminRouter(handler, models.User{ID: 1, Username: "root", IsAdmin: true})

	users.On("GetUserByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	users.On("SetAdmin", mock.Anything, 2, true).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/admin/users/2/toggle-admin", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, true, resp["is_admin"])
	users.AssertExpectations(t)
}

func TestAdminToggleSelfRejected(t *testing.T) {
	handler := NewAdminHandler(new(mocks.UserRepositoryMock), new(mocks.MessageRepositoryMock), nil)
	router := setupAdminRouter(handler, models.User{ID: 1, Username: "root", IsAdmin: true})

	req := httptest.NewRequest(http.MethodPost, "/admin/users/1/toggle-admin", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
