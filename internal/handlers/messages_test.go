package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pictochat-service/internal/mocks"
	"pictochat-service/internal/models"
	"pictochat-service/internal/repositories"
)

func setupMessagesRouter(handler *MessagesHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/messages/history", handler.History)
	r.GET("/messages/inbox", handler.Inbox)
	r.GET("/messages/conversation/:user_id", handler.Conversation)
	r.GET("/messages/unread_count", handler.UnreadCount)
	r.POST("/messages/block/:user_id", handler.Block)
	r.DELETE("/messages/block/:user_id", handler.Unblock)
	return r
}

func TestHistoryResolvesColors(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := NewMessagesHandler(users, messages, new(mocks.PrivateMessageRepositoryMock), new(mocks.BlockRepositoryMock))
	router := setupMessagesRouter(handler)

	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	messages.On("ListRecent", mock.Anything, 100).Return([]models.Message{
		{ID: 1, Username: "alice", Content: "hi", ProfilePic: "a.png", CreatedAt: created},
		{ID: 2, Username: "bob", Content: "yo", ProfilePic: "b.png", CreatedAt: created},
	}, nil).Once()
	users.On("ColorsByUsername", mock.Anything, []string{"alice", "bob"}).
		Return(map[string]string{"alice": "#fb0018"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		History []models.ChatMessagePayload `json:"history"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.History, 2)
	require.Equal(t, "#fb0018", resp.History[0].Color)
	require.Equal(t, models.DefaultChatColor, resp.History[1].Color)
	require.Equal(t, "09:30", resp.History[0].Time)

	users.AssertExpectations(t)
	messages.AssertExpectations(t)
}

func TestInboxReturnsConversationsAndTotal(t *testing.T) {
	privates := new(mocks.PrivateMessageRepositoryMock)
	handler := NewMessagesHandler(new(mocks.UserRepositoryMock), new(mocks.MessageRepositoryMock), privates, new(mocks.BlockRepositoryMock))
	router := setupMessagesRouter(handler)

	privates.On("ListConversations", mock.Anything, 1).Return([]models.Conversation{
		{UserID: 2, Username: "bob", UnreadCount: 3},
	}, nil).Once()
	privates.On("UnreadCount", mock.Anything, 1).Return(3, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/inbox", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, float64(3), resp["total_unread"])
	privates.AssertExpectations(t)
}

func TestConversationMarksRead(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	privates := new(mocks.PrivateMessageRepositoryMock)
	blocks := new(mocks.BlockRepositoryMock)
	handler := NewMessagesHandler(users, new(mocks.MessageRepositoryMock), privates, blocks)
	router := setupMessagesRouter(handler)

	users.On("GetUserByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	blocks.On("IsBlockedEither", mock.Anything, 1, 2).Return(false, nil).Once()
	privates.On("ListConversation", mock.Anything, 1, 2).Return([]models.PrivateMessage{
		{ID: 5, SenderID: 2, RecipientID: 1, Content: "hello"},
	}, nil).Once()
	privates.On("MarkConversationRead", mock.Anything, 1, 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/conversation/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
	privates.AssertExpectations(t)
}

func TestConversationBlockedPairForbidden(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	privates := new(mocks.PrivateMessageRepositoryMock)
	blocks := new(mocks.BlockRepositoryMock)
	handler := NewMessagesHandler(users, new(mocks.MessageRepositoryMock), privates, blocks)
	router := setupMessagesRouter(handler)

	users.On("GetUserByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil).Once()
	blocks.On("IsBlockedEither", mock.Anything, 1, 2).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/conversation/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	privates.AssertNotCalled(t, "ListConversation", mock.Anything, mock.Anything, mock.Anything)
	privates.AssertNotCalled(t, "MarkConversationRead", mock.Anything, mock.Anything, mock.Anything)
	blocks.AssertExpectations(t)
}

func TestConversationWithSelfRejected(t *testing.T) {
	handler := NewMessagesHandler(new(mocks.UserRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.PrivateMessageRepositoryMock), new(mocks.BlockRepositoryMock))
	router := setupMessagesRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/messages/conversation/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConversationUnknownUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	handler := NewMessagesHandler(users, new(mocks.MessageRepositoryMock), new(mocks.PrivateMessageRepositoryMock), new(mocks.BlockRepositoryMock))
	router := setupMessagesRouter(handler)

	users.On("GetUserByID", mock.Anything, 9).Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/conversation/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnreadCount(t *testing.T) {
	privates := new(mocks.PrivateMessageRepositoryMock)
	handler := NewMessagesHandler(new(mocks.UserRepositoryMock), new(mocks.MessageRepositoryMock), privates, new(mocks.BlockRepositoryMock))
	router := setupMessagesRouter(handler)

	privates.On("UnreadCount", mock.Anything, 1).Return(4, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/unread_count", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, float64(4), resp["count"])
}

func TestBlockUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	blocks := new(mocks.BlockRepositoryMock)
	handler := NewMessagesHandler(users, new(mocks.MessageRepositoryMock), new(mocks.PrivateMessageRepositoryMock), blocks)
	router := setupMessagesRouter(handler)

	users.On("GetUserByID", mock.Anything, 2).Return(models.User{ID: 2}, nil).Once()
	blocks.On("Block", mock.Anything, 1, 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/block/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	blocks.AssertExpectations(t)
}

func TestUnblockUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	blocks := new(mocks.BlockRepositoryMock)
	handler := NewMessagesHandler(users, new(mocks.MessageRepositoryMock), new(mocks.PrivateMessageRepositoryMock), blocks)
	router := setupMessagesRouter(handler)

	users.On("GetUserByID", mock.Anything, 2).Return(models.User{ID: 2}, nil).Once()
	blocks.On("Unblock", mock.Anything, 1, 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/block/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	blocks.AssertExpectations(t)
}

func TestBlockSelfRejected(t *testing.T) {
	handler := NewMessagesHandler(new(mocks.UserRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.PrivateMessageRepositoryMock), new(mocks.BlockRepositoryMock))
	router := setupMessagesRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/messages/block/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryRepoError(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	handler := NewMessagesHandler(new(mocks.UserRepositoryMock), messages, new(mocks.PrivateMessageRepositoryMock), new(mocks.BlockRepositoryMock))
	router := setupMessagesRouter(handler)

	messages.On("ListRecent", mock.Anything, 100).Return(([]models.Message)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
