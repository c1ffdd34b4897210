package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"pictochat-service/internal/models"
	"pictochat-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, username, passwordHash, sessionToken string) (models.User, error) {
	args := m.Called(ctx, username, passwordHash, sessionToken)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) RotateSessionToken(ctx context.Context, userID int, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *UserRepositoryMock) ClearSessionToken(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepositoryMock) IncrementMessageCount(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepositoryMock) DecrementMessageCount(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepositoryMock) UpdateChatColor(ctx context.Context, userID int, color string) error {
	args := m.Called(ctx, userID, color)
	return args.Error(0)
}

func (m *UserRepositoryMock) UpdateProfilePic(ctx context.Context, userID int, profilePic string) error {
	args := m.Called(ctx, userID, profilePic)
	return args.Error(0)
}

func (m *UserRepositoryMock) ChangeUsername(ctx context.Context, userID int, username string, changedAt time.Time) error {
	args := m.Called(ctx, userID, username, changedAt)
	return args.Error(0)
}

func (m *UserRepositoryMock) ColorsByUsername(ctx context.Context, usernames []string) (map[string]string, error) {
	args := m.Called(ctx, usernames)
	var colors map[string]string
	if val := args.Get(0); val != nil {
		colors = val.(map[string]string)
	}
	return colors, args.Error(1)
}

func (m *UserRepositoryMock) SetAdmin(ctx context.Context, userID int, isAdmin bool) error {
	args := m.Called(ctx, userID, isAdmin)
	return args.Error(0)
}

func (m *UserRepositoryMock) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *UserRepositoryMock) CountAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, username, content, profilePic string) (models.Message, error) {
	args := m.Called(ctx, username, content, profilePic)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListRecent(ctx context.Context, limit int) ([]models.Message, error) {
	args := m.Called(ctx, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID int) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) CountMessages(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type PrivateMessageRepositoryMock struct {
	mock.Mock
}

func (m *PrivateMessageRepositoryMock) CreatePrivateMessage(ctx context.Context, senderID, recipientID int, content string) (models.PrivateMessage, error) {
	args := m.Called(ctx, senderID, recipientID, content)
	var msg models.PrivateMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.PrivateMessage)
	}
	return msg, args.Error(1)
}

func (m *PrivateMessageRepositoryMock) ListConversation(ctx context.Context, userID, otherID int) ([]models.PrivateMessage, error) {
	args := m.Called(ctx, userID, otherID)
	var msgs []models.PrivateMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.PrivateMessage)
	}
	return msgs, args.Error(1)
}

func (m *PrivateMessageRepositoryMock) MarkConversationRead(ctx context.Context, viewerID, otherID int) error {
	args := m.Called(ctx, viewerID, otherID)
	return args.Error(0)
}

func (m *PrivateMessageRepositoryMock) UnreadCount(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *PrivateMessageRepositoryMock) ListConversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var conversations []models.Conversation
	if val := args.Get(0); val != nil {
		conversations = val.([]models.Conversation)
	}
	return conversations, args.Error(1)
}

type BlockRepositoryMock struct {
	mock.Mock
}

func (m *BlockRepositoryMock) Block(ctx context.Context, blockerID, blockedID int) error {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Error(0)
}

func (m *BlockRepositoryMock) Unblock(ctx context.Context, blockerID, blockedID int) error {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Error(0)
}

func (m *BlockRepositoryMock) IsBlockedEither(ctx context.Context, userID, otherID int) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.PrivateMessageRepository = (*PrivateMessageRepositoryMock)(nil)
var _ repositories.BlockRepository = (*BlockRepositoryMock)(nil)
