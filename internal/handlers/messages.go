package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pictochat-service/internal/models"
	"pictochat-service/internal/repositories"
)

const historyLimit = 100

// MessagesHandler serves chat history and the direct-message REST surface:
// inbox, conversation threads, unread counts and block management.
type MessagesHandler struct {
	users    repositories.UserRepository
	messages repositories.MessageRepository
	privates repositories.PrivateMessageRepository
	blocks   repositories.BlockRepository
}

// NewMessagesHandler builds a MessagesHandler.
func NewMessagesHandler(
	users repositories.UserRepository,
	messages repositories.MessageRepository,
	privates repositories.PrivateMessageRepository,
	blocks repositories.BlockRepository,
) *MessagesHandler {
	return &MessagesHandler{users: users, messages: messages, privates: privates, blocks: blocks}
}

// History returns the last public messages in ascending time order, with
// each sender's current chat color resolved by username.
func (h *MessagesHandler) History(c *gin.Context) {
	msgs, err := h.messages.ListRecent(c.Request.Context(), historyLimit)
	if err != nil {
		log.Error().Err(err).Msg("history load failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	usernames := make([]string, 0, len(msgs))
	seen := map[string]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.Username]; !ok {
			seen[m.Username] = struct{}{}
			usernames = append(usernames, m.Username)
		}
	}

	colors, err := h.users.ColorsByUsername(c.Request.Context(), usernames)
	if err != nil {
		log.Error().Err(err).Msg("color resolution failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	history := make([]models.ChatMessagePayload, 0, len(msgs))
	for _, m := range msgs {
		color := colors[m.Username]
		if color == "" {
			color = models.DefaultChatColor
		}
		history = append(history, models.ChatMessagePayload{
			Username:   m.Username,
			Msg:        m.Content,
			Time:       m.CreatedAt.UTC().Format("15:04"),
			ProfilePic: m.ProfilePic,
			Color:      color,
		})
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// Inbox lists the user's conversations grouped by the other participant,
// newest first.
func (h *MessagesHandler) Inbox(c *gin.Context) {
	userID := c.GetInt("userID")

	conversations, err := h.privates.ListConversations(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("inbox load failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inbox"})
		return
	}

	total, err := h.privates.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("unread count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inbox"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations, "total_unread": total})
}

// Conversation returns the full thread with another user and marks their
// messages read in one batch. Reopening an already-read thread is a no-op;
// a block in either direction forbids opening the thread at all.
func (h *MessagesHandler) Conversation(c *gin.Context) {
	otherID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt("userID")
	if otherID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open a conversation with yourself"})
		return
	}

	other, err := h.users.GetUserByID(c.Request.Context(), otherID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("conversation user lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}

	blocked, err := h.blocks.IsBlockedEither(c.Request.Context(), userID, otherID)
	if err != nil {
		log.Error().Err(err).Msg("block lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}
	if blocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot view this conversation"})
		return
	}

	msgs, err := h.privates.ListConversation(c.Request.Context(), userID, otherID)
	if err != nil {
		log.Error().Err(err).Msg("conversation load failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}

	if err := h.privates.MarkConversationRead(c.Request.Context(), userID, otherID); err != nil {
		log.Error().Err(err).Msg("mark read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":          other.ID,
			"username":    other.Username,
			"profile_pic": other.ProfilePic,
		},
		"messages": msgs,
	})
}

// UnreadCount returns the number of unread direct messages, recomputed on
// demand.
func (h *MessagesHandler) UnreadCount(c *gin.Context) {
	count, err := h.privates.UnreadCount(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		log.Error().Err(err).Msg("unread count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Block records a block relation against another user.
func (h *MessagesHandler) Block(c *gin.Context) {
	h.updateBlock(c, true)
}

// Unblock removes the caller's block relation.
func (h *MessagesHandler) Unblock(c *gin.Context) {
	h.updateBlock(c, false)
}

func (h *MessagesHandler) updateBlock(c *gin.Context, block bool) {
	otherID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt("userID")
	if otherID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot block yourself"})
		return
	}

	if _, err := h.users.GetUserByID(c.Request.Context(), otherID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error().Err(err).Msg("block user lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update block"})
		return
	}

	if block {
		err = h.blocks.Block(c.Request.Context(), userID, otherID)
	} else {
		err = h.blocks.Unblock(c.Request.Context(), userID, otherID)
	}
	if err != nil {
		log.Error().Err(err).Msg("block update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update block"})
		return
	}

	c.Status(http.StatusNoContent)
}
