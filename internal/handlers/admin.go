package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pictochat-service/internal/middleware"
	"pictochat-service/internal/repositories"
	"pictochat-service/internal/telemetry"
)

// AdminHandler is the administrative surface. Every operation starts with an
// explicit authorization check rather than relying on middleware wrapping.
type AdminHandler struct {
	users    repositories.UserRepository
	messages repositories.MessageRepository
	emitter  *telemetry.AuditEmitter
}

// NewAdminHandler builds an AdminHandler.
func NewAdminHandler(users repositories.UserRepository, messages repositories.MessageRepository, emitter *telemetry.AuditEmitter) *AdminHandler {
	return &AdminHandler{users: users, messages: messages, emitter: emitter}
}

// requireAdmin is the capability check invoked at the entry of each
// protected operation.
func (h *AdminHandler) requireAdmin(c *gin.Context) bool {
	user, ok := middleware.CurrentUser(c)
	if !ok || !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return false
	}
	return true
}

// Stats reports user and message totals.
func (h *AdminHandler) Stats(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	ctx := c.Request.Context()
	userCount, err := h.users.CountUsers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("user count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	adminCount, err := h.users.CountAdmins(ctx)
	if err != nil {
		log.Error().Err(err).Msg("admin count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	messageCount, err := h.messages.CountMessages(ctx)
	if err != nil {
		log.Error().Err(err).Msg("message count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":    userCount,
		"admins":   adminCount,
		"messages": messageCount,
	})
}

// DeleteMessage removes a public message. The chat core itself never
// deletes messages; this is the external administrative deletion interface.
func (h *AdminHandler) DeleteMessage(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	messageID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	err = h.messages.DeleteMessage(c.Request.Context(), messageID)
	if errors.Is(err, repositories.ErrMessageNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("message delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		return
	}

	h.audit(c, fmt.Sprintf("admin deleted message %d", messageID))
	c.Status(http.StatusNoContent)
}

// ToggleAdmin promotes or demotes another user.
func (h *AdminHandler) ToggleAdmin(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if targetID == c.GetInt("userID") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot change your own admin status"})
		return
	}

	target, err := h.users.GetUserByID(c.Request.Context(), targetID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("target lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	if err := h.users.SetAdmin(c.Request.Context(), target.ID, !target.IsAdmin); err != nil {
		log.Error().Err(err).Msg("admin toggle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	h.audit(c, fmt.Sprintf("admin status toggled for user %d", target.ID))
	c.JSON(http.StatusOK, gin.H{"id": target.ID, "is_admin": !target.IsAdmin})
}

func (h *AdminHandler) audit(c *gin.Context, text string) {
	if h.emitter == nil {
		return
	}
	h.emitter.Emit(c.Request.Context(), "WARN", text, requestIDFromContext(c), c.GetInt("userID"))
}
