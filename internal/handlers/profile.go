package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pictochat-service/internal/middleware"
	"pictochat-service/internal/models"
	"pictochat-service/internal/repositories"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,80}$`)

// ProfileHandler updates display attributes: chat color (palette only),
// profile picture reference, and username (30-day cooldown).
type ProfileHandler struct {
	users repositories.UserRepository
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(users repositories.UserRepository) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"profile_pic":   user.ProfilePic,
		"chat_color":    user.Color(),
		"message_count": user.MessageCount,
		"registered_on": user.RegisteredOn,
	})
}

type profileUpdateRequest struct {
	Username   *string `json:"username"`
	ChatColor  *string `json:"chat_color"`
	ProfilePic *string `json:"profile_pic"`
}

// Update applies the requested profile changes. Colors outside the palette
// and renames inside the cooldown window are rejected.
func (h *ProfileHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	if req.ChatColor != nil {
		if !isPaletteColor(*req.ChatColor) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "color not in palette"})
			return
		}
		if err := h.users.UpdateChatColor(ctx, user.ID, *req.ChatColor); err != nil {
			log.Error().Err(err).Msg("color update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
			return
		}
	}

	if req.ProfilePic != nil {
		pic := strings.TrimSpace(*req.ProfilePic)
		if pic == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty profile picture"})
			return
		}
		if err := h.users.UpdateProfilePic(ctx, user.ID, pic); err != nil {
			log.Error().Err(err).Msg("profile picture update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
			return
		}
	}

	if req.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*req.Username))
		if !usernamePattern.MatchString(username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid username"})
			return
		}
		if username != user.Username {
			now := time.Now().UTC()
			if !user.CanChangeUsername(now) {
				c.JSON(http.StatusForbidden, gin.H{"error": "username can be changed once every 30 days"})
				return
			}
			err := h.users.ChangeUsername(ctx, user.ID, username, now)
			if errors.Is(err, repositories.ErrUsernameTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": "username taken"})
				return
			}
			if err != nil {
				log.Error().Err(err).Msg("username change failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
				return
			}
		}
	}

	c.Status(http.StatusNoContent)
}

func isPaletteColor(color string) bool {
	for _, candidate := range models.ChatColors {
		if candidate == color {
			return true
		}
	}
	return false
}
