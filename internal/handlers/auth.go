package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pictochat-service/internal/auth"
	"pictochat-service/internal/repositories"
	"pictochat-service/internal/telemetry"
)

// AuthHandler is the login boundary: it verifies credentials and rotates the
// single valid session token on every successful login.
type AuthHandler struct {
	users   repositories.UserRepository
	emitter *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users repositories.UserRepository, emitter *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{users: users, emitter: emitter}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a user with a lowercase unique username.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
		return
	}
	secret, err := auth.NewSessionSecret()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), username, hash, secret)
	if errors.Is(err, repositories.ErrUsernameTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "username taken"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("user create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
		return
	}

	h.audit(c, "user registered: "+user.Username, user.ID)
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

// Login verifies credentials and rotates the session token. Every
// connection holding the previous token is permanently invalidated.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	user, err := h.users.GetUserByUsername(c.Request.Context(), username)
	if errors.Is(err, repositories.ErrUserNotFound) || (err == nil && !auth.VerifyPassword(user.PasswordHash, req.Password)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("login lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	secret, err := auth.NewSessionSecret()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if err := h.users.RotateSessionToken(c.Request.Context(), user.ID, secret); err != nil {
		log.Error().Err(err).Msg("session token rotation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	h.audit(c, "login: "+user.Username, user.ID)
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"token":    auth.FormatToken(user.ID, secret),
	})
}

// Logout clears the current session token.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetInt("userID")
	if err := h.users.ClearSessionToken(c.Request.Context(), userID); err != nil {
		log.Error().Err(err).Msg("logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	h.audit(c, "logout", userID)
	c.Status(http.StatusNoContent)
}

// CheckSession confirms the presented token is still the current one; a
// stale token never reaches here (middleware rejects it with 401).
func (h *AuthHandler) CheckSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (h *AuthHandler) audit(c *gin.Context, text string, userID int) {
	if h.emitter == nil {
		return
	}
	h.emitter.Emit(c.Request.Context(), "INFO", text, requestIDFromContext(c), userID)
}
