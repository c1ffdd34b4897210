package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"pictochat-service/internal/auth"
	"pictochat-service/internal/models"
	"pictochat-service/internal/observability"
	"pictochat-service/internal/rabbitmq"
	"pictochat-service/internal/repositories"
)

const maxMessageRunes = 500

// ChatWebSocketHandler owns the realtime protocol: connection lifecycle,
// public-room chat, typing indicators and direct messages.
type ChatWebSocketHandler struct {
	hub      *Hub
	presence *Presence
	limiter  *RateLimiter
	guard    *auth.Guard
	users    repositories.UserRepository
	messages repositories.MessageRepository
	privates repositories.PrivateMessageRepository
	blocks   repositories.BlockRepository
}

// NewChatWebSocketHandler constructs a ChatWebSocketHandler.
func NewChatWebSocketHandler(
	hub *Hub,
	presence *Presence,
	limiter *RateLimiter,
	guard *auth.Guard,
	users repositories.UserRepository,
	messages repositories.MessageRepository,
	privates repositories.PrivateMessageRepository,
	blocks repositories.BlockRepository,
) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{
		hub:      hub,
		presence: presence,
		limiter:  limiter,
		guard:    guard,
		users:    users,
		messages: messages,
		privates: privates,
		blocks:   blocks,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection, validates the session token and runs the
// event loop until the client disconnects. Session validity is checked once
// here and never re-checked for the life of the connection.
func (h *ChatWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("pictochat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	user, err := h.guard.Validate(ctx, token)
	if err != nil {
		// Stale or unknown token: tell this socket it was kicked, never
		// register it, and drop the connection.
		payload := models.NewEnvelope(models.EventKicked,
			models.StatusPayload{Msg: "Logged in from another device. Session terminated."})
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, payload)
		_ = conn.Close()
		observability.IncWSEvent("kicked")
		if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrSessionSuperseded) {
			log.Error().Err(err).Msg("session guard lookup failed")
		}
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      user.ID,
		Username:    user.Username,
		ProfilePic:  user.ProfilePic,
		Color:       user.Color(),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	client := NewClient(conn, info)
	go client.WritePump()

	h.connect(client)
	observability.IncWSActive()
	observability.IncWSEvent("connect")
	h.publishWSEvent(ctx, info, "ws_connect", "")

	closeErr := client.ReadLoop(func(data []byte) {
		h.dispatch(ctx, client, data)
	})

	reason := ""
	if closeErr != nil && !websocket.IsCloseError(closeErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		reason = closeErr.Error()
	}
	h.disconnect(client)
	client.Close()
	observability.DecWSActive()
	observability.IncWSEvent("disconnect")
	h.publishWSEvent(ctx, info, "ws_disconnect", reason)
}

// connect registers presence, joins the public and personal rooms and
// announces the arrival with a fresh presence snapshot.
func (h *ChatWebSocketHandler) connect(client *Client) {
	h.presence.Register(client.Info)
	h.hub.Join(client, RoomMain)
	h.hub.Join(client, UserRoom(client.Info.UserID))
	h.statusRoom(fmt.Sprintf("%s joined the chat!", client.Info.Username))
	h.broadcastPresence()
}

// disconnect is the cooperative teardown; it runs however the connection
// ended and leaves no presence entry behind.
func (h *ChatWebSocketHandler) disconnect(client *Client) {
	h.presence.Unregister(client.Info.ConnID)
	h.hub.LeaveAll(client)
	h.statusRoom(fmt.Sprintf("%s left the chat.", client.Info.Username))
	h.broadcastPresence()
}

func (h *ChatWebSocketHandler) dispatch(ctx context.Context, client *Client, data []byte) {
	var envelope models.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return
	}

	switch envelope.Event {
	case models.EventTyping:
		var payload models.TypingPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return
		}
		h.handleTyping(client, payload.Typing)
	case models.EventMessage:
		var payload models.MessagePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return
		}
		h.handleMessage(ctx, client, payload.Msg)
	case models.EventPrivateMessage:
		var payload models.PrivateMessagePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return
		}
		h.handlePrivateMessage(ctx, client, payload)
	}
}

// handleTyping rebroadcasts the indicator to everyone else in the room.
// Not persisted, not rate limited.
func (h *ChatWebSocketHandler) handleTyping(client *Client, typing bool) {
	observability.IncWSEvent("typing")
	h.hub.Broadcast(RoomMain, models.NewEnvelope(models.EventUserTyping, models.UserTypingPayload{
		Username: client.Info.Username,
		Typing:   typing,
	}), client)
}

// handleMessage runs the public-chat send path: rate limit, trim, persist,
// broadcast. Failures are surfaced to the origin connection only.
func (h *ChatWebSocketHandler) handleMessage(ctx context.Context, client *Client, msg string) {
	observability.IncWSEvent("message")
	if !h.limiter.Allow(client.Info.UserID) {
		observability.IncRateLimited()
		h.statusTo(client, "Wait a moment between messages")
		return
	}

	text := truncateRunes(strings.TrimSpace(msg), maxMessageRunes)
	if text == "" {
		return
	}

	if err := h.users.IncrementMessageCount(ctx, client.Info.UserID); err != nil {
		log.Error().Err(err).Msg("message count update failed")
		h.statusTo(client, "Error saving the message")
		return
	}

	stored, err := h.messages.CreateMessage(ctx, client.Info.Username, text, client.Info.ProfilePic)
	if err != nil {
		log.Error().Err(err).Msg("message save failed")
		if rbErr := h.users.DecrementMessageCount(ctx, client.Info.UserID); rbErr != nil {
			log.Error().Err(rbErr).Msg("message count rollback failed")
		}
		h.statusTo(client, "Error saving the message")
		return
	}

	observability.IncChatMessage("public")
	h.hub.Broadcast(RoomMain, models.NewEnvelope(models.EventMessage, models.ChatMessagePayload{
		Username:   client.Info.Username,
		Msg:        stored.Content,
		Time:       stored.CreatedAt.UTC().Format("15:04"),
		ProfilePic: client.Info.ProfilePic,
		Color:      client.Info.Color,
	}), nil)
}

// handlePrivateMessage runs the direct-message send path. Unlike public
// chat, every refusal is a structured pm_error back to the origin.
func (h *ChatWebSocketHandler) handlePrivateMessage(ctx context.Context, client *Client, payload models.PrivateMessagePayload) {
	observability.IncWSEvent("private_message")
	senderID := client.Info.UserID

	if payload.RecipientID == senderID {
		h.pmError(client, "You cannot message yourself")
		return
	}

	recipient, err := h.users.GetUserByID(ctx, payload.RecipientID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		h.pmError(client, "User not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("recipient lookup failed")
		h.pmError(client, "Could not send the message")
		return
	}

	blocked, err := h.blocks.IsBlockedEither(ctx, senderID, recipient.ID)
	if err != nil {
		log.Error().Err(err).Msg("block lookup failed")
		h.pmError(client, "Could not send the message")
		return
	}
	if blocked {
		h.pmError(client, "You cannot message this user")
		return
	}

	if !h.limiter.Allow(senderID) {
		observability.IncRateLimited()
		h.pmError(client, "Wait a moment between messages")
		return
	}

	text := truncateRunes(strings.TrimSpace(payload.Msg), maxMessageRunes)
	if text == "" {
		h.pmError(client, "Empty message")
		return
	}

	stored, err := h.privates.CreatePrivateMessage(ctx, senderID, recipient.ID, text)
	if err != nil {
		log.Error().Err(err).Msg("private message save failed")
		h.pmError(client, "Error saving the message")
		return
	}

	observability.IncChatMessage("private")
	pm := models.PMPayload{
		ID:          stored.ID,
		SenderID:    stored.SenderID,
		RecipientID: stored.RecipientID,
		Msg:         stored.Content,
		Time:        stored.CreatedAt.UTC().Format("15:04"),
	}
	client.Send(models.NewEnvelope(models.EventPMSent, pm))
	// Offline recipients still got the durable row; they see it on the next
	// inbox fetch.
	if h.presence.Online(recipient.ID) {
		h.hub.Broadcast(UserRoom(recipient.ID), models.NewEnvelope(models.EventPMReceived, pm), nil)
		h.hub.Broadcast(UserRoom(recipient.ID), models.NewEnvelope(models.EventPMNotification, models.PMNotificationPayload{
			Sender: client.Info.Username,
		}), nil)
	}
}

func (h *ChatWebSocketHandler) broadcastPresence() {
	h.hub.Broadcast(RoomMain, models.NewEnvelope(models.EventOnlineUsers, models.OnlineUsersPayload{
		Users: h.presence.Distinct(),
	}), nil)
}

func (h *ChatWebSocketHandler) statusRoom(msg string) {
	h.hub.Broadcast(RoomMain, models.NewEnvelope(models.EventStatus, models.StatusPayload{Msg: msg}), nil)
}

func (h *ChatWebSocketHandler) statusTo(client *Client, msg string) {
	client.Send(models.NewEnvelope(models.EventStatus, models.StatusPayload{Msg: msg}))
}

func (h *ChatWebSocketHandler) pmError(client *Client, msg string) {
	client.Send(models.NewEnvelope(models.EventPMError, models.PMErrorPayload{Msg: msg}))
}

func (h *ChatWebSocketHandler) publishWSEvent(ctx context.Context, info ConnInfo, event, reason string) {
	_ = rabbitmq.PublishEvent(ctx, "ws_events.chat", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: observability.WSEventPayload{
			Event:      event,
			ConnID:     info.ConnID,
			UserID:     info.UserID,
			Username:   info.Username,
			IP:         info.IP,
			DurationMS: time.Since(info.ConnectedAt).Milliseconds(),
			Reason:     reason,
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
