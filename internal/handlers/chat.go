package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"goodhub-chat/internal/chat"
	"goodhub-chat/internal/middleware"
	"goodhub-chat/internal/telemetry"
)

// ChatHandler manages direct chat endpoints.
type ChatHandler struct {
	svc   *chat.Service
	audit *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(svc *chat.Service, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{svc: svc, audit: audit}
}

func sessionFromContext(c *gin.Context) chat.Session {
	return chat.Session{UserID: middleware.UserID(c)}
}

// ListChats returns the direct rooms of the authenticated user.
func (h *ChatHandler) ListChats(c *gin.Context) {
	rooms, err := h.svc.ListRooms(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": rooms})
}

// StartChat finds or creates the direct room with a friend.
func (h *ChatHandler) StartChat(c *gin.Context) {
	var req struct {
		FriendID uuid.UUID `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.svc.StartChat(c.Request.Context(), sessionFromContext(c), req.FriendID)
	if err != nil {
		writeChatError(c, err)
		return
	}

	emitAudit(c.Request.Context(), c, h.audit, "chat started")
	c.JSON(http.StatusOK, gin.H{"room_id": room.ID})
}

// GetChatMessages returns the room's history, oldest first.
func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	msgs, err := h.svc.Messages(c.Request.Context(), sessionFromContext(c), roomID)
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostChatMessage appends a message. Blank content is accepted and ignored.
func (h *ChatHandler) PostChatMessage(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, sent, err := h.svc.SendMessage(c.Request.Context(), sessionFromContext(c), roomID, req.Content)
	if err != nil {
		writeChatError(c, err)
		return
	}
	if !sent {
		c.Status(http.StatusNoContent)
		return
	}

	emitAudit(c.Request.Context(), c, h.audit, "message sent")
	c.JSON(http.StatusCreated, msg)
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrSelfChat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
	case errors.Is(err, chat.ErrNotFriends):
		c.JSON(http.StatusForbidden, gin.H{"error": "users are not friends"})
	case errors.Is(err, chat.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat member"})
	case errors.Is(err, chat.ErrMutation):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load"})
	}
}
