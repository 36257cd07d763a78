package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"goodhub-chat/internal/chat"
	"goodhub-chat/internal/logger"
	"goodhub-chat/internal/middleware"
	"goodhub-chat/internal/models"
	"goodhub-chat/internal/observability"
	"goodhub-chat/internal/realtime"
)

const (
	wsKind       = "chat"
	wsRoutingKey = "ws_events.chats"
	maxFrameSize = 16 << 10
)

// clientFrame is a command sent by the browser.
type clientFrame struct {
	Type     string `json:"type"`
	FriendID string `json:"friend_id,omitempty"`
	Content  string `json:"content,omitempty"`
}

// ChatWebSocketHandler runs one Conversation per websocket connection.
type ChatWebSocketHandler struct {
	hub       *Hub
	live      *realtime.Hub
	svc       *chat.Service
	validator middleware.TokenValidator
	log       *logger.Logger
}

// NewChatWebSocketHandler constructs a ChatWebSocketHandler.
func NewChatWebSocketHandler(hub *Hub, live *realtime.Hub, svc *chat.Service, validator middleware.TokenValidator, log *logger.Logger) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{hub: hub, live: live, svc: svc, validator: validator, log: log.With("component", "ChatWebSocket")}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates, upgrades, and serves the connection until it closes.
func (h *ChatWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("goodhub-chat/ws").Start(c.Request.Context(), "ws.handshake")

	token, ok := tokenFromRequest(c)
	if !ok {
		span.End()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, err := h.validator.ValidateToken(token)
	if err != nil {
		span.End()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.End()
		return
	}
	traceID := span.SpanContext().TraceID().String()
	span.End()

	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	client := newClient(conn, info)
	h.hub.add(client)
	observability.IncWSActive(wsKind)
	h.publishWSEvent(ctx, info, "ws_connect", "")

	log := h.log.With("conn_id", info.ConnID, "user_id", userID)
	conv := chat.NewConversation(ctx, h.svc, h.live, chat.Session{UserID: userID}, func(ev models.ChatEvent) {
		if err := client.WriteJSON(ev); err != nil {
			log.Debug("websocket write failed", "error", err)
		}
	}, log)

	closeReason := h.readLoop(ctx, client, conv, log)

	conv.Close()
	h.hub.remove(client)
	_ = conn.Close()
	observability.DecWSActive(wsKind)
	h.publishWSEvent(ctx, info, "ws_disconnect", closeReason)
}

func (h *ChatWebSocketHandler) readLoop(ctx context.Context, client *Client, conv *chat.Conversation, log *logger.Logger) string {
	client.conn.SetReadLimit(maxFrameSize)
	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.publishWSEvent(ctx, client.info, "ws_error", err.Error())
			}
			return err.Error()
		}
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.writeError(client, "malformed frame")
			continue
		}
		h.dispatch(ctx, client, conv, frame, log)
	}
}

func (h *ChatWebSocketHandler) dispatch(ctx context.Context, client *Client, conv *chat.Conversation, frame clientFrame, log *logger.Logger) {
	switch frame.Type {
	case "start_chat":
		friendID, err := uuid.Parse(strings.TrimSpace(frame.FriendID))
		if err != nil {
			h.writeError(client, "invalid friend id")
			return
		}
		if _, err := conv.StartChat(ctx, friendID); err != nil {
			log.Warn("start chat failed", "friend_id", friendID, "error", err)
			h.writeError(client, clientMessage(err))
		}
	case "send":
		conv.SetDraft(frame.Content)
		if _, err := conv.Submit(ctx); err != nil {
			log.Warn("send failed", "error", err)
			h.writeError(client, clientMessage(err))
		}
	default:
		h.writeError(client, "unknown frame type")
	}
}

func (h *ChatWebSocketHandler) writeError(client *Client, msg string) {
	_ = client.WriteJSON(models.ChatEvent{Type: "error", Error: msg})
}

func (h *ChatWebSocketHandler) publishWSEvent(ctx context.Context, info ConnInfo, event, reason string) {
	observability.IncWSEvent(wsKind, event)
	var duration int64
	if event != "ws_connect" {
		duration = time.Since(info.ConnectedAt).Milliseconds()
	}
	_ = observability.PublishEvent(ctx, wsRoutingKey,
		observability.WSEvent(wsKind, event, info.ConnID, info.UserID.String(), info.DeviceID, info.IP, reason, duration),
		observability.BuildHeaders(info.RequestID, info.TraceID))
}

func clientMessage(err error) string {
	switch {
	case errors.Is(err, chat.ErrSelfChat):
		return "cannot chat with yourself"
	case errors.Is(err, chat.ErrNotFriends):
		return "users are not friends"
	case errors.Is(err, chat.ErrNoActiveRoom):
		return "no active chat"
	case errors.Is(err, chat.ErrMutation):
		return "failed to save"
	default:
		return "failed to load"
	}
}
