package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"goodhub-chat/internal/logger"
	"goodhub-chat/internal/models"
	"goodhub-chat/internal/observability"
	"goodhub-chat/internal/realtime"
)

// Conversation is one viewer's chat state: the active room, its message
// list, and the composer draft. The message list is re-read in full on every
// insert event for the active room.
type Conversation struct {
	svc      *Service
	hub      *realtime.Hub
	session  Session
	onChange func(models.ChatEvent)
	log      *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// emitMu orders onChange calls; events of a replaced room are dropped.
	emitMu sync.Mutex

	mu       sync.Mutex
	room     *models.Room
	messages []models.MessageView
	draft    string
	sub      *realtime.Subscription
	gen      uint64
	fetchSeq uint64
	applied  uint64
	closed   bool
}

// NewConversation binds a conversation to session. onChange, if set, receives
// room, messages and error events; it must not block for long.
func NewConversation(ctx context.Context, svc *Service, hub *realtime.Hub, session Session, onChange func(models.ChatEvent), log *logger.Logger) *Conversation {
	ctx, cancel := context.WithCancel(ctx)
	if onChange == nil {
		onChange = func(models.ChatEvent) {}
	}
	return &Conversation{
		svc:      svc,
		hub:      hub,
		session:  session,
		onChange: onChange,
		log:      log.With("component", "Conversation", "user_id", session.UserID),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// StartChat makes the direct room with friendID active. On failure the
// previous room stays active. The previous room's listener is detached
// before the new one attaches, and the new listener attaches before the
// initial fetch so no insert is missed.
func (c *Conversation) StartChat(ctx context.Context, friendID uuid.UUID) (models.Room, error) {
	room, err := c.svc.StartChat(ctx, c.session, friendID)
	if err != nil {
		return models.Room{}, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.Room{}, ErrClosed
	}
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
	c.gen++
	gen := c.gen
	c.room = &room
	c.messages = []models.MessageView{}
	roomID := room.ID
	c.sub = c.hub.Subscribe(roomID, func(models.InsertEvent) {
		observability.IncRefetch()
		c.refresh(gen, roomID)
	})
	c.mu.Unlock()

	c.emit(gen, models.ChatEvent{Type: "room", RoomID: &roomID, Room: &room})
	c.refresh(gen, roomID)
	return room, nil
}

// Room returns the active room.
func (c *Conversation) Room() (models.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == nil {
		return models.Room{}, false
	}
	return *c.room, true
}

// Messages returns a copy of the active room's message list.
func (c *Conversation) Messages() []models.MessageView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.MessageView, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

func (c *Conversation) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Submit sends the draft to the active room. A blank draft is a no-op that
// leaves the draft as typed. A successful send clears the draft unless it
// was edited meanwhile; a failed send keeps it. The list is not updated
// locally; the insert event triggers the refetch.
func (c *Conversation) Submit(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	if c.room == nil {
		c.mu.Unlock()
		return false, ErrNoActiveRoom
	}
	roomID := c.room.ID
	text := c.draft
	c.mu.Unlock()

	_, sent, err := c.svc.store.Send(ctx, c.session, roomID, text)
	if err != nil || !sent {
		return false, err
	}

	c.mu.Lock()
	if c.draft == text {
		c.draft = ""
	}
	c.mu.Unlock()
	return true, nil
}

// Close detaches the listener and cancels in-flight fetches. It is idempotent.
func (c *Conversation) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
	c.mu.Unlock()
	c.cancel()
}

// refresh re-reads the room and applies the result only if the room is
// still active and no newer fetch has been applied.
func (c *Conversation) refresh(gen uint64, roomID uuid.UUID) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.fetchSeq++
	seq := c.fetchSeq
	c.mu.Unlock()

	msgs, err := c.svc.store.Fetch(c.ctx, roomID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.log.Warn("message fetch failed", "room_id", roomID, "error", err)
		c.emit(gen, models.ChatEvent{Type: "error", RoomID: &roomID, Error: "failed to load messages"})
		return
	}

	c.mu.Lock()
	if gen != c.gen || seq <= c.applied {
		c.mu.Unlock()
		return
	}
	c.applied = seq
	c.messages = msgs
	snapshot := make([]models.MessageView, len(msgs))
	copy(snapshot, msgs)
	c.mu.Unlock()

	c.emit(gen, models.ChatEvent{Type: "messages", RoomID: &roomID, Messages: snapshot})
}

func (c *Conversation) emit(gen uint64, event models.ChatEvent) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	current := gen == c.gen
	c.mu.Unlock()
	if current {
		c.onChange(event)
	}
}
