package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"goodhub-chat/internal/logger"
	"goodhub-chat/internal/models"
	"goodhub-chat/internal/observability"
	"goodhub-chat/internal/realtime/bus"
	"goodhub-chat/internal/repositories"
)

// Store reads and appends room messages.
type Store struct {
	messages repositories.MessageRepository
	profiles repositories.ProfileRepository
	bus      bus.Bus
	log      *logger.Logger
}

func NewStore(messages repositories.MessageRepository, profiles repositories.ProfileRepository, b bus.Bus, log *logger.Logger) *Store {
	return &Store{messages: messages, profiles: profiles, bus: b, log: log.With("component", "MessageStore")}
}

// Fetch returns the room's messages oldest first, each with its sender's
// display name. Senders are resolved with a single batch lookup.
func (s *Store) Fetch(ctx context.Context, roomID uuid.UUID) ([]models.MessageView, error) {
	msgs, err := s.messages.ListMessages(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %w", ErrLookup, err)
	}
	if len(msgs) == 0 {
		return []models.MessageView{}, nil
	}

	senderIDs := make([]uuid.UUID, 0, len(msgs))
	seen := make(map[uuid.UUID]struct{}, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	profiles, err := s.profiles.BulkProfiles(ctx, senderIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: sender profiles: %w", ErrLookup, err)
	}
	names := make(map[uuid.UUID]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.DisplayName()
	}

	views := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		name, ok := names[m.SenderID]
		if !ok {
			name = models.AnonymousName
		}
		views = append(views, models.MessageView{Message: m, SenderName: name})
	}
	return views, nil
}

// Send appends trimmed text to the room. Whitespace-only text is a no-op
// reported as sent=false with no error. The insert is announced on the bus
// after it commits; a failed announcement is logged only.
func (s *Store) Send(ctx context.Context, session Session, roomID uuid.UUID, text string) (models.Message, bool, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return models.Message{}, false, nil
	}

	msg, err := s.messages.InsertMessage(ctx, roomID, session.UserID, content)
	if err != nil {
		return models.Message{}, false, fmt.Errorf("%w: insert message: %w", ErrMutation, err)
	}
	observability.IncMessageSent()

	if err := s.bus.Publish(ctx, models.InsertEvent{RoomID: msg.RoomID, MessageID: msg.ID}); err != nil {
		s.log.Warn("insert event publish failed", "room_id", msg.RoomID, "message_id", msg.ID, "error", err)
	}
	return msg, true, nil
}
