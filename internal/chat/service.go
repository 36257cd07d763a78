package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"goodhub-chat/internal/logger"
	"goodhub-chat/internal/models"
	"goodhub-chat/internal/realtime/bus"
	"goodhub-chat/internal/repositories"
)

// Service applies access rules on top of the resolver and the message store.
type Service struct {
	rooms    repositories.RoomRepository
	friends  repositories.FriendRepository
	profiles repositories.ProfileRepository
	resolver *Resolver
	store    *Store
	log      *logger.Logger
}

func NewService(
	rooms repositories.RoomRepository,
	messages repositories.MessageRepository,
	friends repositories.FriendRepository,
	profiles repositories.ProfileRepository,
	b bus.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		rooms:    rooms,
		friends:  friends,
		profiles: profiles,
		resolver: NewResolver(rooms, log),
		store:    NewStore(messages, profiles, b, log),
		log:      log.With("component", "ChatService"),
	}
}

// StartChat resolves the direct room with an accepted friend.
func (s *Service) StartChat(ctx context.Context, session Session, friendID uuid.UUID) (models.Room, error) {
	if session.UserID == friendID {
		return models.Room{}, ErrSelfChat
	}
	ok, err := s.friends.AreFriends(ctx, session.UserID, friendID)
	if err != nil {
		return models.Room{}, fmt.Errorf("%w: friendship: %w", ErrLookup, err)
	}
	if !ok {
		return models.Room{}, ErrNotFriends
	}
	return s.resolver.Resolve(ctx, session, friendID)
}

// ListRooms returns the session user's direct rooms with the friend's display name.
func (s *Service) ListRooms(ctx context.Context, session Session) ([]models.RoomSummary, error) {
	rooms, err := s.rooms.ListDirectRooms(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: list rooms: %w", ErrLookup, err)
	}
	if len(rooms) == 0 {
		return []models.RoomSummary{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.FriendID)
	}
	profiles, err := s.profiles.BulkProfiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: friend profiles: %w", ErrLookup, err)
	}
	names := make(map[uuid.UUID]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.DisplayName()
	}
	for i := range rooms {
		rooms[i].FriendName = models.AnonymousName
		if name, ok := names[rooms[i].FriendID]; ok {
			rooms[i].FriendName = name
		}
	}
	return rooms, nil
}

// Messages returns the room history for a participant.
func (s *Service) Messages(ctx context.Context, session Session, roomID uuid.UUID) ([]models.MessageView, error) {
	if err := s.requireParticipant(ctx, session, roomID); err != nil {
		return nil, err
	}
	return s.store.Fetch(ctx, roomID)
}

// SendMessage appends text to the room for a participant. Blank text returns sent=false.
func (s *Service) SendMessage(ctx context.Context, session Session, roomID uuid.UUID, text string) (models.Message, bool, error) {
	if err := s.requireParticipant(ctx, session, roomID); err != nil {
		return models.Message{}, false, err
	}
	return s.store.Send(ctx, session, roomID, text)
}

func (s *Service) requireParticipant(ctx context.Context, session Session, roomID uuid.UUID) error {
	member, err := s.rooms.IsParticipant(ctx, roomID, session.UserID)
	if err != nil {
		return fmt.Errorf("%w: membership: %w", ErrLookup, err)
	}
	if !member {
		return ErrNotParticipant
	}
	return nil
}
