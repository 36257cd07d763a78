package chat

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"goodhub-chat/internal/logger"
	"goodhub-chat/internal/models"
	"goodhub-chat/internal/observability"
	"goodhub-chat/internal/repositories"
)

// Resolver finds or creates the direct room shared by two users.
type Resolver struct {
	rooms repositories.RoomRepository
	log   *logger.Logger
}

func NewResolver(rooms repositories.RoomRepository, log *logger.Logger) *Resolver {
	return &Resolver{rooms: rooms, log: log.With("component", "RoomResolver")}
}

// Resolve returns the first room of the session user that also contains
// friendID, scanning memberships oldest first. Without a match it creates a
// direct room with both participants. Errors wrap ErrLookup or ErrMutation
// and are not retried.
func (r *Resolver) Resolve(ctx context.Context, session Session, friendID uuid.UUID) (models.Room, error) {
	if session.UserID == friendID {
		return models.Room{}, ErrSelfChat
	}

	memberships, err := r.rooms.ListMemberships(ctx, session.UserID)
	if err != nil {
		return models.Room{}, fmt.Errorf("%w: list memberships: %w", ErrLookup, err)
	}

	for _, m := range memberships {
		others, err := r.rooms.ListParticipants(ctx, m.RoomID, session.UserID)
		if err != nil {
			return models.Room{}, fmt.Errorf("%w: list participants: %w", ErrLookup, err)
		}
		if !slices.ContainsFunc(others, func(p models.Participant) bool { return p.UserID == friendID }) {
			continue
		}
		room, err := r.rooms.GetRoom(ctx, m.RoomID)
		if err != nil {
			return models.Room{}, fmt.Errorf("%w: get room: %w", ErrLookup, err)
		}
		observability.IncRoomResolved(false)
		return room, nil
	}

	room, err := r.rooms.CreateDirectRoom(ctx, session.UserID, friendID)
	if err != nil {
		return models.Room{}, fmt.Errorf("%w: create room: %w", ErrMutation, err)
	}
	observability.IncRoomResolved(true)
	r.log.Info("direct room created", "room_id", room.ID, "created_by", session.UserID)
	return room, nil
}
