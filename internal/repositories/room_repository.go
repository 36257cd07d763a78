package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"goodhub-chat/internal/models"
)

var ErrRoomNotFound = errors.New("room not found")

// RoomRepository abstracts chat room persistence.
type RoomRepository interface {
	ListMemberships(ctx context.Context, userID uuid.UUID) ([]models.Participant, error)
	ListParticipants(ctx context.Context, roomID uuid.UUID, excludingUserID uuid.UUID) ([]models.Participant, error)
	CreateDirectRoom(ctx context.Context, creatorID uuid.UUID, friendID uuid.UUID) (models.Room, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (models.Room, error)
	IsParticipant(ctx context.Context, roomID uuid.UUID, userID uuid.UUID) (bool, error)
	ListDirectRooms(ctx context.Context, userID uuid.UUID) ([]models.RoomSummary, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// ListMemberships returns the rooms the user participates in, oldest membership first.
func (r *RoomRepo) ListMemberships(ctx context.Context, userID uuid.UUID) ([]models.Participant, error) {
	var rows []models.Participant
	err := r.db.SelectContext(ctx, &rows, `SELECT room_id, user_id, joined_at FROM chat_participants
        WHERE user_id=$1 ORDER BY joined_at ASC, room_id ASC`, userID)
	return rows, err
}

// ListParticipants returns the members of a room other than excludingUserID.
func (r *RoomRepo) ListParticipants(ctx context.Context, roomID uuid.UUID, excludingUserID uuid.UUID) ([]models.Participant, error) {
	var rows []models.Participant
	err := r.db.SelectContext(ctx, &rows, `SELECT room_id, user_id, joined_at FROM chat_participants
        WHERE room_id=$1 AND user_id<>$2 ORDER BY joined_at ASC, user_id ASC`, roomID, excludingUserID)
	return rows, err
}

// CreateDirectRoom creates a direct room and both participant rows in one
// transaction. The room is keyed on the sorted participant pair, so a
// concurrent creation for the same pair returns the room that won.
func (r *RoomRepo) CreateDirectRoom(ctx context.Context, creatorID uuid.UUID, friendID uuid.UUID) (room models.Room, err error) {
	if creatorID == friendID {
		return models.Room{}, errors.New("cannot create direct room with self")
	}
	pairKey := models.DirectPairKey(creatorID, friendID)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Room{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// The no-op update makes RETURNING yield the existing row on conflict.
	if err = tx.QueryRowxContext(ctx, `INSERT INTO chat_rooms (type, created_by, pair_key) VALUES ($1, $2, $3)
        ON CONFLICT (pair_key) DO UPDATE SET pair_key = EXCLUDED.pair_key
        RETURNING id, type, created_by, pair_key, created_at`, models.RoomTypeDirect, creatorID, pairKey).
		StructScan(&room); err != nil {
		return models.Room{}, fmt.Errorf("insert room: %w", err)
	}

	for _, userID := range []uuid.UUID{creatorID, friendID} {
		if _, err = tx.ExecContext(ctx, `INSERT INTO chat_participants (room_id, user_id) VALUES ($1, $2)
            ON CONFLICT (room_id, user_id) DO NOTHING`, room.ID, userID); err != nil {
			return models.Room{}, fmt.Errorf("insert participant: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Room{}, err
	}
	return room, nil
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID uuid.UUID) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT id, type, created_by, pair_key, created_at FROM chat_rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// IsParticipant checks whether a user belongs to the room.
func (r *RoomRepo) IsParticipant(ctx context.Context, roomID uuid.UUID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chat_participants WHERE room_id=$1 AND user_id=$2)`, roomID, userID)
	return exists, err
}

// ListDirectRooms returns the user's direct rooms with the other participant, newest first.
func (r *RoomRepo) ListDirectRooms(ctx context.Context, userID uuid.UUID) ([]models.RoomSummary, error) {
	query := `SELECT c.id AS room_id, other.user_id AS friend_id, c.created_at
        FROM chat_rooms c
        JOIN chat_participants me ON me.room_id = c.id AND me.user_id = $1
        JOIN chat_participants other ON other.room_id = c.id AND other.user_id <> $1
        WHERE c.type = 'direct'
        ORDER BY c.created_at DESC`
	var rooms []models.RoomSummary
	err := r.db.SelectContext(ctx, &rooms, query, userID)
	return rooms, err
}
