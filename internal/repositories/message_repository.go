package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"goodhub-chat/internal/models"
)

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	ListMessages(ctx context.Context, roomID uuid.UUID) ([]models.Message, error)
	InsertMessage(ctx context.Context, roomID uuid.UUID, senderID uuid.UUID, content string) (models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// ListMessages returns all messages of a room, oldest first.
func (r *MessageRepo) ListMessages(ctx context.Context, roomID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, room_id, sender_id, content, created_at FROM messages
        WHERE room_id=$1 ORDER BY created_at ASC, id ASC`, roomID)
	return msgs, err
}

// InsertMessage appends a message to a room.
func (r *MessageRepo) InsertMessage(ctx context.Context, roomID uuid.UUID, senderID uuid.UUID, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (room_id, sender_id, content) VALUES ($1, $2, $3)
        RETURNING id, room_id, sender_id, content, created_at`, roomID, senderID, content).
		StructScan(&msg)
	return msg, err
}
