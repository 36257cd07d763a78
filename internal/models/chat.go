package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomType distinguishes direct rooms from group rooms.
type RoomType string

const (
	RoomTypeDirect RoomType = "direct"
	RoomTypeGroup  RoomType = "group"
)

// Room is a conversation container. Direct rooms carry the canonical pair key
// of their two participants.
type Room struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Type      RoomType  `db:"type" json:"type"`
	CreatedBy uuid.UUID `db:"created_by" json:"created_by"`
	PairKey   *string   `db:"pair_key" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Participant is a membership edge between a room and a user.
type Participant struct {
	RoomID   uuid.UUID `db:"room_id" json:"room_id"`
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// RoomSummary is the per-user view of a direct room.
type RoomSummary struct {
	RoomID     uuid.UUID `db:"room_id" json:"room_id"`
	FriendID   uuid.UUID `db:"friend_id" json:"friend_id"`
	FriendName string    `db:"-" json:"friend_name,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DirectPairKey returns the order-independent key of two participants.
func DirectPairKey(a, b uuid.UUID) string {
	if a.String() > b.String() {
		a, b = b, a
	}
	return a.String() + ":" + b.String()
}
