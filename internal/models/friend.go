package models

import (
	"time"

	"github.com/google/uuid"
)

// FriendStatus is the state of a friendship row.
type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
	FriendBlocked  FriendStatus = "blocked"
)

// Friendship is a directed row (user -> friend). An accepted friendship is
// stored in both directions.
type Friendship struct {
	UserID    uuid.UUID    `db:"user_id" json:"user_id"`
	FriendID  uuid.UUID    `db:"friend_id" json:"friend_id"`
	Status    FriendStatus `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
