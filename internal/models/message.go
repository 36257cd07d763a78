package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is an append-only chat message.
type Message struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RoomID    uuid.UUID `db:"room_id" json:"room_id"`
	SenderID  uuid.UUID `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MessageView is a message decorated with its sender's display name.
type MessageView struct {
	Message
	SenderName string `json:"sender_name"`
}

// InsertEvent signals that a message row was appended to a room.
type InsertEvent struct {
	RoomID    uuid.UUID `json:"room_id"`
	MessageID uuid.UUID `json:"message_id"`
}

// ChatEvent is sent to websocket clients.
type ChatEvent struct {
	Type     string        `json:"type"`
	RoomID   *uuid.UUID    `json:"room_id,omitempty"`
	Room     *Room         `json:"room,omitempty"`
	Messages []MessageView `json:"messages"`
	Error    string        `json:"error,omitempty"`
}
