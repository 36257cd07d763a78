package chat

import "github.com/google/uuid"

// Session identifies the signed-in user an operation runs on behalf of.
type Session struct {
	UserID uuid.UUID
}
