package models

import (
	"time"

	"github.com/google/uuid"
)

// AnonymousName is shown for users without a display name.
const AnonymousName = "Anonymous"

// Profile is the public identity of a user.
type Profile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	AvatarURL string    `db:"avatar_url" json:"avatar_url"`
	Email     string    `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName falls back to AnonymousName for blank names.
func (p Profile) DisplayName() string {
	if p.FullName == "" {
		return AnonymousName
	}
	return p.FullName
}
