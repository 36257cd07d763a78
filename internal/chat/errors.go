package chat

import "errors"

var (
	// ErrLookup wraps failures while reading rooms, participants, messages or profiles.
	ErrLookup = errors.New("lookup failed")
	// ErrMutation wraps failures while creating rooms or appending messages.
	ErrMutation = errors.New("mutation failed")

	ErrSelfChat       = errors.New("cannot chat with yourself")
	ErrNotFriends     = errors.New("users are not friends")
	ErrNotParticipant = errors.New("not a chat member")
	ErrNoActiveRoom   = errors.New("no active chat")
	ErrClosed         = errors.New("conversation closed")
)
