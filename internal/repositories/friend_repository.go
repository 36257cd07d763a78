package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"goodhub-chat/internal/models"
)

var (
	ErrRequestNotFound = errors.New("friend request not found")
	ErrRequestExists   = errors.New("friend request already exists")
)

// FriendRepository is the source of truth for friendships.
type FriendRepository interface {
	ListFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	SendRequest(ctx context.Context, userID uuid.UUID, friendID uuid.UUID) error
	AcceptRequest(ctx context.Context, requesterID uuid.UUID, userID uuid.UUID) error
	RejectRequest(ctx context.Context, requesterID uuid.UUID, userID uuid.UUID) error
	AreFriends(ctx context.Context, userID uuid.UUID, friendID uuid.UUID) (bool, error)
}

// FriendRepo is a sqlx implementation of FriendRepository.
type FriendRepo struct {
	db *sqlx.DB
}

// NewFriendRepo constructs a FriendRepo.
func NewFriendRepo(db *sqlx.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

// ListFriendIDs returns accepted friends in either direction, deduplicated.
func (r *FriendRepo) ListFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `SELECT friend_id FROM friends WHERE user_id=$1 AND status='accepted'
        UNION
        SELECT user_id FROM friends WHERE friend_id=$1 AND status='accepted'`, userID)
	return ids, err
}

// ListIncomingRequests returns users with a pending request to userID, oldest first.
func (r *FriendRepo) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `SELECT user_id FROM friends WHERE friend_id=$1 AND status='pending'
        ORDER BY created_at ASC`, userID)
	return ids, err
}

// SendRequest stores a pending request from userID to friendID.
func (r *FriendRepo) SendRequest(ctx context.Context, userID uuid.UUID, friendID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO friends (user_id, friend_id, status) VALUES ($1, $2, $3)`,
		userID, friendID, models.FriendPending)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrRequestExists
	}
	return err
}

// AcceptRequest marks the request accepted and stores the mirrored row.
func (r *FriendRepo) AcceptRequest(ctx context.Context, requesterID uuid.UUID, userID uuid.UUID) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE friends SET status='accepted' WHERE user_id=$1 AND friend_id=$2 AND status='pending'`,
		requesterID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		err = ErrRequestNotFound
		return err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO friends (user_id, friend_id, status) VALUES ($1, $2, 'accepted')
        ON CONFLICT (user_id, friend_id) DO UPDATE SET status = 'accepted'`, userID, requesterID); err != nil {
		return err
	}
	return tx.Commit()
}

// RejectRequest deletes a pending request.
func (r *FriendRepo) RejectRequest(ctx context.Context, requesterID uuid.UUID, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM friends WHERE user_id=$1 AND friend_id=$2 AND status='pending'`,
		requesterID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// AreFriends reports whether an accepted friendship exists in either direction.
func (r *FriendRepo) AreFriends(ctx context.Context, userID uuid.UUID, friendID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM friends WHERE status='accepted'
        AND ((user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1)))`, userID, friendID)
	return exists, err
}
