package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"goodhub-chat/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

const searchLimit = 10

// ProfileRepository resolves user identities.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error)
	BulkProfiles(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error)
	SearchProfiles(ctx context.Context, term string, excludingUserID uuid.UUID) ([]models.Profile, error)
	UpsertProfile(ctx context.Context, profile models.Profile) (models.Profile, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `id, full_name, avatar_url, email, created_at, updated_at`

// GetProfile fetches one profile.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	var p models.Profile
	err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return p, err
}

// BulkProfiles fetches many profiles in one query. Unknown ids are skipped.
func (r *ProfileRepo) BulkProfiles(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}
	var profiles []models.Profile
	err := r.db.SelectContext(ctx, &profiles, `SELECT `+profileColumns+` FROM profiles WHERE id = ANY($1::uuid[])`, pq.Array(strs))
	return profiles, err
}

// SearchProfiles matches full names case-insensitively, excluding the caller.
func (r *ProfileRepo) SearchProfiles(ctx context.Context, term string, excludingUserID uuid.UUID) ([]models.Profile, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Profile{}, nil
	}
	var profiles []models.Profile
	err := r.db.SelectContext(ctx, &profiles, `SELECT `+profileColumns+` FROM profiles
        WHERE id<>$1 AND full_name ILIKE '%' || $2 || '%'
        ORDER BY full_name ASC LIMIT $3`, excludingUserID, escapeLike(term), searchLimit)
	return profiles, err
}

// UpsertProfile creates or updates the caller's profile.
func (r *ProfileRepo) UpsertProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRowxContext(ctx, `INSERT INTO profiles (id, full_name, avatar_url, email) VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, avatar_url = EXCLUDED.avatar_url,
            email = EXCLUDED.email, updated_at = NOW()
        RETURNING `+profileColumns, profile.ID, profile.FullName, profile.AvatarURL, profile.Email).
		StructScan(&p)
	return p, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
