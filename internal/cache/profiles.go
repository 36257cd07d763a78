package cache

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"goodhub-chat/internal/logger"
	"goodhub-chat/internal/models"
	"goodhub-chat/internal/repositories"
)

// ProfileCache decorates a ProfileRepository with cache-aside lookups.
// Cache failures fall through to the repository.
type ProfileCache struct {
	repositories.ProfileRepository
	cache *Cache
	log   *logger.Logger
}

// NewProfileCache wraps repo.
func NewProfileCache(repo repositories.ProfileRepository, cache *Cache, log *logger.Logger) *ProfileCache {
	return &ProfileCache{ProfileRepository: repo, cache: cache, log: log.With("component", "ProfileCache")}
}

func profileKey(id uuid.UUID) string {
	return "profile:" + id.String()
}

// GetProfile returns a cached profile or loads and caches it.
func (c *ProfileCache) GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	var p models.Profile
	hit, err := c.cache.Get(ctx, profileKey(userID), &p)
	if err != nil {
		c.log.Warn("profile cache read failed", "error", err)
	}
	if hit {
		return p, nil
	}
	p, err = c.ProfileRepository.GetProfile(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	c.store(ctx, p)
	return p, nil
}

// BulkProfiles serves hits from the cache and loads the rest in one query.
func (c *ProfileCache) BulkProfiles(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKey(id)
	}
	cached, err := c.cache.GetMany(ctx, keys)
	if err != nil {
		c.log.Warn("profile cache read failed", "error", err)
		cached = map[string][]byte{}
	}

	result := make([]models.Profile, 0, len(ids))
	missing := make([]uuid.UUID, 0, len(ids))
	for i, id := range ids {
		raw, ok := cached[keys[i]]
		if !ok {
			missing = append(missing, id)
			continue
		}
		var p models.Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			missing = append(missing, id)
			continue
		}
		result = append(result, p)
	}
	if len(missing) == 0 {
		return result, nil
	}

	loaded, err := c.ProfileRepository.BulkProfiles(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, p := range loaded {
		c.store(ctx, p)
	}
	return append(result, loaded...), nil
}

// UpsertProfile writes through and invalidates the cached copy.
func (c *ProfileCache) UpsertProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	p, err := c.ProfileRepository.UpsertProfile(ctx, profile)
	if err != nil {
		return models.Profile{}, err
	}
	if err := c.cache.Delete(ctx, profileKey(p.ID)); err != nil {
		c.log.Warn("profile cache invalidation failed", "error", err)
	}
	return p, nil
}

func (c *ProfileCache) store(ctx context.Context, p models.Profile) {
	if err := c.cache.Set(ctx, profileKey(p.ID), p); err != nil {
		c.log.Warn("profile cache write failed", "error", err)
	}
}

var _ repositories.ProfileRepository = (*ProfileCache)(nil)
