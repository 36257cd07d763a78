package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"goodhub-chat/internal/logger"
	"goodhub-chat/internal/mocks"
	"goodhub-chat/internal/models"
)

// Requires Redis on localhost:6379; tests skip otherwise.
const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T) *Cache {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr, DialTimeout: time.Second})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	prefix := "goodhub-test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		cleanupKeys(ctx, client, prefix+"*")
		_ = client.Close()
	})
	return New(client, prefix, time.Minute)
}

func cleanupKeys(ctx context.Context, client *redis.Client, pattern string) {
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

func TestCacheSetGetDelete(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	var p models.Profile
	hit, err := c.Get(ctx, "k", &p)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "k", models.Profile{FullName: "Alice"}))
	hit, err = c.Get(ctx, "k", &p)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Alice", p.FullName)

	require.NoError(t, c.Delete(ctx, "k"))
	hit, err = c.Get(ctx, "k", &p)
	require.NoError(t, err)
	assert.False(t, hit)

	stats := c.Snapshot()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, uint64(1), stats.Sets)
	assert.InDelta(t, 1.0/3.0, stats.HitRate, 0.001)
}

func TestProfileCacheBulkLoadsOnlyMisses(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()
	repo := &mocks.ProfileRepositoryMock{}
	pc := NewProfileCache(repo, c, logger.Nop())

	alice := models.Profile{ID: uuid.New(), FullName: "Alice"}
	bob := models.Profile{ID: uuid.New(), FullName: "Bob"}
	require.NoError(t, c.Set(ctx, profileKey(alice.ID), alice))

	repo.On("BulkProfiles", mock.Anything, []uuid.UUID{bob.ID}).Return([]models.Profile{bob}, nil).Once()

	got, err := pc.BulkProfiles(ctx, []uuid.UUID{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, []string{got[0].FullName, got[1].FullName})

	// Second call is served entirely from Redis.
	got, err = pc.BulkProfiles(ctx, []uuid.UUID{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	repo.AssertExpectations(t)
}

func TestProfileCacheGetProfileCachesResult(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()
	repo := &mocks.ProfileRepositoryMock{}
	pc := NewProfileCache(repo, c, logger.Nop())

	alice := models.Profile{ID: uuid.New(), FullName: "Alice"}
	repo.On("GetProfile", mock.Anything, alice.ID).Return(alice, nil).Once()

	for i := 0; i < 2; i++ {
		got, err := pc.GetProfile(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.FullName)
	}
	repo.AssertExpectations(t)
}

func TestProfileCacheUpsertInvalidates(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()
	repo := &mocks.ProfileRepositoryMock{}
	pc := NewProfileCache(repo, c, logger.Nop())

	old := models.Profile{ID: uuid.New(), FullName: "Old"}
	updated := models.Profile{ID: old.ID, FullName: "New"}
	require.NoError(t, c.Set(ctx, profileKey(old.ID), old))

	repo.On("UpsertProfile", mock.Anything, updated).Return(updated, nil).Once()
	repo.On("GetProfile", mock.Anything, old.ID).Return(updated, nil).Once()

	_, err := pc.UpsertProfile(ctx, updated)
	require.NoError(t, err)

	got, err := pc.GetProfile(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.FullName)
	repo.AssertExpectations(t)
}

func TestProfileCacheFallsThroughWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	repo := &mocks.ProfileRepositoryMock{}
	pc := NewProfileCache(repo, New(client, "x:", time.Minute), logger.Nop())

	alice := models.Profile{ID: uuid.New(), FullName: "Alice"}
	repo.On("BulkProfiles", mock.Anything, []uuid.UUID{alice.ID}).Return([]models.Profile{alice}, nil).Once()

	got, err := pc.BulkProfiles(context.Background(), []uuid.UUID{alice.ID})
	require.NoError(t, err)
	assert.Equal(t, []models.Profile{alice}, got)
}

func TestProfileCachePropagatesRepositoryError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	repo := &mocks.ProfileRepositoryMock{}
	pc := NewProfileCache(repo, New(client, "x:", time.Minute), logger.Nop())

	id := uuid.New()
	repo.On("GetProfile", mock.Anything, id).Return(nil, errors.New("db down")).Once()

	_, err := pc.GetProfile(context.Background(), id)
	require.EqualError(t, err, "db down")
}
