package fraud

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// profileStoreDefaultTTL is the TTL for player profiles in Redis (30 days).
	profileStoreDefaultTTL = 30 * 24 * time.Hour
	// profileStoreKeyPrefix is the prefix for all fraud profile keys.
	profileStoreKeyPrefix = "shield:fraud_profile:"
)

// RedisProfileStore implements ProfileStore using Redis, so multiple
// service instances score against the same state.
type RedisProfileStore struct {
	client redis.UniversalClient
	cfg    RedisProfileStoreConfig
}

type RedisProfileStoreConfig struct {
	// TTL overrides the default profile retention when positive.
	TTL time.Duration
}

// NewRedisProfileStore creates a new Redis-backed profile store.
func NewRedisProfileStore(client redis.UniversalClient, cfg RedisProfileStoreConfig) *RedisProfileStore {
	if cfg.TTL <= 0 {
		cfg.TTL = profileStoreDefaultTTL
	}
	return &RedisProfileStore{
		client: client,
		cfg:    cfg,
	}
}

func makeProfileKey(playerID string) string {
	return fmt.Sprintf("%s%s", profileStoreKeyPrefix, playerID)
}

// GetProfile retrieves the fraud profile for a player from Redis.
func (r *RedisProfileStore) GetProfile(ctx context.Context, playerID string) (*Profile, error) {
	key := makeProfileKey(playerID)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		logrus.Debugf("no existing profile for player %s, returning new profile", playerID)
		return NewProfile(playerID), nil
	}
	if err != nil {
		logrus.Errorf("failed to get profile for player %s: %v", playerID, err)
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		logrus.Errorf("failed to unmarshal profile for player %s: %v", playerID, err)
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

// UpdateProfile persists the fraud profile for a player in Redis.
func (r *RedisProfileStore) UpdateProfile(ctx context.Context, playerID string, profile *Profile) error {
	key := makeProfileKey(playerID)

	data, err := json.Marshal(profile)
	if err != nil {
		logrus.Errorf("failed to marshal profile for player %s: %v", playerID, err)
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.cfg.TTL).Err(); err != nil {
		logrus.Errorf("failed to set profile for player %s: %v", playerID, err)
		return fmt.Errorf("failed to set profile: %w", err)
	}

	return nil
}

// DeleteProfile removes the fraud profile for a player from Redis.
func (r *RedisProfileStore) DeleteProfile(ctx context.Context, playerID string) error {
	key := makeProfileKey(playerID)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		logrus.Errorf("failed to delete profile for player %s: %v", playerID, err)
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	logrus.Infof("deleted profile for player %s", playerID)
	return nil
}
