package ads

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	displayKeyPrefix = "shield:ad_display:"
	displayIdxPrefix = "shield:ad_display_idx:"

	// DefaultDisplayTTL keeps displays long enough to cover the widest
	// volume window plus review slack.
	DefaultDisplayTTL = 48 * time.Hour
)

// RedisDisplayStore persists displays as JSON values keyed by display
// ID, with sorted-set indexes per session, IP and player scored by
// display time so recency lookups and window counts stay O(log n).
type RedisDisplayStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDisplayStore creates a display store backed by the given
// Redis client. A non-positive ttl falls back to DefaultDisplayTTL.
func NewRedisDisplayStore(client *redis.Client, ttl time.Duration) *RedisDisplayStore {
	if ttl <= 0 {
		ttl = DefaultDisplayTTL
	}
	return &RedisDisplayStore{client: client, ttl: ttl}
}

func displayKey(id string) string {
	return displayKeyPrefix + id
}

func displayIdxKey(field, value string) string {
	return displayIdxPrefix + field + ":" + value
}

func displayUnitIdxKey(field, value, unitID string) string {
	return displayIdxPrefix + field + ":" + value + ":unit:" + unitID
}

func (s *RedisDisplayStore) indexKeys(d *Display) []string {
	keys := make([]string, 0, 6)
	if d.SessionID != "" {
		keys = append(keys,
			displayIdxKey("session", d.SessionID),
			displayUnitIdxKey("session", d.SessionID, d.AdUnitID))
	}
	if d.IPAddress != "" {
		keys = append(keys,
			displayIdxKey("ip", d.IPAddress),
			displayUnitIdxKey("ip", d.IPAddress, d.AdUnitID))
	}
	if d.PlayerID != "" {
		keys = append(keys,
			displayIdxKey("player", d.PlayerID),
			displayUnitIdxKey("player", d.PlayerID, d.AdUnitID))
	}
	return keys
}

// Save implements DisplayStore.
func (s *RedisDisplayStore) Save(ctx context.Context, d *Display) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal ad display %s: %w", d.ID, err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, displayKey(d.ID), data, s.ttl)

	score := float64(d.DisplayedAt.UnixMilli())
	staleBefore := strconv.FormatInt(d.DisplayedAt.Add(-s.ttl).UnixMilli(), 10)
	for _, key := range s.indexKeys(d) {
		pipe.ZAdd(ctx, key, &redis.Z{Score: score, Member: d.ID})
		pipe.ZRemRangeByScore(ctx, key, "-inf", staleBefore)
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save ad display %s: %w", d.ID, err)
	}
	return nil
}

// Get implements DisplayStore.
func (s *RedisDisplayStore) Get(ctx context.Context, id string) (*Display, error) {
	data, err := s.client.Get(ctx, displayKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ad display %s: %w", id, err)
	}

	var d Display
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ad display %s: %w", id, err)
	}
	return &d, nil
}

// filterIndexKey resolves the single index covering the filter. The
// eligibility checks always query by exactly one scope field,
// optionally narrowed to a unit.
func filterIndexKey(filter DisplayFilter) (string, bool) {
	field, value := "", ""
	switch {
	case filter.SessionID != "":
		field, value = "session", filter.SessionID
	case filter.IPAddress != "":
		field, value = "ip", filter.IPAddress
	case filter.PlayerID != "":
		field, value = "player", filter.PlayerID
	default:
		return "", false
	}
	if filter.AdUnitID != "" {
		return displayUnitIdxKey(field, value, filter.AdUnitID), true
	}
	return displayIdxKey(field, value), true
}

// FindRecent implements DisplayStore.
func (s *RedisDisplayStore) FindRecent(ctx context.Context, filter DisplayFilter, since time.Time) (*Display, error) {
	key, ok := filterIndexKey(filter)
	if !ok {
		return nil, fmt.Errorf("ad display lookup requires a session, ip or player filter")
	}

	ids, err := s.client.ZRevRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:   "(" + strconv.FormatInt(since.UnixMilli(), 10),
		Max:   "+inf",
		Count: 1,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query ad display index %s: %w", key, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	d, err := s.Get(ctx, ids[0])
	if err != nil {
		return nil, err
	}
	if d == nil {
		// Index member outlived its value; treat as no display.
		return nil, nil
	}
	return d, nil
}

// Count implements DisplayStore.
func (s *RedisDisplayStore) Count(ctx context.Context, filter DisplayFilter, since time.Time) (int, error) {
	key, ok := filterIndexKey(filter)
	if !ok {
		return 0, fmt.Errorf("ad display count requires a session, ip or player filter")
	}

	n, err := s.client.ZCount(ctx, key,
		"("+strconv.FormatInt(since.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count ad display index %s: %w", key, err)
	}
	return int(n), nil
}
