package fraud

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func TestRedisProfileStoreNewPlayer(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	store := NewRedisProfileStore(client, RedisProfileStoreConfig{})

	profile, err := store.GetProfile(context.Background(), "player-1")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if profile == nil {
		t.Fatal("GetProfile() returned nil for a new player")
	}
	if profile.PlayerID != "player-1" {
		t.Errorf("PlayerID = %q, expected player-1", profile.PlayerID)
	}
	if len(profile.History) != 0 || profile.Suspicion != 0 {
		t.Errorf("new profile should be empty: %+v", profile)
	}
}

func TestRedisProfileStoreRoundTrip(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	store := NewRedisProfileStore(client, RedisProfileStoreConfig{})
	ctx := context.Background()

	profile := NewProfile("player-1")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	profile.Record(Action{Timestamp: now, Type: ActionEarnCoins, Details: map[string]interface{}{"amount": 2.5}})
	profile.Record(Action{Timestamp: now.Add(time.Second), Type: ActionBuyItem})
	profile.Suspicion = 15
	profile.WarningsIssued = 1

	if err := store.UpdateProfile(ctx, "player-1", profile); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	got, err := store.GetProfile(ctx, "player-1")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got.Suspicion != 15 || got.WarningsIssued != 1 {
		t.Errorf("counters not preserved: %+v", got)
	}
	if len(got.History) != 2 {
		t.Fatalf("History length = %d, expected 2", len(got.History))
	}
	if got.History[0].Type != ActionEarnCoins {
		t.Errorf("History[0].Type = %q, expected %q", got.History[0].Type, ActionEarnCoins)
	}
	if got.History[0].DetailFloat("amount") != 2.5 {
		t.Errorf("action details not preserved: %+v", got.History[0].Details)
	}
	if got.ActionCounts[ActionBuyItem] != 1 {
		t.Errorf("ActionCounts not preserved: %+v", got.ActionCounts)
	}
	if !got.History[0].Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, expected %v", got.History[0].Timestamp, now)
	}
}

func TestRedisProfileStoreTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	store := NewRedisProfileStore(client, RedisProfileStoreConfig{TTL: time.Hour})
	ctx := context.Background()

	if err := store.UpdateProfile(ctx, "player-1", NewProfile("player-1")); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	ttl := mr.TTL(makeProfileKey("player-1"))
	if ttl != time.Hour {
		t.Errorf("TTL = %v, expected 1h", ttl)
	}

	// After the TTL the profile is gone and a fresh one is served.
	mr.FastForward(2 * time.Hour)
	profile, err := store.GetProfile(ctx, "player-1")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if len(profile.History) != 0 {
		t.Errorf("expired profile should come back empty")
	}
}

func TestRedisProfileStoreDelete(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	store := NewRedisProfileStore(client, RedisProfileStoreConfig{})
	ctx := context.Background()

	profile := NewProfile("player-1")
	profile.Suspicion = 40
	if err := store.UpdateProfile(ctx, "player-1", profile); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	if err := store.DeleteProfile(ctx, "player-1"); err != nil {
		t.Fatalf("DeleteProfile() error = %v", err)
	}

	got, err := store.GetProfile(ctx, "player-1")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got.Suspicion != 0 {
		t.Errorf("deleted profile should come back empty, got suspicion %d", got.Suspicion)
	}
}
