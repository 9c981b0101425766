package fraud

import (
	"context"
	"sync"
	"time"
)

// ProfileStore defines the interface for accessing player fraud profiles.
// This allows for easier testing and different storage implementations:
// the in-memory store below for single-node deployments and tests, the
// Redis store for shared state across instances.
type ProfileStore interface {
	// GetProfile returns the profile for a player, creating an empty one
	// when none exists yet.
	GetProfile(ctx context.Context, playerID string) (*Profile, error)

	// UpdateProfile persists the profile for a player.
	UpdateProfile(ctx context.Context, playerID string, profile *Profile) error
}

// MemoryProfileStore keeps profiles in a process-local map.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewMemoryProfileStore creates an empty in-memory store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{
		profiles: make(map[string]*Profile),
	}
}

// GetProfile implements ProfileStore. The returned profile is a private
// copy; callers persist changes with UpdateProfile.
func (s *MemoryProfileStore) GetProfile(ctx context.Context, playerID string) (*Profile, error) {
	s.mu.RLock()
	p, ok := s.profiles[playerID]
	s.mu.RUnlock()

	if !ok {
		return NewProfile(playerID), nil
	}
	return copyProfile(p), nil
}

// UpdateProfile implements ProfileStore.
func (s *MemoryProfileStore) UpdateProfile(ctx context.Context, playerID string, profile *Profile) error {
	s.mu.Lock()
	s.profiles[playerID] = copyProfile(profile)
	s.mu.Unlock()
	return nil
}

func copyProfile(p *Profile) *Profile {
	cp := &Profile{
		PlayerID:       p.PlayerID,
		History:        make([]Action, len(p.History)),
		ActionCounts:   make(map[string]int, len(p.ActionCounts)),
		LastActions:    make(map[string]time.Time, len(p.LastActions)),
		Suspicion:      p.Suspicion,
		WarningsIssued: p.WarningsIssued,
	}
	copy(cp.History, p.History)
	for k, v := range p.ActionCounts {
		cp.ActionCounts[k] = v
	}
	for k, v := range p.LastActions {
		cp.LastActions[k] = v
	}
	return cp
}
