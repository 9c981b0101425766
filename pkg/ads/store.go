package ads

import (
	"context"
	"sync"
	"time"
)

// ConfigProvider supplies the active ad configuration. A nil config with
// a nil error means ads are not configured.
type ConfigProvider interface {
	ActiveConfig(ctx context.Context) (*Config, error)
}

// UnitStore looks up ad units for a configuration.
type UnitStore interface {
	// FindActiveUnit returns an active unit for the placement, or nil
	// when none exists.
	FindActiveUnit(ctx context.Context, configID, placement string) (*AdUnit, error)
}

// DisplayFilter narrows display queries. Empty fields are ignored;
// non-empty fields must all match.
type DisplayFilter struct {
	SessionID string
	IPAddress string
	PlayerID  string
	AdUnitID  string
}

func (f DisplayFilter) matches(d *Display) bool {
	if f.SessionID != "" && d.SessionID != f.SessionID {
		return false
	}
	if f.IPAddress != "" && d.IPAddress != f.IPAddress {
		return false
	}
	if f.PlayerID != "" && d.PlayerID != f.PlayerID {
		return false
	}
	if f.AdUnitID != "" && d.AdUnitID != f.AdUnitID {
		return false
	}
	return true
}

// DisplayStore persists ad displays. since boundaries are exclusive:
// a display exactly at since does not qualify, matching the window
// semantics used everywhere else.
type DisplayStore interface {
	// Save inserts or updates a display.
	Save(ctx context.Context, d *Display) error

	// Get returns a display by ID, or nil when absent.
	Get(ctx context.Context, id string) (*Display, error)

	// FindRecent returns the most recent matching display shown after
	// since, or nil.
	FindRecent(ctx context.Context, filter DisplayFilter, since time.Time) (*Display, error)

	// Count returns how many matching displays were shown after since.
	Count(ctx context.Context, filter DisplayFilter, since time.Time) (int, error)
}

// StaticConfigProvider serves one fixed configuration. Used when the ad
// console pushes config through the environment, and in tests.
type StaticConfigProvider struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewStaticConfigProvider creates a provider. cfg may be nil to model
// the not-configured state.
func NewStaticConfigProvider(cfg *Config) *StaticConfigProvider {
	return &StaticConfigProvider{cfg: cfg}
}

// ActiveConfig implements ConfigProvider.
func (p *StaticConfigProvider) ActiveConfig(ctx context.Context) (*Config, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg, nil
}

// SetConfig swaps the active configuration.
func (p *StaticConfigProvider) SetConfig(cfg *Config) {
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
}

// MemoryUnitStore keeps ad units in memory.
type MemoryUnitStore struct {
	mu    sync.RWMutex
	units []AdUnit
}

// NewMemoryUnitStore creates a unit store with the given units.
func NewMemoryUnitStore(units ...AdUnit) *MemoryUnitStore {
	return &MemoryUnitStore{units: units}
}

// Add registers a unit.
func (s *MemoryUnitStore) Add(u AdUnit) {
	s.mu.Lock()
	s.units = append(s.units, u)
	s.mu.Unlock()
}

// FindActiveUnit implements UnitStore.
func (s *MemoryUnitStore) FindActiveUnit(ctx context.Context, configID, placement string) (*AdUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.units {
		u := s.units[i]
		if u.Active && u.ConfigID == configID && u.Placement == placement {
			return &u, nil
		}
	}
	return nil, nil
}

// MemoryDisplayStore keeps displays in a process-local map.
type MemoryDisplayStore struct {
	mu       sync.RWMutex
	byID     map[string]*Display
	displays []*Display
}

// NewMemoryDisplayStore creates an empty display store.
func NewMemoryDisplayStore() *MemoryDisplayStore {
	return &MemoryDisplayStore{
		byID: make(map[string]*Display),
	}
}

// Save implements DisplayStore.
func (s *MemoryDisplayStore) Save(ctx context.Context, d *Display) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *d
	if existing, ok := s.byID[d.ID]; ok {
		*existing = cp
		return nil
	}
	s.byID[d.ID] = &cp
	s.displays = append(s.displays, &cp)
	return nil
}

// Get implements DisplayStore.
func (s *MemoryDisplayStore) Get(ctx context.Context, id string) (*Display, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

// FindRecent implements DisplayStore.
func (s *MemoryDisplayStore) FindRecent(ctx context.Context, filter DisplayFilter, since time.Time) (*Display, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *Display
	for _, d := range s.displays {
		if !d.DisplayedAt.After(since) || !filter.matches(d) {
			continue
		}
		if best == nil || d.DisplayedAt.After(best.DisplayedAt) {
			best = d
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

// Count implements DisplayStore.
func (s *MemoryDisplayStore) Count(ctx context.Context, filter DisplayFilter, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, d := range s.displays {
		if d.DisplayedAt.After(since) && filter.matches(d) {
			count++
		}
	}
	return count, nil
}
