package fraud

import "time"

// HistoryCapacity bounds the per-player action ring. Oldest entries are
// evicted first; insertion order equals chronological order.
const HistoryCapacity = 100

// Profile aggregates everything the engine knows about one player. It is
// created lazily on the first recorded action and lives for the process
// lifetime (or until the backing store evicts it).
type Profile struct {
	PlayerID string `json:"playerId"`

	// History is the bounded action ring, oldest first.
	History []Action `json:"history"`

	// ActionCounts holds lifetime counts per action type. Unlike History
	// these are never evicted.
	ActionCounts map[string]int `json:"actionCounts"`

	// LastActions stamps the most recent occurrence per action type.
	LastActions map[string]time.Time `json:"lastActions"`

	// Suspicion accumulates across detector hits. It is unbounded here
	// and clamped to [0,100] only when reported as a risk score.
	Suspicion int `json:"suspicion"`

	// WarningsIssued counts player warnings. The first-warning message
	// fires only while this is zero.
	WarningsIssued int `json:"warningsIssued"`
}

// NewProfile creates an empty profile for a player.
func NewProfile(playerID string) *Profile {
	return &Profile{
		PlayerID:     playerID,
		History:      []Action{},
		ActionCounts: make(map[string]int),
		LastActions:  make(map[string]time.Time),
	}
}

// Record appends an action to the ring and updates the aggregates.
func (p *Profile) Record(a Action) {
	p.History = append(p.History, a)
	if len(p.History) > HistoryCapacity {
		p.History = p.History[len(p.History)-HistoryCapacity:]
	}

	if p.ActionCounts == nil {
		p.ActionCounts = make(map[string]int)
	}
	if p.LastActions == nil {
		p.LastActions = make(map[string]time.Time)
	}
	p.ActionCounts[a.Type]++
	p.LastActions[a.Type] = a.Timestamp
}

// Recent returns the last n actions from the ring, oldest first.
func (p *Profile) Recent(n int) []Action {
	if n <= 0 || len(p.History) == 0 {
		return nil
	}
	if n > len(p.History) {
		n = len(p.History)
	}
	return p.History[len(p.History)-n:]
}

// ActionsOfType returns all retained actions of the given type, oldest
// first.
func (p *Profile) ActionsOfType(actionType string) []Action {
	var out []Action
	for _, a := range p.History {
		if a.Type == actionType {
			out = append(out, a)
		}
	}
	return out
}

// TotalActions returns the lifetime action count across all types.
func (p *Profile) TotalActions() int {
	total := 0
	for _, c := range p.ActionCounts {
		total += c
	}
	return total
}

// DistinctActionTypes returns how many different action types the player
// has performed.
func (p *Profile) DistinctActionTypes() int {
	return len(p.ActionCounts)
}

// FirstActionAt returns the timestamp of the oldest retained action.
// The zero time is returned for an empty history.
func (p *Profile) FirstActionAt() time.Time {
	if len(p.History) == 0 {
		return time.Time{}
	}
	first := p.History[0].Timestamp
	for _, a := range p.History[1:] {
		if a.Timestamp.Before(first) {
			first = a.Timestamp
		}
	}
	return first
}

// LastActionAt returns the timestamp of the newest retained action.
func (p *Profile) LastActionAt() time.Time {
	if len(p.History) == 0 {
		return time.Time{}
	}
	return p.History[len(p.History)-1].Timestamp
}
