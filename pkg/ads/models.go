// Package ads contains the ad pacing and protection engines: eligibility
// gating for showing an ad and the protected display lifecycle.
package ads

import "time"

// Placements known to the game frontend.
const (
	PlacementLogin  = "login"
	PlacementMining = "mining"
)

// Settings are the parsed ad settings of the active configuration.
type Settings struct {
	LoginAdsEnabled     bool `json:"login_ads_enabled"`
	MiningAdsEnabled    bool `json:"mining_ads_enabled"`
	AdIntervalMinutes   int  `json:"ad_interval_minutes"`
	AdProtectionSeconds int  `json:"ad_protection_seconds"`
	FraudScoreThreshold int  `json:"fraud_detection_threshold"`
}

// DefaultSettings returns the settings applied when the active
// configuration doesn't specify a value.
func DefaultSettings() Settings {
	return Settings{
		LoginAdsEnabled:     true,
		MiningAdsEnabled:    true,
		AdIntervalMinutes:   10,
		AdProtectionSeconds: 30,
		FraudScoreThreshold: 80,
	}
}

// PlacementEnabled reports whether ads are enabled for a placement.
// Unknown placements are enabled; gating them is config's job via ad
// units.
func (s Settings) PlacementEnabled(placement string) bool {
	switch placement {
	case PlacementLogin:
		return s.LoginAdsEnabled
	case PlacementMining:
		return s.MiningAdsEnabled
	default:
		return true
	}
}

// Interval returns the minimum duration between displays of the same ad
// unit to the same actor.
func (s Settings) Interval() time.Duration {
	return time.Duration(s.AdIntervalMinutes) * time.Minute
}

// Protection returns the minimum time an ad must stay on screen.
func (s Settings) Protection() time.Duration {
	return time.Duration(s.AdProtectionSeconds) * time.Second
}

// Config is the active ad configuration, owned by the ad console and
// read-only here.
type Config struct {
	ID       string   `json:"id"`
	Settings Settings `json:"settings"`
}

// AdUnit identifies one placement slot, owned by ad configuration.
type AdUnit struct {
	ID        string `json:"id"`
	ConfigID  string `json:"configId"`
	Placement string `json:"placement"`
	Active    bool   `json:"active"`
}

// DisplayStatus is the lifecycle state of one ad impression.
type DisplayStatus string

const (
	StatusDisplayed DisplayStatus = "displayed"
	StatusClicked   DisplayStatus = "clicked"
	StatusClosed    DisplayStatus = "closed"
)

// Display is one ad impression, from creation through protected viewing
// to click and close. Records are never deleted here; retention is
// managed externally.
type Display struct {
	ID             string        `json:"id"`
	AdUnitID       string        `json:"adUnitId"`
	PlayerID       string        `json:"playerId,omitempty"`
	SessionID      string        `json:"sessionId"`
	IPAddress      string        `json:"ipAddress"`
	UserAgent      string        `json:"userAgent"`
	DisplayedAt    time.Time     `json:"displayedAt"`
	ProtectionEnd  time.Time     `json:"protectionEndTime"`
	Status         DisplayStatus `json:"status"`
	ClickTimestamp *time.Time    `json:"clickTimestamp,omitempty"`
	ClosedAt       *time.Time    `json:"closedAt,omitempty"`
	WasClicked     bool          `json:"wasClicked"`
}

// CanBeClosed reports whether the protection window has elapsed at now.
func (d *Display) CanBeClosed(now time.Time) bool {
	return !now.Before(d.ProtectionEnd)
}
