package fraud

import "time"

// Well-known action types recorded by the game backend. The engine
// accepts any free-form tag; these are the ones the builtin detectors
// and the ad lifecycle care about.
const (
	ActionViewAd            = "view_ad"
	ActionClickAd           = "click_ad"
	ActionSuspiciousAdClick = "suspicious_ad_click"
	ActionCloseAd           = "close_ad"
	ActionSelfEliminate     = "self_eliminate"
	ActionEarnCoins         = "earn_coins"
	ActionBuyItem           = "buy_item"
)

// Action is one recorded player action. Details is a free-form mapping;
// expected keys per type: "amount" for earn_coins, "item_id" and "price"
// for buy_item.
type Action struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Epoch returns the action time as fractional epoch seconds.
func (a Action) Epoch() float64 {
	return float64(a.Timestamp.UnixNano()) / float64(time.Second)
}

// Detail returns a raw detail value, or nil when absent.
func (a Action) Detail(key string) interface{} {
	if a.Details == nil {
		return nil
	}
	return a.Details[key]
}

// DetailFloat returns a numeric detail value, or 0 when absent or not a
// number.
func (a Action) DetailFloat(key string) float64 {
	return detailFloat(a.Details, key)
}

// detailFloat extracts a numeric detail value. JSON round-trips turn
// numbers into float64, direct callers may pass int.
func detailFloat(details map[string]interface{}, key string) float64 {
	if details == nil {
		return 0
	}
	switch v := details[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
