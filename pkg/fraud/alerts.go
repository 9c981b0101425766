package fraud

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/pkg/metrics"
)

// DefaultAlertListLimit caps List results when no limit is given.
const DefaultAlertListLimit = 50

// Alert is an immutable fraud alert awaiting admin review.
type Alert struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	PlayerID   string                 `json:"playerId"`
	AlertType  string                 `json:"alertType"`
	Details    map[string]interface{} `json:"details"`
	Reviewed   bool                   `json:"reviewed"`
	ReviewedBy string                 `json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time             `json:"reviewedAt,omitempty"`
	Note       string                 `json:"note,omitempty"`
}

// AlertLog is the append-only fraud alert list. Alerts are only ever
// appended or marked reviewed in place.
type AlertLog struct {
	mu     sync.RWMutex
	alerts []*Alert
	byID   map[string]*Alert
	now    func() time.Time
}

// NewAlertLog creates an empty alert log.
func NewAlertLog() *AlertLog {
	return &AlertLog{
		byID: make(map[string]*Alert),
		now:  time.Now,
	}
}

// Create appends a new unreviewed alert and returns a copy of it.
func (l *AlertLog) Create(playerID, alertType string, details map[string]interface{}) Alert {
	l.mu.Lock()
	defer l.mu.Unlock()

	alert := &Alert{
		ID:        uuid.NewString(),
		Timestamp: l.now(),
		PlayerID:  playerID,
		AlertType: alertType,
		Details:   details,
	}
	l.alerts = append(l.alerts, alert)
	l.byID[alert.ID] = alert

	logrus.Warnf("fraud alert %s for player %s: %s", alert.ID, playerID, alertType)
	metrics.FraudAlertsTotal.WithLabelValues(alertType).Inc()

	return *alert
}

// List returns alerts newest first, optionally filtered by reviewed
// state. limit <= 0 uses DefaultAlertListLimit.
func (l *AlertLog) List(reviewed *bool, limit int) []Alert {
	if limit <= 0 {
		limit = DefaultAlertListLimit
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Alert, 0, limit)
	for i := len(l.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		a := l.alerts[i]
		if reviewed != nil && a.Reviewed != *reviewed {
			continue
		}
		out = append(out, *a)
	}
	return out
}

// MarkReviewed marks an alert as reviewed by an admin. Marking an
// already-reviewed alert is harmless but does not overwrite the original
// reviewer. Returns false when the alert doesn't exist.
func (l *AlertLog) MarkReviewed(alertID, reviewerID, note string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	alert, ok := l.byID[alertID]
	if !ok {
		return false
	}
	if alert.Reviewed {
		return true
	}

	now := l.now()
	alert.Reviewed = true
	alert.ReviewedBy = reviewerID
	alert.ReviewedAt = &now
	if note != "" {
		alert.Note = note
	}
	return true
}

// Count returns the total number of alerts in the log.
func (l *AlertLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.alerts)
}
