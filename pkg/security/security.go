// Package security provides the audit event sink used by every engine.
// Logging an event never affects control flow: the sink is fire-and-forget
// and must be safe to call from any goroutine.
package security

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dooficoin/dooficoin-shield/pkg/metrics"
)

// Severity classifies an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Event is a single audit record.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	ActorID   string    `json:"actor_id,omitempty"`
}

// Logger is the sink interface engines depend on.
type Logger interface {
	// LogEvent records a security event. actorID may be empty for
	// anonymous traffic.
	LogEvent(eventType, message string, severity Severity, actorID string)
}

// AuditLogger writes security events through logrus and counts critical
// events for alerting.
type AuditLogger struct {
	log *logrus.Logger
}

// NewAuditLogger creates a sink backed by the given logrus logger.
// Passing nil uses the standard logger.
func NewAuditLogger(log *logrus.Logger) *AuditLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuditLogger{log: log}
}

// LogEvent implements Logger.
func (a *AuditLogger) LogEvent(eventType, message string, severity Severity, actorID string) {
	entry := a.log.WithFields(logrus.Fields{
		"event_type": eventType,
		"severity":   string(severity),
	})
	if actorID != "" {
		entry = entry.WithField("actor_id", actorID)
	}

	metrics.SecurityEventsTotal.WithLabelValues(eventType, string(severity)).Inc()

	switch severity {
	case SeverityWarning:
		entry.Warn(message)
	case SeverityError:
		entry.Error(message)
	case SeverityCritical:
		// Critical events stay at error level so the process keeps
		// running; enforcement is an external decision.
		entry.Error(message)
	default:
		entry.Info(message)
	}
}

// NopLogger discards all events. Useful in tests that don't assert on
// audit output.
type NopLogger struct{}

// LogEvent implements Logger.
func (NopLogger) LogEvent(eventType, message string, severity Severity, actorID string) {}
