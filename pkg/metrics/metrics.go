// Package metrics defines the Prometheus collectors exposed by the
// metrics server. Collectors are package-level so engines can increment
// them directly; registration happens once in internal/server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// FraudAlertsTotal counts fraud alerts by alert type.
	FraudAlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shield_fraud_alerts_total",
			Help: "Total number of fraud alerts raised",
		},
		[]string{"alert_type"},
	)

	// FraudWarningsTotal counts one-time player warnings.
	FraudWarningsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shield_fraud_warnings_total",
			Help: "Total number of player fraud warnings issued",
		},
	)

	// AdDenialsTotal counts rejected ad eligibility checks by reason.
	AdDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shield_ad_denials_total",
			Help: "Total number of denied ad eligibility checks",
		},
		[]string{"reason"},
	)

	// AdDisplaysTotal counts created ad displays by placement.
	AdDisplaysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shield_ad_displays_total",
			Help: "Total number of ad displays created",
		},
		[]string{"placement"},
	)

	// ThrottleRejectionsTotal counts rejected requests by limiter kind.
	ThrottleRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shield_throttle_rejections_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"kind"},
	)

	// LoginLockoutsTotal counts IP lockouts from failed logins.
	LoginLockoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shield_login_lockouts_total",
			Help: "Total number of login lockouts applied",
		},
	)

	// SecurityEventsTotal counts audit events by type and severity.
	SecurityEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shield_security_events_total",
			Help: "Total number of security audit events",
		},
		[]string{"event_type", "severity"},
	)
)

// Register adds all shield collectors to the given registry.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		FraudAlertsTotal,
		FraudWarningsTotal,
		AdDenialsTotal,
		AdDisplaysTotal,
		ThrottleRejectionsTotal,
		LoginLockoutsTotal,
		SecurityEventsTotal,
	)
}
