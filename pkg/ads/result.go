package ads

import "time"

// Reason discriminates why an operation was refused. Callers map these
// to transport-level status codes; the engines never do.
type Reason string

const (
	ReasonNotConfigured       Reason = "NotConfigured"
	ReasonPlacementDisabled   Reason = "PlacementDisabled"
	ReasonNoAdUnit            Reason = "NoAdUnit"
	ReasonIntervalNotElapsed  Reason = "IntervalNotElapsed"
	ReasonVolumeLimitExceeded Reason = "VolumeLimitExceeded"
	ReasonHighFraudScore      Reason = "HighFraudScore"
	ReasonNotFound            Reason = "NotFound"
	ReasonSecurityViolation   Reason = "SecurityViolation"
	ReasonProtectionActive    Reason = "ProtectionActive"
	ReasonNotDisplayed        Reason = "NotDisplayed"
	ReasonInternalError       Reason = "InternalError"
)

// Decision is the outcome of an eligibility check.
type Decision struct {
	CanShow bool
	Reason  Reason

	// Scope names which key tripped an interval rejection: "session",
	// "ip" or "player". Only the first violation found is reported.
	Scope string

	// RetryAfter is when the caller may try again. Nil for terminal
	// refusals (misconfiguration, fraud hold).
	RetryAfter       *time.Time
	SecondsRemaining int

	// On success the matched unit, the active configuration and its
	// parsed settings are returned for the display creation that
	// usually follows.
	Unit     *AdUnit
	Config   *Config
	Settings Settings
}

// StatusResult reports the current state of one display.
type StatusResult struct {
	Found  bool
	Reason Reason

	Display       *Display
	Status        DisplayStatus
	CanClose      bool
	ProtectionEnd time.Time

	// Countdown information for the frontend timer.
	SecondsRemaining       int
	ElapsedSeconds         int
	TotalProtectionSeconds int
	ProgressPercent        float64
}

// OpResult is the outcome of a close or click operation.
type OpResult struct {
	Success bool
	Reason  Reason

	// RetryAfter and SecondsRemaining are set for ProtectionActive.
	RetryAfter       *time.Time
	SecondsRemaining int

	Display *Display
}
