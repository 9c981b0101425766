// Package timewindow provides sliding-window arithmetic over timestamped
// events. Every window in the service uses the same semantics: an event
// qualifies when it is strictly after now-window and not after now.
package timewindow

import "time"

// CountSince returns the number of events inside the window ending at now.
func CountSince(events []time.Time, now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	count := 0
	for _, ts := range events {
		if ts.After(cutoff) && !ts.After(now) {
			count++
		}
	}
	return count
}

// MostRecent returns the latest event inside the window ending at now.
// The second return value is false when no event qualifies.
func MostRecent(events []time.Time, now time.Time, window time.Duration) (time.Time, bool) {
	cutoff := now.Add(-window)
	var latest time.Time
	found := false
	for _, ts := range events {
		if !ts.After(cutoff) || ts.After(now) {
			continue
		}
		if !found || ts.After(latest) {
			latest = ts
			found = true
		}
	}
	return latest, found
}

// Prune returns the events that are still inside the window ending at now,
// preserving order. The input slice is not modified.
func Prune(events []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	kept := make([]time.Time, 0, len(events))
	for _, ts := range events {
		if ts.After(cutoff) && !ts.After(now) {
			kept = append(kept, ts)
		}
	}
	return kept
}
