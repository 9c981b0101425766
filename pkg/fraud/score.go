package fraud

import "time"

const (
	establishedAccountAge = 30 * 24 * time.Hour
	brandNewAccountAge    = 24 * time.Hour

	diverseActionTypes    = 8
	repetitiveActionTypes = 2
)

// computeRiskScore derives the reported 0-100 risk estimate from a
// profile. Suspicion dominates; account age and action diversity nudge
// the result the way a reviewer would read them: old diverse accounts
// look human, brand-new repetitive ones look automated.
func computeRiskScore(p *Profile, now time.Time, decay DecayConfig) int {
	if p == nil || p.TotalActions() == 0 {
		return 0
	}

	suspicion := float64(p.Suspicion)
	if decay.Enabled {
		if last := p.LastActionAt(); !last.IsZero() && now.After(last) {
			suspicion -= decay.PerHour * now.Sub(last).Hours()
			if suspicion < 0 {
				suspicion = 0
			}
		}
	}

	score := int(suspicion)
	if score > 100 {
		score = 100
	}

	if first := p.FirstActionAt(); !first.IsZero() {
		age := now.Sub(first)
		if age > establishedAccountAge {
			score -= 10
		} else if age < brandNewAccountAge {
			score += 10
		}
	}

	distinct := p.DistinctActionTypes()
	if distinct <= repetitiveActionTypes {
		score += 15
	} else if distinct >= diverseActionTypes {
		score -= 10
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
