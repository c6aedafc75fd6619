// Package risk turns a change's metadata and classification into a numeric
// score and a disposition. Both functions are pure.
package risk

import "github.com/sevigo/risk-warden/internal/core"

const (
	MaxScore = 100

	highComplexityWeight   = 50
	mediumComplexityWeight = 20
	securityRiskWeight     = 30
	touchesCoreWeight      = 10

	// ReviewThreshold and BlockThreshold are inclusive lower bounds.
	ReviewThreshold = 30
	BlockThreshold  = 70
)

// Score computes the risk of a change in [0, MaxScore]. An unrecognised
// complexity value contributes nothing.
func Score(md core.Metadata, a core.Analysis) int {
	score := 0
	switch a.Complexity {
	case core.ComplexityHigh:
		score += highComplexityWeight
	case core.ComplexityMedium:
		score += mediumComplexityWeight
	}
	if a.SecurityRisk {
		score += securityRiskWeight
	}
	if md.TouchesCore {
		score += touchesCoreWeight
	}
	return min(score, MaxScore)
}

// Decide maps a score to a disposition: [0,30) merge, [30,70) review,
// [70,100] block. Out-of-range scores are clamped.
func Decide(score int) core.Decision {
	score = max(0, min(score, MaxScore))
	switch {
	case score >= BlockThreshold:
		return core.DecisionBlock
	case score >= ReviewThreshold:
		return core.DecisionReview
	default:
		return core.DecisionMerge
	}
}
