// Package fit classifies a perceived skill/challenge pair into a fit index
// and a zone.
package fit

import "math"

// Rating scale bounds for skill and challenge.
const (
	MinLevel = 1
	MaxLevel = 7

	// maxDiff is the largest possible |skill-challenge| on the rating scale.
	maxDiff = MaxLevel - MinLevel
)

// Decision tree thresholds.
const (
	flowMaxDiff      = 1
	flowMinLevel     = 5
	acuteDiff        = 3
	mildDiff         = 2
	apathyLevelBelow = 3
)

// Result is the classification of one skill/challenge pair.
type Result struct {
	FitIndex  float64 `json:"fit_index"`
	Zone      Zone    `json:"zone"`
	Rationale string  `json:"rationale"`
}

// Classify maps an integer pair on the 1..7 scale to its fit result.
// Inputs are assumed to be validated by the caller.
func Classify(skill, challenge int) Result {
	return ClassifyMean(float64(skill), float64(challenge))
}

// ClassifyMean applies the same decision tree to real-valued levels, such as
// team means.
func ClassifyMean(skill, challenge float64) Result {
	zone := zoneFor(skill, challenge)
	return Result{
		FitIndex:  Index(skill, challenge),
		Zone:      zone,
		Rationale: zone.Rationale(),
	}
}

// Index combines balance (proximity of skill and challenge) with activation
// (mean level relative to the scale maximum).
func Index(skill, challenge float64) float64 {
	diff := math.Abs(skill - challenge)
	proximity := 1 - diff/maxDiff
	activation := ((skill + challenge) / 2) / MaxLevel
	idx := proximity * activation
	// Guard against float drift at the edges of the scale.
	return math.Max(0, math.Min(1, idx))
}

func zoneFor(skill, challenge float64) Zone {
	diff := skill - challenge
	level := (skill + challenge) / 2

	switch {
	case math.Abs(diff) <= flowMaxDiff && level >= flowMinLevel:
		return Flow
	case diff < -acuteDiff:
		return AcuteOverload
	case diff > acuteDiff:
		return AcuteUnderload
	case diff < -mildDiff:
		return Overload
	case diff > mildDiff:
		return Underload
	case level < apathyLevelBelow:
		return Apathy
	default:
		return StableFit
	}
}
