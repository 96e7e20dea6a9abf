package team

// Band is the interpretation of a CRI value.
type Band string

// Interpretation bands.
const (
	BandFavorable Band = "favorable"
	BandCautious  Band = "proceed_cautiously"
	BandStabilize Band = "stabilize_first"
)

const favorableAbove = 0.5

// BandFor interprets a CRI value.
func BandFor(cri float64) Band {
	switch {
	case cri > favorableAbove:
		return BandFavorable
	case cri >= 0:
		return BandCautious
	default:
		return BandStabilize
	}
}

// Advice is the fixed guidance text for the band.
func (b Band) Advice() string {
	switch b {
	case BandFavorable:
		return "Conditions are favourable: the team has capacity to absorb new demands."
	case BandCautious:
		return "Proceed cautiously: introduce change in small steps and monitor strain."
	case BandStabilize:
		return "Address stability first: overload outweighs spare capacity, so reduce pressure before introducing change."
	}
	return ""
}
