package fit

import "fmt"

// Zone is the categorical state of a skill/challenge pair. The string value
// is a stable token intended for downstream branching.
type Zone string

// Zones, ordered from most overloaded to most underloaded.
const (
	AcuteOverload  Zone = "acute_overload"
	Overload       Zone = "overload"
	Apathy         Zone = "apathy"
	StableFit      Zone = "stable_fit"
	Flow           Zone = "flow"
	Underload      Zone = "underload"
	AcuteUnderload Zone = "acute_underload"
)

// Zones returns every zone in canonical order.
func Zones() []Zone {
	return []Zone{AcuteOverload, Overload, Apathy, StableFit, Flow, Underload, AcuteUnderload}
}

// ParseZone resolves a zone token.
func ParseZone(s string) (Zone, error) {
	for _, z := range Zones() {
		if string(z) == s {
			return z, nil
		}
	}
	return "", fmt.Errorf("unknown zone %q", s)
}

// String returns the zone token.
func (z Zone) String() string { return string(z) }

// Title returns a human readable zone name.
func (z Zone) Title() string {
	switch z {
	case AcuteOverload:
		return "Acute overload"
	case Overload:
		return "Overload"
	case Apathy:
		return "Apathy"
	case StableFit:
		return "Stable fit"
	case Flow:
		return "Flow"
	case Underload:
		return "Underload"
	case AcuteUnderload:
		return "Acute underload"
	}
	return string(z)
}

// Rationale is the fixed explanation attached to each zone.
func (z Zone) Rationale() string {
	switch z {
	case AcuteOverload:
		return "Challenge far exceeds perceived skill; stress and withdrawal are likely."
	case Overload:
		return "Challenge clearly exceeds perceived skill; sustained effort leads to strain."
	case Apathy:
		return "Skill and challenge are balanced but both low; there is little activation."
	case StableFit:
		return "Skill and challenge are balanced at a moderate level; a stable base to build on."
	case Flow:
		return "Skill and challenge are high and balanced; conditions favour deep engagement."
	case Underload:
		return "Perceived skill clearly exceeds the challenge; boredom is building."
	case AcuteUnderload:
		return "Perceived skill far exceeds the challenge; disengagement is likely."
	}
	return ""
}

// Bucket selects which of the three template slots a zone renders with.
type Bucket int

const (
	BucketUnderload Bucket = iota
	BucketIdeal
	BucketOverload
)

// String returns the bucket token.
func (b Bucket) String() string {
	switch b {
	case BucketUnderload:
		return "underload"
	case BucketIdeal:
		return "ideal"
	case BucketOverload:
		return "overload"
	}
	return fmt.Sprintf("bucket(%d)", int(b))
}

// Bucket maps the zone onto its template slot. Apathy and StableFit share the
// ideal slot with Flow; see Developing.
func (z Zone) Bucket() Bucket {
	switch z {
	case AcuteOverload, Overload:
		return BucketOverload
	case AcuteUnderload, Underload:
		return BucketUnderload
	default:
		return BucketIdeal
	}
}

// Developing reports whether an ideal-bucket zone is balanced but not yet in
// Flow.
func (z Zone) Developing() bool {
	return z == Apathy || z == StableFit
}
