package seed

import (
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/flowfit/internal/domain/model"
)

// Persona shapes how a generated respondent rates the domains.
type persona int

const (
	personaFlow persona = iota
	personaOverloaded
	personaUnderchallenged
	personaApathetic
	personaMixed
	personaCount
)

// anonymousEvery leaves one respondent in this many without a name.
const anonymousEvery = 5

// Scale describes the bounds a generator draws ratings from.
type Scale struct {
	Min, Max         int
	TimeMin, TimeMax int
}

// Generator produces complete random profiles over a fixed domain list.
type Generator struct {
	domains []string
	scale   Scale
	rng     *rand.Rand
}

// NewGenerator returns a generator seeded with seed. The same seed and
// domains always yield the same ratings.
func NewGenerator(domains []string, scale Scale, seed uint64) *Generator {
	return &Generator{
		domains: append([]string(nil), domains...),
		scale:   scale,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Profiles generates n profiles, each rating every domain once.
func (g *Generator) Profiles(n int) []model.Profile {
	out := make([]model.Profile, n)
	for i := range out {
		out[i] = g.profile(i)
	}
	return out
}

func (g *Generator) profile(i int) model.Profile {
	p := model.Profile{Ratings: make([]model.Rating, len(g.domains))}
	if i%anonymousEvery != anonymousEvery-1 {
		p.Name = "respondent-" + strconv.Itoa(i+1) + "-" + uuid.NewString()[:8]
	}
	who := persona(g.rng.IntN(int(personaCount)))
	for j, d := range g.domains {
		skill, challenge := g.pair(who)
		p.Ratings[j] = model.Rating{
			Domain:         d,
			Skill:          skill,
			Challenge:      challenge,
			TimePerception: g.timeFor(skill, challenge),
		}
	}
	return p
}

// pair draws a skill/challenge pair typical for the persona.
func (g *Generator) pair(who persona) (int, int) {
	lo, hi := g.scale.Min, g.scale.Max
	mid := (lo + hi) / 2
	switch who {
	case personaFlow:
		s := g.between(mid, hi)
		return s, g.clamp(s + g.rng.IntN(3) - 1)
	case personaOverloaded:
		s := g.between(lo, mid)
		return s, g.clamp(s + 2 + g.rng.IntN(3))
	case personaUnderchallenged:
		c := g.between(lo, mid)
		return g.clamp(c + 2 + g.rng.IntN(3)), c
	case personaApathetic:
		s := g.between(lo, lo+1)
		return s, g.between(lo, lo+1)
	default:
		return g.between(lo, hi), g.between(lo, hi)
	}
}

// timeFor leans time perception towards "time flies" when skill and
// challenge are balanced and high, and towards "time drags" otherwise.
func (g *Generator) timeFor(skill, challenge int) int {
	gap := skill - challenge
	if gap < 0 {
		gap = -gap
	}
	centre := 0
	switch {
	case gap <= 1 && skill > (g.scale.Min+g.scale.Max)/2:
		centre = 2
	case gap >= 3:
		centre = -2
	}
	t := centre + g.rng.IntN(3) - 1
	return min(max(t, g.scale.TimeMin), g.scale.TimeMax)
}

func (g *Generator) between(lo, hi int) int {
	lo, hi = g.clamp(lo), g.clamp(hi)
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) clamp(v int) int {
	return min(max(v, g.scale.Min), g.scale.Max)
}
