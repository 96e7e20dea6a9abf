package report

import (
	"github.com/okian/flowfit/internal/domain/model"
	"github.com/okian/flowfit/internal/domain/person"
)

// StrategyKind identifies a development strategy.
type StrategyKind string

const (
	RaiseChallenge  StrategyKind = "raise_challenge"
	BuildCompetence StrategyKind = "build_competence"
	DevelopBoth     StrategyKind = "develop_both"
)

// Strategy is a fixed recommendation with concrete steps.
type Strategy struct {
	Kind  StrategyKind `json:"kind"`
	Title string       `json:"title"`
	Steps []string     `json:"steps"`
}

// PlanItem is the strategy chosen for one development domain.
type PlanItem struct {
	Domain   string   `json:"domain"`
	FitIndex float64  `json:"fit_index"`
	Strategy Strategy `json:"strategy"`
}

// PlanFor picks the strategy for a rating: a gap of more than one point in
// either direction targets that gap, anything closer develops both sides.
func PlanFor(r model.Rating) Strategy {
	switch {
	case r.Skill > r.Challenge+1:
		return Strategy{
			Kind:  RaiseChallenge,
			Title: "Raise the challenge",
			Steps: []string{
				"Ask for more demanding tasks",
				"Take on mentoring responsibility",
				"Develop new processes",
				"Volunteer for new projects",
			},
		}
	case r.Challenge > r.Skill+1:
		return Strategy{
			Kind:  BuildCompetence,
			Title: "Build competence or reduce load",
			Steps: []string{
				"Use the available training offers",
				"Ask the team for support",
				"Prioritise your tasks",
				"Make use of supervision",
			},
		}
	default:
		return Strategy{
			Kind:  DevelopBoth,
			Title: "Develop both dimensions",
			Steps: []string{
				"Grow skill and challenge step by step",
				"Set small, measurable goals",
				"Reflect and adjust regularly",
			},
		}
	}
}

// Plan builds the development plan in most-urgent-first order.
func Plan(agg person.Result) []PlanItem {
	items := make([]PlanItem, 0, len(agg.Development))
	for _, d := range agg.Development {
		items = append(items, PlanItem{
			Domain:   d.Rating.Domain,
			FitIndex: d.Fit.FitIndex,
			Strategy: PlanFor(d.Rating),
		})
	}
	return items
}
