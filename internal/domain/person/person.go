// Package person aggregates one respondent's classified ratings.
package person

import (
	"sort"

	"github.com/okian/flowfit/internal/domain/catalog"
	"github.com/okian/flowfit/internal/domain/fit"
	"github.com/okian/flowfit/internal/domain/model"
)

// DomainResult is a rating together with its classification.
type DomainResult struct {
	Rating   model.Rating `json:"rating"`
	Fit      fit.Result   `json:"fit"`
	position int
}

// Result is the aggregate view of one profile.
type Result struct {
	Name       string         `json:"name"`
	Domains    []DomainResult `json:"domains"`
	AverageFit float64        `json:"average_fit"`
	// InFit lists domains classified Flow, in catalog order.
	InFit []string `json:"in_fit"`
	// Development holds every non-Flow domain, most urgent (lowest fit
	// index) first; ties keep catalog order.
	Development []DomainResult `json:"development"`
}

// DevelopmentIDs returns the development domain ids in priority order.
func (r Result) DevelopmentIDs() []string {
	ids := make([]string, len(r.Development))
	for i, d := range r.Development {
		ids[i] = d.Rating.Domain
	}
	return ids
}

// Aggregate classifies every rating of a complete profile and partitions the
// domains. Profiles that do not cover the catalog are rejected.
func Aggregate(cat *catalog.Catalog, p model.Profile) (Result, error) {
	if err := p.CheckComplete(cat); err != nil {
		return Result{}, err
	}

	res := Result{
		Name:        p.Name,
		Domains:     make([]DomainResult, 0, cat.Len()),
		InFit:       []string{},
		Development: []DomainResult{},
	}
	var sum float64
	for i, id := range cat.IDs() {
		r, _ := p.Rating(id)
		if err := r.Validate(cat); err != nil {
			return Result{}, err
		}
		dr := DomainResult{Rating: r, Fit: r.Fit(), position: i}
		res.Domains = append(res.Domains, dr)
		sum += dr.Fit.FitIndex

		if dr.Fit.Zone == fit.Flow {
			res.InFit = append(res.InFit, id)
		} else {
			res.Development = append(res.Development, dr)
		}
	}
	res.AverageFit = sum / float64(cat.Len())

	sort.SliceStable(res.Development, func(i, j int) bool {
		a, b := res.Development[i], res.Development[j]
		if a.Fit.FitIndex != b.Fit.FitIndex {
			return a.Fit.FitIndex < b.Fit.FitIndex
		}
		return a.position < b.position
	})
	return res, nil
}
