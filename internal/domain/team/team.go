// Package team aggregates many respondents' ratings into per-domain
// statistics and the change-readiness index.
package team

import (
	"fmt"

	"github.com/okian/flowfit/internal/domain/catalog"
	"github.com/okian/flowfit/internal/domain/fit"
	"github.com/okian/flowfit/internal/domain/model"
)

// DomainStats summarises every rating given for one domain.
type DomainStats struct {
	Domain        string   `json:"domain"`
	Respondents   int      `json:"respondents"`
	MeanSkill     float64  `json:"mean_skill"`
	MeanChallenge float64  `json:"mean_challenge"`
	MeanTime      float64  `json:"mean_time"`
	FitIndex      float64  `json:"fit_index"`
	Zone          fit.Zone `json:"zone"`
}

// Result is the team-level aggregate.
type Result struct {
	Respondents  int           `json:"respondents"`
	Observations int           `json:"observations"`
	DomainStats  []DomainStats `json:"domain_stats"`
	ZoneCounts   ZoneCounts    `json:"zone_counts"`
	CRI          float64       `json:"cri"`
	Band         Band          `json:"band"`
}

// Stats returns the entry for domain; absent domains report false.
func (r Result) Stats(domain string) (DomainStats, bool) {
	for _, s := range r.DomainStats {
		if s.Domain == domain {
			return s, true
		}
	}
	return DomainStats{}, false
}

type sums struct {
	n                     int
	skill, challenge, tpv int
}

// Aggregate computes domain means and the CRI over a snapshot. Domains that
// nobody rated are omitted from DomainStats. A snapshot without a single
// observation yields model.ErrEmptySnapshot.
func Aggregate(cat *catalog.Catalog, s model.Snapshot) (Result, error) {
	counts := make(ZoneCounts)
	perDomain := make([]sums, cat.Len())

	for _, p := range s.Profiles {
		if err := p.CheckUnique(cat); err != nil {
			return Result{}, err
		}
		for _, r := range p.Ratings {
			if err := r.Validate(cat); err != nil {
				return Result{}, err
			}
			pos, _ := cat.Position(r.Domain)
			acc := &perDomain[pos]
			acc.n++
			acc.skill += r.Skill
			acc.challenge += r.Challenge
			acc.tpv += r.TimePerception

			counts[r.Fit().Zone]++
		}
	}

	cri, err := CRI(counts)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Respondents:  len(s.Profiles),
		Observations: counts.Total(),
		DomainStats:  []DomainStats{},
		ZoneCounts:   counts,
		CRI:          cri,
		Band:         BandFor(cri),
	}
	for i, id := range cat.IDs() {
		acc := perDomain[i]
		if acc.n == 0 {
			continue
		}
		n := float64(acc.n)
		st := DomainStats{
			Domain:        id,
			Respondents:   acc.n,
			MeanSkill:     float64(acc.skill) / n,
			MeanChallenge: float64(acc.challenge) / n,
			MeanTime:      float64(acc.tpv) / n,
		}
		fr := fit.ClassifyMean(st.MeanSkill, st.MeanChallenge)
		st.FitIndex = fr.FitIndex
		st.Zone = fr.Zone
		res.DomainStats = append(res.DomainStats, st)
	}
	return res, nil
}

// ZoneCounts is the multiset of per-observation zone classifications.
type ZoneCounts map[fit.Zone]int

// Total is the number of observations, N.
func (c ZoneCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// CRI computes (Flow + Underload)/N - Overload/N. Acute zones, Apathy and
// StableFit contribute only to N. The result is not clamped.
func CRI(c ZoneCounts) (float64, error) {
	n := c.Total()
	if n == 0 {
		return 0, fmt.Errorf("%w: no observations", model.ErrEmptySnapshot)
	}
	total := float64(n)
	return float64(c[fit.Flow]+c[fit.Underload])/total - float64(c[fit.Overload])/total, nil
}
