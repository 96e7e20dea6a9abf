// Package model contains the validated rating records passed between the
// ingestion layer and the aggregators.
package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/okian/flowfit/internal/domain/catalog"
	"github.com/okian/flowfit/internal/domain/fit"
	"github.com/okian/flowfit/internal/domain/perception"
)

// Rating is one respondent's self-assessment for one domain.
type Rating struct {
	Domain         string `json:"domain" yaml:"domain"`
	Skill          int    `json:"skill" yaml:"skill"`
	Challenge      int    `json:"challenge" yaml:"challenge"`
	TimePerception int    `json:"time_perception" yaml:"time_perception"`
}

// ratingFields mirrors Rating with pointers so that an absent field can be
// told apart from an explicit zero.
type ratingFields struct {
	Domain         string `json:"domain" yaml:"domain"`
	Skill          *int   `json:"skill" yaml:"skill"`
	Challenge      *int   `json:"challenge" yaml:"challenge"`
	TimePerception *int   `json:"time_perception" yaml:"time_perception"`
}

func (f ratingFields) rating() (Rating, error) {
	r := Rating{Domain: f.Domain}
	fields := []struct {
		name string
		src  *int
		dst  *int
	}{
		{"skill", f.Skill, &r.Skill},
		{"challenge", f.Challenge, &r.Challenge},
		{"time_perception", f.TimePerception, &r.TimePerception},
	}
	for _, fl := range fields {
		if fl.src == nil {
			return Rating{}, &MissingFieldError{Domain: f.Domain, Field: fl.name}
		}
		*fl.dst = *fl.src
	}
	return r, nil
}

// UnmarshalJSON requires skill, challenge and time_perception to be present.
func (r *Rating) UnmarshalJSON(b []byte) error {
	var f ratingFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	out, err := f.rating()
	if err != nil {
		return err
	}
	*r = out
	return nil
}

// UnmarshalYAML applies the same presence rules as UnmarshalJSON.
func (r *Rating) UnmarshalYAML(n *yaml.Node) error {
	var f ratingFields
	if err := n.Decode(&f); err != nil {
		return err
	}
	out, err := f.rating()
	if err != nil {
		return err
	}
	*r = out
	return nil
}

// NewRating validates the fields against the catalog and the rating scales.
func NewRating(cat *catalog.Catalog, domain string, skill, challenge, timePerception int) (Rating, error) {
	r := Rating{Domain: domain, Skill: skill, Challenge: challenge, TimePerception: timePerception}
	if err := r.Validate(cat); err != nil {
		return Rating{}, err
	}
	return r, nil
}

// Validate checks the domain key and every bounded field.
func (r Rating) Validate(cat *catalog.Catalog) error {
	if _, ok := cat.Lookup(r.Domain); !ok {
		return &UnknownDomainError{Domain: r.Domain}
	}
	checks := []struct {
		field    string
		v        int
		min, max int
	}{
		{"skill", r.Skill, fit.MinLevel, fit.MaxLevel},
		{"challenge", r.Challenge, fit.MinLevel, fit.MaxLevel},
		{"time_perception", r.TimePerception, perception.Min, perception.Max},
	}
	for _, c := range checks {
		if c.v < c.min || c.v > c.max {
			return &RangeError{Domain: r.Domain, Field: c.field, Value: c.v, Min: c.min, Max: c.max}
		}
	}
	return nil
}

// Fit classifies the rating's skill/challenge pair.
func (r Rating) Fit() fit.Result {
	return fit.Classify(r.Skill, r.Challenge)
}

// Profile holds one respondent's ratings in catalog order.
type Profile struct {
	Name    string   `json:"name" yaml:"name"`
	Ratings []Rating `json:"ratings" yaml:"ratings"`
}

// NewProfile validates every rating, rejects a domain rated twice, and
// orders ratings by catalog position. A profile may cover only part of the
// catalog; use CheckComplete where full coverage is required.
func NewProfile(cat *catalog.Catalog, name string, ratings []Rating) (Profile, error) {
	seen := make(map[string]struct{}, len(ratings))
	out := make([]Rating, 0, len(ratings))
	for _, r := range ratings {
		if err := r.Validate(cat); err != nil {
			return Profile{}, err
		}
		if _, dup := seen[r.Domain]; dup {
			return Profile{}, fmt.Errorf("%w: domain %q rated twice", ErrDuplicateRating, r.Domain)
		}
		seen[r.Domain] = struct{}{}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, _ := cat.Position(out[i].Domain)
		pj, _ := cat.Position(out[j].Domain)
		return pi < pj
	})
	return Profile{Name: name, Ratings: out}, nil
}

// Rating returns the rating for domain, if present.
func (p Profile) Rating(domain string) (Rating, bool) {
	for _, r := range p.Ratings {
		if r.Domain == domain {
			return r, true
		}
	}
	return Rating{}, false
}

// CheckComplete returns an *IncompleteProfileError when any catalog domain
// has no rating, an *UnknownDomainError for ratings outside the catalog and
// ErrDuplicateRating when a domain is rated more than once.
func (p Profile) CheckComplete(cat *catalog.Catalog) error {
	if err := p.checkDomains(cat); err != nil {
		return err
	}
	var missing []string
	for _, id := range cat.IDs() {
		if _, ok := p.Rating(id); !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &IncompleteProfileError{Name: p.Name, Missing: missing}
	}
	return nil
}

// checkDomains rejects unknown domains and domains rated twice.
func (p Profile) checkDomains(cat *catalog.Catalog) error {
	seen := make(map[string]struct{}, len(p.Ratings))
	for _, r := range p.Ratings {
		if _, ok := cat.Lookup(r.Domain); !ok {
			return &UnknownDomainError{Domain: r.Domain}
		}
		if _, dup := seen[r.Domain]; dup {
			return fmt.Errorf("%w: domain %q rated twice", ErrDuplicateRating, r.Domain)
		}
		seen[r.Domain] = struct{}{}
	}
	return nil
}

// CheckUnique rejects a profile that rates any domain more than once. Unlike
// CheckComplete it accepts partial coverage.
func (p Profile) CheckUnique(cat *catalog.Catalog) error {
	return p.checkDomains(cat)
}

// Snapshot is a read-only collection of profiles to aggregate as a team.
type Snapshot struct {
	Profiles []Profile `json:"profiles" yaml:"profiles"`
}

// Observations counts (respondent, domain) ratings in the snapshot.
func (s Snapshot) Observations() int {
	n := 0
	for _, p := range s.Profiles {
		n += len(p.Ratings)
	}
	return n
}
