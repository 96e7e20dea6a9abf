// Package report assembles sectioned plain-text reports from classified
// results. Output is a pure function of its inputs: identical arguments
// always produce byte-identical text.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/flowfit/internal/domain/catalog"
	"github.com/okian/flowfit/internal/domain/fit"
	"github.com/okian/flowfit/internal/domain/model"
	"github.com/okian/flowfit/internal/domain/perception"
	"github.com/okian/flowfit/internal/domain/person"
	"github.com/okian/flowfit/internal/domain/team"
)

const (
	personalTitle = "FLOW-FIT REPORT"
	teamTitle     = "TEAM FLOW-FIT REPORT"
	anonymous     = "anonymous"
)

// ComposePersonal renders the report for one respondent.
func ComposePersonal(cat *catalog.Catalog, p model.Profile, agg person.Result) (string, error) {
	var w writer
	name := p.Name
	if strings.TrimSpace(name) == "" {
		name = anonymous
	}
	w.title(personalTitle)
	w.line("Respondent: %s", name)

	w.section("Summary")
	w.line("Average fit index: %.2f", agg.AverageFit)
	w.line("Domains in flow: %d of %d", len(agg.InFit), len(agg.Domains))
	if len(agg.InFit) == 0 {
		w.line("In flow: none")
	} else {
		w.line("In flow: %s", strings.Join(labels(cat, agg.InFit), ", "))
	}

	w.section("Domains")
	for _, d := range agg.Domains {
		dom, ok := cat.Lookup(d.Rating.Domain)
		if !ok {
			return "", fmt.Errorf("%w: %q", catalog.ErrUnknownDomain, d.Rating.Domain)
		}
		tp, err := perception.Describe(d.Rating.TimePerception)
		if err != nil {
			return "", err
		}
		text, err := cat.Render(dom.ID, d.Fit.Zone.Bucket(), catalog.TemplateData{
			Domain:         dom.Label,
			Skill:          float64(d.Rating.Skill),
			Challenge:      float64(d.Rating.Challenge),
			TimePerception: float64(d.Rating.TimePerception),
			FitIndex:       d.Fit.FitIndex,
			Zone:           d.Fit.Zone.String(),
			Developing:     d.Fit.Zone.Developing(),
		})
		if err != nil {
			return "", err
		}
		w.sub(dom.Label)
		w.line("Skill %d | Challenge %d | Time perception %+d (%s)", d.Rating.Skill, d.Rating.Challenge, d.Rating.TimePerception, tp.Label)
		w.line("Zone: %s [%s] | Fit index %.2f", d.Fit.Zone.Title(), d.Fit.Zone, d.Fit.FitIndex)
		w.line("%s", d.Fit.Rationale)
		w.line("%s", text)
		w.line("Time perception: %s", tp.Meaning)
		if dom.Theory != "" {
			w.line("Background: %s", dom.Theory)
		}
	}

	w.section("Development priorities")
	if len(agg.Development) == 0 {
		w.line("None. Every domain is in flow.")
	}
	for i, d := range agg.Development {
		w.line("%d. %s: %s (fit index %.2f)", i+1, label(cat, d.Rating.Domain), d.Fit.Zone.Title(), d.Fit.FitIndex)
	}

	w.section("Development plan")
	plan := Plan(agg)
	if len(plan) == 0 {
		w.line("Excellent: you are in flow in every domain.")
	}
	for i, item := range plan {
		w.line("%d. %s: %s", i+1, label(cat, item.Domain), item.Strategy.Title)
		for _, step := range item.Strategy.Steps {
			w.line("   - %s", step)
		}
	}
	return w.String(), nil
}

// ComposeTeam renders the report for a team snapshot.
func ComposeTeam(cat *catalog.Catalog, s model.Snapshot, agg team.Result) (string, error) {
	var w writer
	w.title(teamTitle)

	w.section("Overview")
	w.line("Respondents: %d", agg.Respondents)
	w.line("Observations: %d", agg.Observations)
	named, unnamed := respondentNames(s)
	if len(named) > 0 {
		w.line("Named respondents: %s", strings.Join(named, ", "))
	}
	if unnamed > 0 {
		w.line("Anonymous respondents: %d", unnamed)
	}

	w.section("Change readiness")
	w.line("Change-Readiness Index: %.2f [%s]", agg.CRI, agg.Band)
	w.line("%s", agg.Band.Advice())
	other := agg.Observations - agg.ZoneCounts[fit.Flow] - agg.ZoneCounts[fit.Underload] - agg.ZoneCounts[fit.Overload]
	w.line("Flow %d | Underload %d | Overload %d | Other %d",
		agg.ZoneCounts[fit.Flow], agg.ZoneCounts[fit.Underload], agg.ZoneCounts[fit.Overload], other)

	w.section("Zone distribution")
	for _, z := range fit.Zones() {
		n := agg.ZoneCounts[z]
		w.line("%-16s %3d  %5.1f%%", z.Title()+":", n, share(n, agg.Observations))
	}

	w.section("Domains")
	rated := make(map[string]struct{}, len(agg.DomainStats))
	for _, st := range agg.DomainStats {
		rated[st.Domain] = struct{}{}
		dom, ok := cat.Lookup(st.Domain)
		if !ok {
			return "", fmt.Errorf("%w: %q", catalog.ErrUnknownDomain, st.Domain)
		}
		tp, err := perception.Describe(int(math.Round(st.MeanTime)))
		if err != nil {
			return "", err
		}
		text, err := cat.Render(dom.ID, st.Zone.Bucket(), catalog.TemplateData{
			Domain:         dom.Label,
			Skill:          st.MeanSkill,
			Challenge:      st.MeanChallenge,
			TimePerception: st.MeanTime,
			FitIndex:       st.FitIndex,
			Zone:           st.Zone.String(),
			Developing:     st.Zone.Developing(),
		})
		if err != nil {
			return "", err
		}
		w.sub(dom.Label)
		w.line("Respondents %d | Mean skill %.2f | Mean challenge %.2f | Mean time perception %+.2f (%s)",
			st.Respondents, st.MeanSkill, st.MeanChallenge, st.MeanTime, tp.Label)
		w.line("Zone: %s [%s] | Fit index %.2f", st.Zone.Title(), st.Zone, st.FitIndex)
		w.line("%s", text)
	}
	var missing []string
	for _, id := range cat.IDs() {
		if _, ok := rated[id]; !ok {
			missing = append(missing, label(cat, id))
		}
	}
	if len(missing) > 0 {
		w.line("")
		w.line("Not rated: %s", strings.Join(missing, ", "))
	}

	w.section("Priorities")
	prio := teamPriorities(cat, agg.DomainStats)
	if len(prio) == 0 {
		w.line("None. Every rated domain is in flow on average.")
	}
	for i, st := range prio {
		w.line("%d. %s: %s (fit index %.2f)", i+1, label(cat, st.Domain), st.Zone.Title(), st.FitIndex)
	}
	return w.String(), nil
}

// teamPriorities orders non-Flow domains by ascending fit index, ties in
// catalog order.
func teamPriorities(cat *catalog.Catalog, stats []team.DomainStats) []team.DomainStats {
	var out []team.DomainStats
	for _, st := range stats {
		if st.Zone != fit.Flow {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FitIndex != out[j].FitIndex {
			return out[i].FitIndex < out[j].FitIndex
		}
		pi, _ := cat.Position(out[i].Domain)
		pj, _ := cat.Position(out[j].Domain)
		return pi < pj
	})
	return out
}

func respondentNames(s model.Snapshot) ([]string, int) {
	var named []string
	unnamed := 0
	for _, p := range s.Profiles {
		if n := strings.TrimSpace(p.Name); n != "" {
			named = append(named, n)
		} else {
			unnamed++
		}
	}
	return named, unnamed
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

func label(cat *catalog.Catalog, id string) string {
	if d, ok := cat.Lookup(id); ok {
		return d.Label
	}
	return id
}

func labels(cat *catalog.Catalog, ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = label(cat, id)
	}
	return out
}

// writer accumulates report lines under fixed section headers.
type writer struct {
	b strings.Builder
}

func (w *writer) title(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
	w.b.WriteString(strings.Repeat("=", len(s)))
	w.b.WriteByte('\n')
}

func (w *writer) section(s string) {
	fmt.Fprintf(&w.b, "\n== %s ==\n", s)
}

func (w *writer) sub(s string) {
	fmt.Fprintf(&w.b, "\n-- %s --\n", s)
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *writer) String() string { return w.b.String() }
