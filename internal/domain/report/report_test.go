package report_test

import (
	"strings"
	"testing"

	"github.com/okian/flowfit/internal/domain/catalog"
	"github.com/okian/flowfit/internal/domain/model"
	"github.com/okian/flowfit/internal/domain/person"
	"github.com/okian/flowfit/internal/domain/report"
	"github.com/okian/flowfit/internal/domain/team"
	. "github.com/smartystreets/goconvey/convey"
)

func fullProfile(name string) model.Profile {
	return model.Profile{Name: name, Ratings: []model.Rating{
		{Domain: "restructuring", Skill: 7, Challenge: 7, TimePerception: 3},
		{Domain: "digitalisation", Skill: 2, Challenge: 6, TimePerception: -2},
		{Domain: "leadership", Skill: 6, Challenge: 2, TimePerception: -3},
		{Domain: "process", Skill: 4, Challenge: 4, TimePerception: 0},
		{Domain: "culture", Skill: 2, Challenge: 2, TimePerception: -1},
	}}
}

func TestComposePersonal(t *testing.T) {
	cat := catalog.Default()

	Convey("Given an aggregated profile", t, func() {
		p := fullProfile("Ada")
		agg, err := person.Aggregate(cat, p)
		So(err, ShouldBeNil)

		Convey("When composing the report", func() {
			out, err := report.ComposePersonal(cat, p, agg)
			So(err, ShouldBeNil)

			Convey("Then it carries the fixed section headers", func() {
				for _, h := range []string{"FLOW-FIT REPORT", "== Summary ==", "== Domains ==", "== Development priorities ==", "== Development plan =="} {
					So(out, ShouldContainSubstring, h)
				}
				So(out, ShouldContainSubstring, "Respondent: Ada")
			})

			Convey("Then each domain text comes from its bucket template", func() {
				So(out, ShouldContainSubstring, `In "Organisational restructuring" skill (7.0) and challenge (7.0) are high and balanced.`)
				So(out, ShouldContainSubstring, `In "Digital transformation" the demands of the new tools (6.0) exceed your current skill (2.0).`)
				So(out, ShouldContainSubstring, `In "Change of leadership" you feel more capable (6.0)`)
				So(out, ShouldContainSubstring, `In "Process and workflow changes" skill (4.0) and challenge (4.0) are balanced at a moderate level.`)
				So(out, ShouldContainSubstring, `In "Cultural change" skill (2.0) and challenge (2.0) are balanced but low in energy.`)
				So(out, ShouldContainSubstring, "Time perception +3 (Time vanishes)")
			})

			Convey("Then recommendations follow the most urgent first order", func() {
				dig := strings.Index(out, "1. Digital transformation: Build competence or reduce load")
				lead := strings.Index(out, "2. Change of leadership: Raise the challenge")
				cult := strings.Index(out, "3. Cultural change: Develop both dimensions")
				So(dig, ShouldBeGreaterThan, 0)
				So(lead, ShouldBeGreaterThan, dig)
				So(cult, ShouldBeGreaterThan, lead)
			})
		})

		Convey("When composing twice", func() {
			a, err1 := report.ComposePersonal(cat, p, agg)
			b, err2 := report.ComposePersonal(cat, p, agg)
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(a, ShouldEqual, b)

			d, err := report.Diff(a, b)
			So(err, ShouldBeNil)
			So(d, ShouldBeEmpty)
		})

		Convey("When the name is empty", func() {
			p.Name = ""
			out, err := report.ComposePersonal(cat, p, agg)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Respondent: anonymous")
		})
	})

	Convey("Given an all-flow profile", t, func() {
		p := model.Profile{Ratings: []model.Rating{
			{Domain: "restructuring", Skill: 6, Challenge: 6},
			{Domain: "digitalisation", Skill: 6, Challenge: 6},
			{Domain: "leadership", Skill: 6, Challenge: 6},
			{Domain: "process", Skill: 6, Challenge: 6},
			{Domain: "culture", Skill: 6, Challenge: 6},
		}}
		agg, err := person.Aggregate(cat, p)
		So(err, ShouldBeNil)
		out, err := report.ComposePersonal(cat, p, agg)
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "you are in flow in every domain")
	})
}

func TestComposeTeam(t *testing.T) {
	cat := catalog.Default()

	Convey("Given a team snapshot missing one domain", t, func() {
		s := model.Snapshot{Profiles: []model.Profile{
			{Name: "Ada", Ratings: []model.Rating{
				{Domain: "restructuring", Skill: 6, Challenge: 6, TimePerception: 2},
				{Domain: "leadership", Skill: 2, Challenge: 5, TimePerception: -1},
			}},
			{Ratings: []model.Rating{
				{Domain: "restructuring", Skill: 5, Challenge: 6, TimePerception: 1},
				{Domain: "leadership", Skill: 4, Challenge: 4},
			}},
		}}
		agg, err := team.Aggregate(cat, s)
		So(err, ShouldBeNil)

		Convey("When composing the team report", func() {
			out, err := report.ComposeTeam(cat, s, agg)
			So(err, ShouldBeNil)

			Convey("Then it contains the overview and the CRI band", func() {
				So(out, ShouldContainSubstring, "TEAM FLOW-FIT REPORT")
				So(out, ShouldContainSubstring, "Respondents: 2")
				So(out, ShouldContainSubstring, "Named respondents: Ada")
				So(out, ShouldContainSubstring, "Anonymous respondents: 1")
				So(out, ShouldContainSubstring, "Change-Readiness Index: 0.25 [proceed_cautiously]")
				So(out, ShouldContainSubstring, "Flow 2 | Underload 0 | Overload 1 | Other 1")
			})

			Convey("Then unrated domains are listed separately rather than zero-filled", func() {
				So(out, ShouldContainSubstring, "Not rated: Digital transformation, Process and workflow changes, Cultural change")
				So(out, ShouldNotContainSubstring, "-- Cultural change --")
			})

			Convey("Then it is deterministic", func() {
				again, err := report.ComposeTeam(cat, s, agg)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, out)
			})
		})
	})
}

func TestPlanFor(t *testing.T) {
	Convey("Given ratings with different gaps", t, func() {
		So(report.PlanFor(model.Rating{Skill: 6, Challenge: 4}).Kind, ShouldEqual, report.RaiseChallenge)
		So(report.PlanFor(model.Rating{Skill: 3, Challenge: 5}).Kind, ShouldEqual, report.BuildCompetence)
		So(report.PlanFor(model.Rating{Skill: 4, Challenge: 5}).Kind, ShouldEqual, report.DevelopBoth)
		So(report.PlanFor(model.Rating{Skill: 2, Challenge: 2}).Kind, ShouldEqual, report.DevelopBoth)
	})
}

func TestDiff(t *testing.T) {
	Convey("Given two different reports", t, func() {
		d, err := report.Diff("a\nb\nc\n", "a\nx\nc\n")
		So(err, ShouldBeNil)
		So(d, ShouldContainSubstring, "--- previous")
		So(d, ShouldContainSubstring, "+++ regenerated")
		So(d, ShouldContainSubstring, "-b")
		So(d, ShouldContainSubstring, "+x")
	})
}
