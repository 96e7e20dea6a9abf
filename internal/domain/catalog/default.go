package catalog

var defaultCatalog = mustNew(defaultDomains)

// Default returns the built-in five-domain catalog.
func Default() *Catalog { return defaultCatalog }

func mustNew(domains []Domain) *Catalog {
	c, err := New(domains)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultDomains = []Domain{
	{
		ID:          "restructuring",
		Label:       "Organisational restructuring",
		Explanation: "Changes to reporting lines, team composition and responsibilities.",
		Theory:      "Structural change removes familiar roles; perceived control over the new structure predicts adjustment (Lazarus and Folkman, appraisal theory).",
		Templates: Templates{
			Underload: `In "{{.Domain}}" your perceived skill ({{printf "%.1f" .Skill}}) clearly exceeds the challenge ({{printf "%.1f" .Challenge}}). The restructuring asks less of you than you could give; offer to take ownership of parts of the new structure. Fit index {{printf "%.2f" .FitIndex}}.`,
			Ideal: `{{if .Developing}}In "{{.Domain}}" skill ({{printf "%.1f" .Skill}}) and challenge ({{printf "%.1f" .Challenge}}) are balanced but not yet energising. Clarify your role in the new structure and set yourself a visible goal within it. Fit index {{printf "%.2f" .FitIndex}}.` +
				`{{else}}In "{{.Domain}}" skill ({{printf "%.1f" .Skill}}) and challenge ({{printf "%.1f" .Challenge}}) are high and balanced. You are well placed to help others navigate the new structure. Fit index {{printf "%.2f" .FitIndex}}.{{end}}`,
			Overload: `In "{{.Domain}}" the challenge ({{printf "%.1f" .Challenge}}) clearly exceeds your perceived skill ({{printf "%.1f" .Skill}}). Ask for a clear picture of responsibilities and decision paths in the new structure before taking on more. Fit index {{printf "%.2f" .FitIndex}}.`,
		},
	},
	{
		ID:          "digitalisation",
		Label:       "Digital transformation",
		Explanation: "Introduction of new tools, platforms and data-driven ways of working.",
		Theory:      "Technology acceptance depends on perceived usefulness and ease of use (Davis, TAM); self-efficacy moderates both.",
		Templates: Templates{
			Underload: `In "{{.Domain}}" your digital skill ({{printf "%.1f" .Skill}}) is ahead of what is asked ({{printf "%.1f" .Challenge}}). Consider acting as a champion for the new tools or piloting more advanced features. Fit index {{printf "%.2f" .FitIndex}}.`,
			Ideal: `{{if .Developing}}In "{{.Domain}}" skill ({{printf "%.1f" .Skill}}) and challenge ({{printf "%.1f" .Challenge}}) match at a moderate level. Small, regular hands-on sessions with the new tools will lift both. Fit index {{printf "%.2f" .FitIndex}}.` +
				`{{else}}In "{{.Domain}}" skill ({{printf "%.1f" .Skill}}) and challenge ({{printf "%.1f" .Challenge}}) are high and balanced. The digital change is working for you; share what works with colleagues. Fit index {{printf "%.2f" .FitIndex}}.{{end}}`,
			Overload: `In "{{.Domain}}" the demands of the new tools ({{printf "%.1f" .Challenge}}) exceed your current skill ({{printf "%.1f" .Skill}}). Targeted training and a named contact for questions reduce the strain. Fit index {{printf "%.2f" .FitIndex}}.`,
		},
	},
	{
		ID:          "leadership",
		Label:       "Change of leadership",
		Explanation: "New managers, new leadership styles or changed expectations from leadership.",
		Theory:      "Trust in leadership is rebuilt through consistent behaviour over time; transformational leadership supports change commitment (Bass).",
		Templates: Templates{
			Underload: `In "{{.Domain}}" you feel more capable ({{printf "%.1f" .Skill}}) than the new leadership situation requires ({{printf "%.1f" .Challenge}}). Propose topics where you can take initiative with the new management. Fit index {{printf "%.2f" .FitIndex}}.`,
			Ideal: `{{if .Developing}}In "{{.Domain}}" skill ({{printf "%.1f" .Skill}}) and challenge ({{printf "%.1f" .Challenge}}) are in balance without much momentum. A structured conversation about mutual expectations can turn this into engagement. Fit index {{printf "%.2f" .FitIndex}}.` +
				`{{else}}In "{{.Domain}}" skill ({{printf "%.1f" .Skill}}) and challenge ({{printf "%.1f" .Challenge}}) are high and balanced. The working relationship with leadership supports you; keep the feedback loop active. Fit index {{printf "%.2f" .FitIndex}}.{{end}}`,
			Overload: `In "{{.Domain}}" the expectations of leadership ({{printf "%.1f" .Challenge}}) exceed what you feel able to meet ({{printf "%.1f" .Skill}}). Request explicit priorities and regular check-ins. Fit index {{printf "%.2f" .FitIndex}}.`,
		},
	},
	{
		ID:          "process",
		Label:       "Process and workflow changes",
		Explanation: "New procedures, approval paths and day-to-day workflows.",
		Theory:      "Routine disruption raises cognitive load until new routines automate (Sweller, cognitive load theory).",
		Templates: Templates{
			Underload: `In "{{.Domain}}" your skill ({{printf "%.1f" .Skill}}) exceeds the demands of the new processes ({{printf "%.1f" .Challenge}}). Contribute to improving the workflows rather than only following them. Fit index {{printf "%.2f" .FitIndex}}.`,
			Ideal: `{{if .Developing}}In "{{.Domain}}" skill ({{printf "%.1f" .Skill}}) and challenge ({{printf "%.1f" .Challenge}}) are balanced at a moderate level. Documenting the new steps for yourself speeds up automation of the routine. Fit index {{printf "%.2f" .FitIndex}}.` +
				`{{else}}In "{{.Domain}}" skill ({{printf "%.1f" .Skill}}) and challenge ({{printf "%.1f" .Challenge}}) are high and balanced. You master the new workflows; your experience is valuable for refining them. Fit index {{printf "%.2f" .FitIndex}}.{{end}}`,
			Overload: `In "{{.Domain}}" the new processes ({{printf "%.1f" .Challenge}}) demand more than your current skill ({{printf "%.1f" .Skill}}). Checklists, shadowing and fewer parallel changes help. Fit index {{printf "%.2f" .FitIndex}}.`,
		},
	},
	{
		ID:          "culture",
		Label:       "Cultural change",
		Explanation: "Shifts in values, collaboration norms and the way conflicts are handled.",
		Theory:      "Cultural change touches basic assumptions and is the slowest layer to move (Schein); psychological safety eases it (Edmondson).",
		Templates: Templates{
			Underload: `In "{{.Domain}}" you feel more ready ({{printf "%.1f" .Skill}}) than the cultural change currently asks ({{printf "%.1f" .Challenge}}). Model the new norms actively and invite others to join. Fit index {{printf "%.2f" .FitIndex}}.`,
			Ideal: `{{if .Developing}}In "{{.Domain}}" skill ({{printf "%.1f" .Skill}}) and challenge ({{printf "%.1f" .Challenge}}) are balanced but low in energy. Pick one concrete behaviour of the new culture and practise it deliberately. Fit index {{printf "%.2f" .FitIndex}}.` +
				`{{else}}In "{{.Domain}}" skill ({{printf "%.1f" .Skill}}) and challenge ({{printf "%.1f" .Challenge}}) are high and balanced. You carry the cultural change; make your experience visible to the team. Fit index {{printf "%.2f" .FitIndex}}.{{end}}`,
			Overload: `In "{{.Domain}}" the cultural shift ({{printf "%.1f" .Challenge}}) outpaces your perceived ability to adapt ({{printf "%.1f" .Skill}}). Safe spaces to discuss doubts and clear examples of the new norms reduce pressure. Fit index {{printf "%.2f" .FitIndex}}.`,
		},
	},
}
