// Package prompt assembles the generation prompt from structured selections.
// Build is deterministic: identical input yields a byte-identical prompt.
package prompt

import (
	"fmt"
	"strings"
)

// Input carries every selection that can influence the prompt. Optional
// fields that are empty are simply omitted; Build never fails.
type Input struct {
	ClientName    string
	PropertyNames []string
	Lane          Lane

	TechModifiers    []string
	AudienceModifier string
	PlatformModifier string
	BudgetTier       string

	// Talent names are only rendered for the talent lane.
	TalentNames []string

	NumIdeas int

	// DocumentContext is the pre-built reference-documents block, or "".
	DocumentContext string

	Style Style
}

// section pairs a predicate with a renderer. Sections are evaluated in fixed
// order so new modifiers slot in without touching existing branches.
type section struct {
	applies func(Input) bool
	render  func(Input) string
}

var sections = []section{
	{
		applies: func(in Input) bool { return len(in.TechModifiers) > 0 },
		render: func(in Input) string {
			return "Technology focus: build the activations around " + strings.Join(in.TechModifiers, ", ") + "."
		},
	},
	{
		applies: func(in Input) bool { return in.AudienceModifier != "" },
		render: func(in Input) string {
			return "Primary audience: " + in.AudienceModifier + "."
		},
	},
	{
		applies: func(in Input) bool { return in.PlatformModifier != "" },
		render: func(in Input) string {
			return "Priority platform: " + in.PlatformModifier + "."
		},
	},
	{
		applies: func(in Input) bool { return in.BudgetTier != "" },
		render: func(in Input) string {
			return "Budget tier: " + in.BudgetTier + ". Scale production ambition accordingly."
		},
	},
	{
		applies: func(in Input) bool { return in.Lane == LaneSocialImpact },
		render: func(in Input) string {
			return socialImpactGuidance
		},
	},
	{
		applies: func(in Input) bool { return in.Lane == LaneTalent && len(in.TalentNames) > 0 },
		render: func(in Input) string {
			return "Feature these talent partners: " + strings.Join(in.TalentNames, ", ") + "."
		},
	},
	{
		applies: func(in Input) bool { return in.DocumentContext != "" },
		render: func(in Input) string {
			return in.DocumentContext
		},
	},
	{
		applies: func(in Input) bool { return in.Style.Directive() != "" },
		render: func(in Input) string {
			return "Voice and tone: " + in.Style.Directive()
		},
	},
}

// Build renders the full prompt string.
func Build(in Input) string {
	numIdeas := in.NumIdeas
	if numIdeas <= 0 {
		numIdeas = 1
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(
		"Generate sponsorship-activation ideas for %s activating with %s.\n",
		in.ClientName, joinNames(in.PropertyNames)))
	builder.WriteString(fmt.Sprintf("Activation lane: %s.\n", in.Lane.Label()))

	for _, sec := range sections {
		if !sec.applies(in) {
			continue
		}
		builder.WriteString("\n")
		builder.WriteString(sec.render(in))
		builder.WriteString("\n")
	}

	builder.WriteString(fmt.Sprintf(
		"\nProduce exactly %d distinct ideas. Each idea must be built on a different core concept; no two ideas may overlap.\n",
		numIdeas))
	builder.WriteString("Respond with a strict JSON array and nothing else. Each element must be an object " +
		`with keys "title", "overview", "features" (array of strings), "brand_fit", and "image_prompt".`)
	return builder.String()
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "the selected properties"
	}
	return strings.Join(names, ", ")
}
