package prompt

import "strings"

// StyleType is a persona overlay applied uniformly across generated ideas.
type StyleType string

const (
	StyleGeneric            StyleType = "generic"
	StyleTechbro            StyleType = "techbro"
	StyleCreativeStrategist StyleType = "creative_strategist"
	StyleGenZ               StyleType = "gen_z"
	StyleSportsExpert       StyleType = "sports_expert"
	StyleWorldTraveler      StyleType = "world_traveler"
	StyleDataNerd           StyleType = "data_nerd"
)

// Style pairs a persona type with an intensity from 1 to 5.
type Style struct {
	Type      StyleType
	Intensity int
}

// styleSpec fixes the "5 levels always present" invariant in the type: the
// intensifier table is an array, not a slice.
type styleSpec struct {
	Base         string
	Intensifiers [5]string
}

var styleSpecs = map[StyleType]styleSpec{
	StyleTechbro: {
		Base: "Write in the voice of a startup founder pitching on demo day: product-led, metric-obsessed, casually confident.",
		Intensifiers: [5]string{
			"Keep the startup vocabulary light.",
			"Sprinkle in growth and platform language.",
			"Lean into disruption framing and TAM talk.",
			"Every idea is a rocket ship; reference scaling, flywheels, and network effects.",
			"Full founder mode: 10x everything, name-drop accelerators, zero humility.",
		},
	},
	StyleCreativeStrategist: {
		Base: "Write like an agency creative strategist: insight-first, campaign-literate, fluent in award-show vocabulary.",
		Intensifiers: [5]string{
			"A light strategic framing on each idea.",
			"Open each concept with the human insight behind it.",
			"Structure ideas as insight, tension, and creative leap.",
			"Reference culture and craft; every idea should feel brief-ready.",
			"Pitch-theatre mode: manifesto energy, Cannes ambitions on every line.",
		},
	},
	StyleGenZ: {
		Base: "Write for a Gen Z audience in a native social voice: short, ironic, extremely online.",
		Intensifiers: [5]string{
			"A hint of internet speak.",
			"Casual lowercase energy where it fits.",
			"Meme-literate phrasing and platform-native references.",
			"Chronically online: trends, inside jokes, creator economy framing.",
			"Maximum brainrot; if a millennial understands it, dial it up.",
		},
	},
	StyleSportsExpert: {
		Base: "Write like a veteran sports-business insider: fluent in rights deals, fan data, and venue operations.",
		Intensifiers: [5]string{
			"Light sports-industry seasoning.",
			"Use fan-journey and matchday vocabulary.",
			"Reference sponsorship inventory and activation windows by name.",
			"Deep cuts: cite comparable deals and category precedents.",
			"Full insider: every idea framed in rights, ratings, and renewal leverage.",
		},
	},
	StyleWorldTraveler: {
		Base: "Write like a well-traveled cultural correspondent: globally aware, locally specific.",
		Intensifiers: [5]string{
			"An occasional international reference.",
			"Ground ideas in specific cities and scenes.",
			"Draw parallels from at least two markets per idea.",
			"Each idea reads like a dispatch from a different region.",
			"Passport-heavy: every concept is a cross-border cultural exchange.",
		},
	},
	StyleDataNerd: {
		Base: "Write like an analytics lead: every claim quantified, every mechanic measurable.",
		Intensifiers: [5]string{
			"Mention one measurable outcome per idea.",
			"Attach target metrics to the core mechanic.",
			"Frame ideas around the data they capture and the dashboard they feed.",
			"Hypothesis, instrumentation, and benchmark in every concept.",
			"Spreadsheet maximalism: confidence intervals welcome.",
		},
	},
}

// Directive renders the style instruction. The generic type is an explicit
// bypass and contributes no text regardless of intensity; it is not slot zero
// of an intensifier table.
func (s Style) Directive() string {
	if s.Type == "" || s.Type == StyleGeneric {
		return ""
	}
	spec, ok := styleSpecs[s.Type]
	if !ok {
		return ""
	}
	idx := s.Intensity - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(spec.Intensifiers) {
		idx = len(spec.Intensifiers) - 1
	}
	return spec.Base + " " + spec.Intensifiers[idx]
}

// ParseStyle maps a raw content-style value like "techbro:3" (or just
// "techbro", defaulting to intensity 3) to a Style. Unknown types come back
// as generic.
func ParseStyle(raw string) Style {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return Style{Type: StyleGeneric}
	}
	name := raw
	intensity := 3
	if idx := strings.IndexByte(raw, ':'); idx >= 0 {
		name = raw[:idx]
		switch raw[idx+1:] {
		case "1":
			intensity = 1
		case "2":
			intensity = 2
		case "3":
			intensity = 3
		case "4":
			intensity = 4
		case "5":
			intensity = 5
		}
	}
	styleType := StyleType(name)
	if styleType != StyleGeneric {
		if _, ok := styleSpecs[styleType]; !ok {
			return Style{Type: StyleGeneric}
		}
	}
	return Style{Type: styleType, Intensity: intensity}
}
