package prompt

import "strings"

// Lane is a category of sponsorship activation. The lane shapes which
// guidance paragraphs are appended to the prompt.
type Lane string

const (
	LaneLiveExperience Lane = "live_experience"
	LaneDigital        Lane = "digital"
	LaneContent        Lane = "content"
	LaneSocialImpact   Lane = "social_impact"
	LaneRetail         Lane = "retail"
	LaneHospitality    Lane = "hospitality"
	LaneTalent         Lane = "talent"
	LaneInnovation     Lane = "innovation"
)

var laneLabels = map[Lane]string{
	LaneLiveExperience: "Live Experience",
	LaneDigital:        "Digital",
	LaneContent:        "Content",
	LaneSocialImpact:   "Social Impact",
	LaneRetail:         "Retail & Commerce",
	LaneHospitality:    "Hospitality",
	LaneTalent:         "Talent & Athlete",
	LaneInnovation:     "Innovation & Emerging Tech",
}

// Lanes lists every valid lane value.
func Lanes() []Lane {
	return []Lane{
		LaneLiveExperience, LaneDigital, LaneContent, LaneSocialImpact,
		LaneRetail, LaneHospitality, LaneTalent, LaneInnovation,
	}
}

// Valid reports whether the lane is one of the known values.
func (l Lane) Valid() bool {
	_, ok := laneLabels[l]
	return ok
}

// Label returns the human label for the lane. Unknown lanes fall back to the
// raw value with underscores spaced out.
func (l Lane) Label() string {
	if label, ok := laneLabels[l]; ok {
		return label
	}
	return strings.ReplaceAll(string(l), "_", " ")
}

// Appended only when the lane is social_impact.
const socialImpactGuidance = "These ideas must center measurable community benefit. " +
	"Anchor every concept in a genuine social cause the property's audience cares about, " +
	"name the community partner or beneficiary, and make the brand's role supportive " +
	"rather than self-congratulatory. Avoid purpose-washing: each idea needs a concrete, " +
	"verifiable outcome the sponsor can report on."
