package persona

import "time"

// Trait names the four personality axes measured by the quiz. The order of
// the declarations below is the tie-break order for DominantTrait: when two
// axes score equal, the earlier one wins.
const (
	TraitAnalytical = "analytical"
	TraitCreative   = "creative"
	TraitSocial     = "social"
	TraitPractical  = "practical"
)

// traitOrder fixes the comparison order used for the dominant-trait argmax.
var traitOrder = [4]string{TraitAnalytical, TraitCreative, TraitSocial, TraitPractical}

// TraitScores accumulates per-question option weights from the quiz.
type TraitScores struct {
	Analytical int `json:"analytical"`
	Creative   int `json:"creative"`
	Social     int `json:"social"`
	Practical  int `json:"practical"`
}

// Dominant returns the highest-scoring trait. Ties resolve to the trait
// declared first: analytical > creative > social > practical.
func (s TraitScores) Dominant() string {
	scores := map[string]int{
		TraitAnalytical: s.Analytical,
		TraitCreative:   s.Creative,
		TraitSocial:     s.Social,
		TraitPractical:  s.Practical,
	}

	best := traitOrder[0]
	for _, trait := range traitOrder[1:] {
		if scores[trait] > scores[best] {
			best = trait
		}
	}
	return best
}

// Profile carries the free-form quiz answers that flavour the generated
// persona beyond the numeric trait scores.
type Profile struct {
	Name          string   `json:"name"`
	Interests     []string `json:"interests"`
	Communication string   `json:"communication"`
	Strengths     []string `json:"strengths"`
}

// AIPersona is the generated character handed back to the quiz UI. ImageURL
// is attached asynchronously after creation and may stay empty.
type AIPersona struct {
	ID                 string    `json:"id"`
	AgentName          string    `json:"agentName"`
	Tagline            string    `json:"tagline"`
	PersonalityTraits  []string  `json:"personalityTraits"`
	Specialization     string    `json:"specialization"`
	CommunicationStyle string    `json:"communicationStyle"`
	Appearance         string    `json:"appearance"`
	SpecialAbilities   []string  `json:"specialAbilities"`
	Backstory          string    `json:"backstory"`
	ImageURL           string    `json:"imageUrl,omitempty"`
	DominantTrait      string    `json:"dominantTrait"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Complete reports whether every required field of a generated persona is
// populated. Used to validate remote structured-generation output before
// accepting it over the archetype fallback.
func (p AIPersona) Complete() bool {
	return p.AgentName != "" &&
		p.Tagline != "" &&
		len(p.PersonalityTraits) > 0 &&
		p.Specialization != "" &&
		p.CommunicationStyle != "" &&
		p.Appearance != "" &&
		p.Backstory != "" &&
		len(p.SpecialAbilities) > 0
}
