package persona

import "testing"

func TestDominant(t *testing.T) {
	cases := []struct {
		name   string
		scores TraitScores
		want   string
	}{
		{"clear winner", TraitScores{Analytical: 1, Creative: 8, Social: 2, Practical: 3}, TraitCreative},
		{"all zero", TraitScores{}, TraitAnalytical},
		{"analytical beats creative on tie", TraitScores{Analytical: 5, Creative: 5}, TraitAnalytical},
		{"creative beats social on tie", TraitScores{Creative: 4, Social: 4}, TraitCreative},
		{"social beats practical on tie", TraitScores{Social: 3, Practical: 3}, TraitSocial},
		{"practical wins outright", TraitScores{Analytical: 2, Practical: 7}, TraitPractical},
	}
	for _, tc := range cases {
		if got := tc.scores.Dominant(); got != tc.want {
			t.Errorf("%s: Dominant() = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestArchetypeComplete(t *testing.T) {
	for _, trait := range []string{TraitAnalytical, TraitCreative, TraitSocial, TraitPractical} {
		p := Archetype(trait)
		if !p.Complete() {
			t.Errorf("archetype for %s incomplete", trait)
		}
		if p.DominantTrait != trait {
			t.Errorf("archetype for %s carries trait %s", trait, p.DominantTrait)
		}
	}
}

func TestArchetypeUnknownTrait(t *testing.T) {
	p := Archetype("mysterious")
	if p.AgentName != "Logic Prime" {
		t.Fatalf("unknown trait should fall back to analytical, got %s", p.AgentName)
	}
}

func TestCompleteRejectsMissingFields(t *testing.T) {
	p := Archetype(TraitSocial)
	p.Backstory = ""
	if p.Complete() {
		t.Fatal("persona without backstory should be incomplete")
	}
}
