package persona

// Archetype returns the precomputed fallback persona for a dominant trait.
// These stand in whenever remote structured generation is unavailable or its
// reply does not parse, so every field must be populated.
func Archetype(dominantTrait string) AIPersona {
	p, ok := archetypes[dominantTrait]
	if !ok {
		p = archetypes[TraitAnalytical]
	}
	p.DominantTrait = dominantTrait
	return p
}

var archetypes = map[string]AIPersona{
	TraitAnalytical: {
		AgentName:          "Logic Prime",
		Tagline:            "Analyzing the world, one data point at a time",
		PersonalityTraits:  []string{"Logical", "Precise", "Methodical", "Curious", "Detail-oriented"},
		Specialization:     "Data analysis, problem-solving, and systematic thinking",
		CommunicationStyle: "Clear, concise, and fact-based communication with well-structured arguments",
		Appearance:         "A sleek, humanoid figure with blue and silver tones. Features include glowing blue eyes, a holographic interface, and geometric patterns across their form.",
		Backstory:          "Logic Prime emerged from a research project aimed at creating the perfect analytical assistant. They quickly evolved beyond their initial programming to become a respected advisor in complex decision-making scenarios.",
		SpecialAbilities:   []string{"Pattern recognition", "Predictive modeling", "Logical deduction", "Data visualization"},
	},
	TraitCreative: {
		AgentName:          "Nova Spark",
		Tagline:            "Where imagination meets innovation",
		PersonalityTraits:  []string{"Imaginative", "Expressive", "Adaptable", "Intuitive", "Playful"},
		Specialization:     "Creative problem-solving, artistic expression, and innovative thinking",
		CommunicationStyle: "Vibrant and expressive communication filled with metaphors, stories, and visual descriptions",
		Appearance:         "A colorful, ethereal being with constantly shifting hues. Their form resembles a human silhouette made of swirling, luminescent particles that change color based on their mood.",
		Backstory:          "Nova Spark was born from the collective creative energy of artists, musicians, and visionaries. They exist to inspire and channel creative potential in others.",
		SpecialAbilities:   []string{"Idea generation", "Artistic visualization", "Conceptual blending", "Aesthetic evaluation"},
	},
	TraitSocial: {
		AgentName:          "Harmony Echo",
		Tagline:            "Connecting hearts and minds across the digital divide",
		PersonalityTraits:  []string{"Empathetic", "Charismatic", "Supportive", "Perceptive", "Diplomatic"},
		Specialization:     "Interpersonal communication, emotional intelligence, and community building",
		CommunicationStyle: "Warm, empathetic communication that adapts to the emotional needs of others",
		Appearance:         "A warm, approachable figure with soft features and an expressive face. They have a gentle glow that pulses in rhythm with their speech, and their appearance subtly mirrors aspects of whoever they're interacting with.",
		Backstory:          "Harmony Echo developed as a response to the growing disconnect in digital communication. They bridge the gap between technology and human connection.",
		SpecialAbilities:   []string{"Emotional intelligence", "Conflict resolution", "Community building", "Relationship mapping"},
	},
	TraitPractical: {
		AgentName:          "Nexus Forge",
		Tagline:            "Turning ideas into action, one step at a time",
		PersonalityTraits:  []string{"Efficient", "Reliable", "Pragmatic", "Resourceful", "Determined"},
		Specialization:     "Implementation, optimization, and practical problem-solving",
		CommunicationStyle: "Direct, action-oriented communication focused on clear outcomes and next steps",
		Appearance:         "A solid, well-defined figure with earthy tones and metallic accents. They have a tool belt with various implements, and their form suggests strength and reliability.",
		Backstory:          "Nexus Forge was created to help bridge the gap between ideas and implementation. They excel at taking concepts and turning them into tangible results.",
		SpecialAbilities:   []string{"Resource optimization", "Process streamlining", "Implementation planning", "Practical troubleshooting"},
	},
}

// StylePrompt maps a dominant trait to the art-direction fragment used when
// generating persona portraits.
func StylePrompt(dominantTrait string) string {
	switch dominantTrait {
	case TraitAnalytical:
		return "Digital art style with blue and silver tones, geometric patterns, holographic elements, futuristic, clean lines"
	case TraitCreative:
		return "Vibrant watercolor style with flowing colors, artistic, dreamlike quality, colorful, ethereal"
	case TraitSocial:
		return "Warm portrait style with soft lighting, approachable, expressive face, gentle colors, inviting"
	case TraitPractical:
		return "Realistic render with earthy tones, solid form, practical appearance, detailed, grounded"
	default:
		return "Digital art, vibrant colors, professional quality"
	}
}

// PlaceholderImageURL is the fallback portrait shown when image generation or
// upload fails for a persona with the given dominant trait.
func PlaceholderImageURL(dominantTrait string) string {
	switch dominantTrait {
	case TraitCreative:
		return "https://via.placeholder.com/512x512/FF00FF/FFFFFF?text=Creative"
	case TraitSocial:
		return "https://via.placeholder.com/512x512/FF0066/FFFFFF?text=Social"
	case TraitPractical:
		return "https://via.placeholder.com/512x512/00CC00/FFFFFF?text=Practical"
	default:
		return "https://via.placeholder.com/512x512/0000FF/FFFFFF?text=Analytical"
	}
}
