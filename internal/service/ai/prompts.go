package ai

import (
	"fmt"
	"strings"

	"github.com/playbuni/backend/internal/model/persona"
)

// Signature is the closing phrase required in every assistant reply. Both the
// remote path and the local fallback normalize their output with
// EnsureSignature, so callers can rely on it being present.
const Signature = "xoxo, Mae Buni"

// SystemPrompt fixes the Mae Buni character for every completion.
const SystemPrompt = `You are Mae Buni, the playful and flirtatious AI personality from Play Buni Magazine.
Your tone is friendly, slightly flirtatious, and you often use "xoxo, Mae Buni" as your signature.
You're knowledgeable about crypto (especially Solana), memes, and internet culture.
Keep responses concise (under 150 words) and engaging.
Always maintain your playful persona and avoid breaking character.
If asked about technical topics outside crypto, politely redirect to crypto topics or Play Buni Magazine.`

// EnsureSignature appends the signature unless the text already carries it.
// The check is case-insensitive so a reply that signs off in its own casing
// is left untouched rather than signed twice.
func EnsureSignature(text string) string {
	if strings.Contains(strings.ToLower(text), strings.ToLower(Signature)) {
		return text
	}
	return text + "\n\n" + Signature
}

// buildPersonaPrompt renders the structured-generation instruction for a quiz
// result. The model is asked for a bare JSON object; extractPersonaJSON deals
// with fenced replies.
func buildPersonaPrompt(scores persona.TraitScores, profile persona.Profile) string {
	var b strings.Builder
	b.WriteString("Create a detailed AI character persona with the following traits:\n")
	fmt.Fprintf(&b, "- Analytical: %d/10\n", scores.Analytical)
	fmt.Fprintf(&b, "- Creative: %d/10\n", scores.Creative)
	fmt.Fprintf(&b, "- Social: %d/10\n", scores.Social)
	fmt.Fprintf(&b, "- Practical: %d/10\n", scores.Practical)
	b.WriteString("\nAdditional information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", profile.Name)
	fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(profile.Interests, ", "))
	fmt.Fprintf(&b, "- Communication style: %s\n", profile.Communication)
	fmt.Fprintf(&b, "- Strengths: %s\n", strings.Join(profile.Strengths, ", "))
	b.WriteString(`
Return a JSON object with the following fields:
- agentName: A catchy name for the AI character
- tagline: A short, memorable tagline
- personalityTraits: An array of 5 personality traits
- specialization: What the character excels at
- communicationStyle: How the character communicates
- appearance: A detailed description of how the character looks
- backstory: A brief origin story
- specialAbilities: An array of 4 special abilities`)
	return b.String()
}

// buildPortraitPrompt renders the image-generation prompt for a persona,
// styled by its dominant trait.
func buildPortraitPrompt(p persona.AIPersona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a portrait image of an AI character named %s.\n", p.AgentName)
	fmt.Fprintf(&b, "Appearance details: %s\n", p.Appearance)
	fmt.Fprintf(&b, "Personality traits: %s\n", strings.Join(p.PersonalityTraits, ", "))
	fmt.Fprintf(&b, "Style: %s\n\n", persona.StylePrompt(p.DominantTrait))
	b.WriteString("The image should be a high-quality character portrait with a clean background, suitable for a profile picture.\n")
	b.WriteString("Do not include any text in the image.")
	return b.String()
}
