package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/playbuni/backend/internal/model/persona"
)

// ErrBadPersonaJSON means the structured-generation reply did not parse into
// a complete persona. Callers substitute an archetype.
var ErrBadPersonaJSON = errors.New("persona response did not match expected schema")

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// GeneratePersona asks the model for a persona object matching the quiz
// result. The reply must parse as JSON with every required field populated;
// anything less is reported as ErrBadPersonaJSON so the caller can fall back.
func (c *Client) GeneratePersona(ctx context.Context, scores persona.TraitScores, profile persona.Profile) (persona.AIPersona, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	reply, err := c.chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(buildPersonaPrompt(scores, profile)),
	})
	if err != nil {
		return persona.AIPersona{}, fmt.Errorf("%w: %v", ErrRemote, err)
	}

	generated, err := parsePersonaJSON(reply.Content)
	if err != nil {
		c.logger.Warn("persona reply failed to parse", zap.Error(err))
		return persona.AIPersona{}, err
	}

	generated.DominantTrait = scores.Dominant()
	return generated, nil
}

// parsePersonaJSON extracts the persona object from a model reply. Models
// often wrap JSON in markdown fences; the raw text is tried as-is first and
// the fenced block second.
func parsePersonaJSON(text string) (persona.AIPersona, error) {
	candidates := []string{strings.TrimSpace(text)}
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		candidates = append([]string{strings.TrimSpace(m[1])}, candidates...)
	}

	for _, candidate := range candidates {
		var p persona.AIPersona
		if err := json.Unmarshal([]byte(candidate), &p); err != nil {
			continue
		}
		if p.Complete() {
			return p, nil
		}
	}

	return persona.AIPersona{}, ErrBadPersonaJSON
}
