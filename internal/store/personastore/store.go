// Package personastore persists generated personas twice: a fast cache that
// is authoritative for read-after-write, and a relational store that is
// eventually consistent with it. The two fail independently; the persona
// pipeline decides what each failure means.
package personastore

import (
	"context"
	"errors"

	"github.com/playbuni/backend/internal/model/persona"
)

var ErrNotFound = errors.New("persona not found")

// Cache is the fast persona store. Save assigns the id and creation time and
// returns the stored object.
type Cache interface {
	Save(ctx context.Context, p persona.AIPersona) (persona.AIPersona, error)
	Get(ctx context.Context, id string) (persona.AIPersona, error)
	Recent(ctx context.Context, limit int) ([]persona.AIPersona, error)
	Stats(ctx context.Context) (persona.TraitScores, error)
}

// Store is the relational persona record. Save expects the id already
// assigned by the cache (or synthesized when the cache was down).
type Store interface {
	Save(ctx context.Context, p persona.AIPersona) error
	UpdateImage(ctx context.Context, id, imageURL string) error
	Recent(ctx context.Context, limit int) ([]persona.AIPersona, error)
	Stats(ctx context.Context) (persona.TraitScores, error)
	SaveQuizResult(ctx context.Context, scores persona.TraitScores, personaID string) error
}
