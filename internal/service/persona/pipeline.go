// Package persona implements the persona generation pipeline: remote
// structured generation with archetype fallback, and a dual write where the
// cache is authoritative for read-after-write and the relational store is
// eventually consistent.
package persona

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	personamodel "github.com/playbuni/backend/internal/model/persona"
	"github.com/playbuni/backend/internal/store/personastore"
)

// Generator is the remote structured-generation tier. *ai.Client satisfies
// it; tests substitute failing implementations.
type Generator interface {
	GeneratePersona(ctx context.Context, scores personamodel.TraitScores, profile personamodel.Profile) (personamodel.AIPersona, error)
}

// Result carries the generated persona plus a warning when persistence was
// partial. The pipeline itself never fails.
type Result struct {
	Persona personamodel.AIPersona `json:"persona"`
	Warning string                 `json:"warning,omitempty"`
}

// Pipeline generates and persists personas. remote and db may be nil when
// unconfigured; cache must be present (memory-backed in fully-local mode).
type Pipeline struct {
	remote Generator
	cache  personastore.Cache
	db     personastore.Store
	logger *zap.Logger
}

// NewPipeline wires the persona tiers together.
func NewPipeline(remote Generator, cache personastore.Cache, db personastore.Store, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		remote: remote,
		cache:  cache,
		db:     db,
		logger: logger.Named("personapipeline"),
	}
}

// Generate produces a persona for a quiz result. It always returns a usable
// persona: remote failure or an unparseable reply substitutes the archetype
// for the dominant trait, and store failures degrade to warnings.
func (p *Pipeline) Generate(ctx context.Context, scores personamodel.TraitScores, profile personamodel.Profile) Result {
	generated := p.generate(ctx, scores, profile)

	saved, cacheErr := p.cache.Save(ctx, generated)
	if cacheErr != nil {
		p.logger.Warn("persona cache write failed, synthesizing id", zap.Error(cacheErr))
		generated.ID = "local-" + uuid.NewString()
		generated.CreatedAt = time.Now().UTC()
	} else {
		generated = saved
	}

	warning := ""
	if p.db == nil {
		if cacheErr != nil {
			warning = "persona not persisted"
		}
	} else if dbErr := p.db.Save(ctx, generated); dbErr != nil {
		p.logger.Warn("persona database write failed", zap.String("id", generated.ID), zap.Error(dbErr))
		if cacheErr == nil {
			// Cache copy is authoritative for immediate display.
			warning = "stored in cache only"
		} else {
			warning = "persona not persisted"
		}
	} else {
		if err := p.db.SaveQuizResult(ctx, scores, generated.ID); err != nil {
			p.logger.Warn("quiz result write failed", zap.String("id", generated.ID), zap.Error(err))
		}
	}

	return Result{Persona: generated, Warning: warning}
}

// AttachImage records a portrait URL on the relational record. The cached
// copy is deliberately left untouched: it keeps serving without the image
// until a caller re-saves it, which matches how the gallery reads today.
func (p *Pipeline) AttachImage(ctx context.Context, personaID, imageURL string) error {
	if p.db == nil {
		return fmt.Errorf("no relational store configured")
	}
	return p.db.UpdateImage(ctx, personaID, imageURL)
}

// GetByID reads from the authoritative cache.
func (p *Pipeline) GetByID(ctx context.Context, id string) (personamodel.AIPersona, error) {
	return p.cache.Get(ctx, id)
}

// Recent lists the newest personas, cache first with a relational fallback
// when the cache is empty or down.
func (p *Pipeline) Recent(ctx context.Context, limit int) []personamodel.AIPersona {
	cached, err := p.cache.Recent(ctx, limit)
	if err != nil {
		p.logger.Warn("recent persona cache read failed", zap.Error(err))
	} else if len(cached) > 0 {
		return cached
	}

	if p.db == nil {
		return []personamodel.AIPersona{}
	}
	fromDB, err := p.db.Recent(ctx, limit)
	if err != nil {
		p.logger.Warn("recent persona database read failed", zap.Error(err))
		return []personamodel.AIPersona{}
	}
	return fromDB
}

// Stats returns per-trait persona counts, cache first.
func (p *Pipeline) Stats(ctx context.Context) personamodel.TraitScores {
	cached, err := p.cache.Stats(ctx)
	if err != nil {
		p.logger.Warn("persona stats cache read failed", zap.Error(err))
	} else if cached != (personamodel.TraitScores{}) {
		return cached
	}

	if p.db == nil {
		return personamodel.TraitScores{}
	}
	fromDB, err := p.db.Stats(ctx)
	if err != nil {
		p.logger.Warn("persona stats database read failed", zap.Error(err))
		return personamodel.TraitScores{}
	}
	return fromDB
}

func (p *Pipeline) generate(ctx context.Context, scores personamodel.TraitScores, profile personamodel.Profile) personamodel.AIPersona {
	dominant := scores.Dominant()

	if p.remote == nil {
		return personamodel.Archetype(dominant)
	}

	generated, err := p.remote.GeneratePersona(ctx, scores, profile)
	if err != nil {
		p.logger.Warn("remote persona generation failed, using archetype",
			zap.String("trait", dominant), zap.Error(err))
		return personamodel.Archetype(dominant)
	}

	generated.DominantTrait = dominant
	return generated
}

// PortraitFilename derives a stable object name for a persona's portrait.
func PortraitFilename(agentName string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(agentName), "-"))
	if slug == "" {
		slug = "persona"
	}
	return fmt.Sprintf("%s-%d.png", slug, time.Now().UnixMilli())
}
