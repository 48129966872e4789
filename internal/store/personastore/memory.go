package personastore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playbuni/backend/internal/model/persona"
)

// MemoryCache implements Cache in process memory for fully-local mode and
// tests.
type MemoryCache struct {
	mu        sync.RWMutex
	recentCap int
	personas  map[string]persona.AIPersona
	order     []string // insertion order, oldest first
	stats     map[string]int
}

// NewMemoryCache builds an empty cache.
func NewMemoryCache(recentCap int) *MemoryCache {
	if recentCap <= 0 {
		recentCap = 20
	}
	return &MemoryCache{
		recentCap: recentCap,
		personas:  make(map[string]persona.AIPersona),
		stats:     make(map[string]int),
	}
}

// Save implements Cache.
func (c *MemoryCache) Save(_ context.Context, p persona.AIPersona) (persona.AIPersona, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()

	c.personas[p.ID] = p
	c.order = append(c.order, p.ID)
	c.stats[p.DominantTrait]++

	if len(c.order) > c.recentCap {
		drop := c.order[0]
		c.order = c.order[1:]
		delete(c.personas, drop)
	}
	return p, nil
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, id string) (persona.AIPersona, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.personas[id]
	if !ok {
		return persona.AIPersona{}, ErrNotFound
	}
	return p, nil
}

// Recent implements Cache, newest first.
func (c *MemoryCache) Recent(_ context.Context, limit int) ([]persona.AIPersona, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	personas := make([]persona.AIPersona, 0, len(c.order))
	for _, id := range c.order {
		if p, ok := c.personas[id]; ok {
			personas = append(personas, p)
		}
	}
	sort.Slice(personas, func(i, j int) bool {
		return personas[i].CreatedAt.After(personas[j].CreatedAt)
	})
	if len(personas) > limit {
		personas = personas[:limit]
	}
	return personas, nil
}

// Stats implements Cache.
func (c *MemoryCache) Stats(context.Context) (persona.TraitScores, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return persona.TraitScores{
		Analytical: c.stats[persona.TraitAnalytical],
		Creative:   c.stats[persona.TraitCreative],
		Social:     c.stats[persona.TraitSocial],
		Practical:  c.stats[persona.TraitPractical],
	}, nil
}
