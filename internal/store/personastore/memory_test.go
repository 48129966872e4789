package personastore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/playbuni/backend/internal/model/persona"
)

func TestMemoryCacheSaveGet(t *testing.T) {
	cache := NewMemoryCache(20)
	ctx := context.Background()

	saved, err := cache.Save(ctx, persona.AIPersona{AgentName: "Logic Prime", DominantTrait: persona.TraitAnalytical})
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("Save did not assign id/timestamp: %+v", saved)
	}

	got, err := cache.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got.AgentName != "Logic Prime" {
		t.Fatalf("unexpected agent name %q", got.AgentName)
	}
}

func TestMemoryCacheGetMissing(t *testing.T) {
	cache := NewMemoryCache(20)

	if _, err := cache.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryCacheRecentNewestFirst(t *testing.T) {
	cache := NewMemoryCache(20)
	ctx := context.Background()

	var last persona.AIPersona
	for i := 0; i < 3; i++ {
		last, _ = cache.Save(ctx, persona.AIPersona{
			AgentName:     fmt.Sprintf("agent-%d", i),
			DominantTrait: persona.TraitCreative,
		})
	}

	recent, err := cache.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent err: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 personas, got %d", len(recent))
	}
	if recent[0].ID != last.ID {
		t.Fatalf("expected newest first, got %s", recent[0].AgentName)
	}
}

func TestMemoryCacheRecentCapEvictsOldest(t *testing.T) {
	cache := NewMemoryCache(2)
	ctx := context.Background()

	first, _ := cache.Save(ctx, persona.AIPersona{AgentName: "oldest", DominantTrait: persona.TraitSocial})
	cache.Save(ctx, persona.AIPersona{AgentName: "middle", DominantTrait: persona.TraitSocial})
	cache.Save(ctx, persona.AIPersona{AgentName: "newest", DominantTrait: persona.TraitSocial})

	if _, err := cache.Get(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected oldest persona evicted, got %v", err)
	}

	// Eviction trims the gallery, not the counters.
	stats, err := cache.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats err: %v", err)
	}
	if stats.Social != 3 {
		t.Fatalf("expected 3 social personas counted, got %d", stats.Social)
	}
}

func TestMemoryCacheStats(t *testing.T) {
	cache := NewMemoryCache(20)
	ctx := context.Background()

	cache.Save(ctx, persona.AIPersona{DominantTrait: persona.TraitAnalytical})
	cache.Save(ctx, persona.AIPersona{DominantTrait: persona.TraitAnalytical})
	cache.Save(ctx, persona.AIPersona{DominantTrait: persona.TraitPractical})

	stats, err := cache.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats err: %v", err)
	}
	if stats.Analytical != 2 || stats.Practical != 1 || stats.Creative != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
