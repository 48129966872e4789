package personastore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/playbuni/backend/internal/model/persona"
)

const (
	personasTable    = "ai_personas"
	quizResultsTable = "quiz_results"
)

// SupabaseStore implements Store on the relational database.
type SupabaseStore struct {
	client *supabase.Client
	logger *zap.Logger

	schemaMu sync.Mutex
	schemaOK bool
}

// NewSupabaseStore wraps an existing Supabase client.
func NewSupabaseStore(client *supabase.Client, logger *zap.Logger) *SupabaseStore {
	return &SupabaseStore{
		client: client,
		logger: logger.Named("personastore"),
	}
}

type personaRow struct {
	ID                 string    `json:"id"`
	AgentName          string    `json:"agent_name"`
	Tagline            string    `json:"tagline"`
	PersonalityTraits  []string  `json:"personality_traits"`
	Specialization     string    `json:"specialization"`
	CommunicationStyle string    `json:"communication_style"`
	Appearance         string    `json:"appearance"`
	Backstory          string    `json:"backstory"`
	SpecialAbilities   []string  `json:"special_abilities"`
	ImageURL           *string   `json:"image_url"`
	DominantTrait      string    `json:"dominant_trait"`
	CreatedAt          time.Time `json:"created_at"`
}

type quizResultRow struct {
	AnalyticalScore int    `json:"analytical_score"`
	CreativeScore   int    `json:"creative_score"`
	SocialScore     int    `json:"social_score"`
	PracticalScore  int    `json:"practical_score"`
	PersonaID       string `json:"persona_id"`
}

func rowFromPersona(p persona.AIPersona) personaRow {
	row := personaRow{
		ID:                 p.ID,
		AgentName:          p.AgentName,
		Tagline:            p.Tagline,
		PersonalityTraits:  p.PersonalityTraits,
		Specialization:     p.Specialization,
		CommunicationStyle: p.CommunicationStyle,
		Appearance:         p.Appearance,
		Backstory:          p.Backstory,
		SpecialAbilities:   p.SpecialAbilities,
		DominantTrait:      p.DominantTrait,
		CreatedAt:          p.CreatedAt,
	}
	if p.ImageURL != "" {
		row.ImageURL = &p.ImageURL
	}
	return row
}

func (r personaRow) toPersona() persona.AIPersona {
	p := persona.AIPersona{
		ID:                 r.ID,
		AgentName:          r.AgentName,
		Tagline:            r.Tagline,
		PersonalityTraits:  r.PersonalityTraits,
		Specialization:     r.Specialization,
		CommunicationStyle: r.CommunicationStyle,
		Appearance:         r.Appearance,
		Backstory:          r.Backstory,
		SpecialAbilities:   r.SpecialAbilities,
		DominantTrait:      r.DominantTrait,
		CreatedAt:          r.CreatedAt,
	}
	if r.ImageURL != nil {
		p.ImageURL = *r.ImageURL
	}
	return p
}

// ensureSchema probes the backing tables once per process lifetime.
func (s *SupabaseStore) ensureSchema(ctx context.Context) error {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()

	if s.schemaOK {
		return nil
	}

	for _, table := range []string{personasTable, quizResultsTable} {
		var probe []struct {
			ID string `json:"id"`
		}
		if _, err := s.client.From(table).Select("id", "", false).Limit(1, "").ExecuteTo(&probe); err != nil {
			return fmt.Errorf("schema probe for %s failed: %w", table, err)
		}
	}

	s.schemaOK = true
	return nil
}

// Save implements Store.
func (s *SupabaseStore) Save(ctx context.Context, p persona.AIPersona) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	var inserted []personaRow
	if _, err := s.client.From(personasTable).Insert(rowFromPersona(p), false, "", "", "").ExecuteTo(&inserted); err != nil {
		return fmt.Errorf("persona insert failed: %w", err)
	}
	return nil
}

// UpdateImage implements Store. Only the relational record changes; cached
// copies keep their original (usually empty) image URL until re-saved.
func (s *SupabaseStore) UpdateImage(ctx context.Context, id, imageURL string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	var updated []personaRow
	_, err := s.client.From(personasTable).
		Update(map[string]any{"image_url": imageURL}, "", "").
		Eq("id", id).
		ExecuteTo(&updated)
	if err != nil {
		return fmt.Errorf("persona image update failed: %w", err)
	}
	return nil
}

// Recent implements Store, newest first.
func (s *SupabaseStore) Recent(ctx context.Context, limit int) ([]persona.AIPersona, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	var rows []personaRow
	_, err := s.client.From(personasTable).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("persona listing failed: %w", err)
	}

	personas := make([]persona.AIPersona, len(rows))
	for i, row := range rows {
		personas[i] = row.toPersona()
	}
	return personas, nil
}

// Stats implements Store by counting dominant traits client-side.
func (s *SupabaseStore) Stats(ctx context.Context) (persona.TraitScores, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return persona.TraitScores{}, err
	}

	var rows []struct {
		DominantTrait string `json:"dominant_trait"`
	}
	_, err := s.client.From(personasTable).
		Select("dominant_trait", "", false).
		ExecuteTo(&rows)
	if err != nil {
		return persona.TraitScores{}, fmt.Errorf("persona stats query failed: %w", err)
	}

	var stats persona.TraitScores
	for _, row := range rows {
		switch row.DominantTrait {
		case persona.TraitAnalytical:
			stats.Analytical++
		case persona.TraitCreative:
			stats.Creative++
		case persona.TraitSocial:
			stats.Social++
		case persona.TraitPractical:
			stats.Practical++
		}
	}
	return stats, nil
}

// SaveQuizResult implements Store.
func (s *SupabaseStore) SaveQuizResult(ctx context.Context, scores persona.TraitScores, personaID string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	row := quizResultRow{
		AnalyticalScore: scores.Analytical,
		CreativeScore:   scores.Creative,
		SocialScore:     scores.Social,
		PracticalScore:  scores.Practical,
		PersonaID:       personaID,
	}

	var inserted []quizResultRow
	if _, err := s.client.From(quizResultsTable).Insert(row, false, "", "", "").ExecuteTo(&inserted); err != nil {
		return fmt.Errorf("quiz result insert failed: %w", err)
	}
	return nil
}
