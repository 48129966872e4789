package chatstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/playbuni/backend/internal/model/chat"
)

const (
	sessionsTable = "chat_sessions"
	messagesTable = "chat_messages"
)

// SupabaseStore persists sessions and messages in the relational store.
type SupabaseStore struct {
	client  *supabase.Client
	maxIdle time.Duration
	logger  *zap.Logger

	schemaMu sync.Mutex
	schemaOK bool
}

// NewSupabaseStore wraps an existing Supabase client.
func NewSupabaseStore(client *supabase.Client, maxIdle time.Duration, logger *zap.Logger) *SupabaseStore {
	return &SupabaseStore{
		client:  client,
		maxIdle: maxIdle,
		logger:  logger.Named("chatstore"),
	}
}

type sessionRow struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type messageRow struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Interrupted bool      `json:"interrupted"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r sessionRow) toSession() chat.Session {
	s := chat.Session{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
	if r.UserID != nil {
		s.UserID = *r.UserID
	}
	return s
}

func (r messageRow) toMessage() chat.Message {
	return chat.Message{
		ID:          r.ID,
		SessionID:   r.SessionID,
		Role:        r.Role,
		Content:     r.Content,
		Interrupted: r.Interrupted,
		CreatedAt:   r.CreatedAt,
	}
}

// ensureSchema probes the backing tables once per process lifetime. Tables
// are provisioned by migrations; the probe catches a misconfigured project
// before the first real query rather than on every request.
func (s *SupabaseStore) ensureSchema(ctx context.Context) error {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()

	if s.schemaOK {
		return nil
	}

	for _, table := range []string{sessionsTable, messagesTable} {
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

// GetOrCreateSession implements Store.
func (s *SupabaseStore) GetOrCreateSession(ctx context.Context, userID string) (chat.Session, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return chat.Session{}, err
	}

	if userID != "" {
		var rows []sessionRow
		_, err := s.client.From(sessionsTable).
			Select("*", "", false).
			Eq("user_id", userID).
			Order("created_at", &postgrest.OrderOpts{Ascending: false}).
			Limit(1, "").
			ExecuteTo(&rows)
		if err != nil {
			return chat.Session{}, fmt.Errorf("session lookup failed: %w", err)
		}
		if len(rows) > 0 {
			session := rows[0].toSession()
			if s.maxIdle == 0 || time.Since(session.UpdatedAt) <= s.maxIdle {
				return session, nil
			}
		}
	}

	now := time.Now().UTC()
	row := sessionRow{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	if userID != "" {
		row.UserID = &userID
	}

	var inserted []sessionRow
	if _, err := s.client.From(sessionsTable).Insert(row, false, "", "", "").ExecuteTo(&inserted); err != nil {
		return chat.Session{}, fmt.Errorf("session insert failed: %w", err)
	}
	return row.toSession(), nil
}

// AppendMessage implements Store. The session timestamp bump is best-effort;
// a failure there does not fail the append.
func (s *SupabaseStore) AppendMessage(ctx context.Context, msg chat.Message) error {
	if msg.SessionID == "" {
		return ErrSessionNotFound
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	now := msg.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	row := messageRow{
		ID:          uuid.NewString(),
		SessionID:   msg.SessionID,
		Role:        msg.Role,
		Content:     msg.Content,
		Interrupted: msg.Interrupted,
		CreatedAt:   now,
	}

	var inserted []messageRow
	if _, err := s.client.From(messagesTable).Insert(row, false, "", "", "").ExecuteTo(&inserted); err != nil {
		return fmt.Errorf("message insert failed: %w", err)
	}

	var updated []sessionRow
	_, err := s.client.From(sessionsTable).
		Update(map[string]any{"updated_at": now}, "", "").
		Eq("id", msg.SessionID).
		ExecuteTo(&updated)
	if err != nil {
		s.logger.Warn("failed to bump session timestamp", zap.String("session", msg.SessionID), zap.Error(err))
	}
	return nil
}

// ListSessions implements Store. Previews and counts are assembled from one
// batched message query instead of a per-session round trip.
func (s *SupabaseStore) ListSessions(ctx context.Context, userID string, limit int) ([]chat.SessionSummary, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	query := s.client.From(sessionsTable).Select("*", "", false)
	if userID != "" {
		query = query.Or(fmt.Sprintf("user_id.is.null,user_id.eq.%s", userID), "")
	}

	var rows []sessionRow
	_, err := query.
		Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("session listing failed: %w", err)
	}
	if len(rows) == 0 {
		return []chat.SessionSummary{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var msgs []messageRow
	_, err = s.client.From(messagesTable).
		Select("*", "", false).
		In("session_id", ids).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&msgs)
	if err != nil {
		return nil, fmt.Errorf("message listing failed: %w", err)
	}

	previews := make(map[string]string, len(rows))
	counts := make(map[string]int, len(rows))
	for _, m := range msgs {
		counts[m.SessionID]++
		if _, ok := previews[m.SessionID]; !ok && m.Role == chat.RoleUser {
			previews[m.SessionID] = m.Content
		}
	}

	summaries := make([]chat.SessionSummary, len(rows))
	for i, row := range rows {
		preview := previews[row.ID]
		if preview == "" {
			preview = "New conversation"
		}
		summaries[i] = chat.SessionSummary{
			ID:           row.ID,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
			Preview:      preview,
			MessageCount: counts[row.ID],
		}
	}
	return summaries, nil
}

// ListMessages implements Store, ascending by creation time.
func (s *SupabaseStore) ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	var rows []messageRow
	_, err := s.client.From(messagesTable).
		Select("*", "", false).
		Eq("session_id", sessionID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("message listing failed: %w", err)
	}

	messages := make([]chat.Message, len(rows))
	for i, row := range rows {
		messages[i] = row.toMessage()
	}
	return messages, nil
}

// Ping implements Store by running the schema probe.
func (s *SupabaseStore) Ping(ctx context.Context) error {
	return s.ensureSchema(ctx)
}
