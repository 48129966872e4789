package chatstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playbuni/backend/internal/model/chat"
)

// MemoryStore keeps conversations in process memory. It backs fully-local
// mode (no database configured) and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	maxIdle  time.Duration
	sessions map[string]chat.Session
	messages map[string][]chat.Message
	now      func() time.Time
}

// NewMemoryStore builds an empty store. maxIdle of zero means a user's
// latest session is reused indefinitely.
func NewMemoryStore(maxIdle time.Duration) *MemoryStore {
	return &MemoryStore{
		maxIdle:  maxIdle,
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreateSession implements Store.
func (s *MemoryStore) GetOrCreateSession(_ context.Context, userID string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if userID != "" {
		var best chat.Session
		for _, session := range s.sessions {
			if session.UserID != userID {
				continue
			}
			if s.maxIdle > 0 && now.Sub(session.UpdatedAt) > s.maxIdle {
				continue
			}
			if best.ID == "" || session.CreatedAt.After(best.CreatedAt) {
				best = session
			}
		}
		if best.ID != "" {
			return best, nil
		}
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[session.ID] = session
	s.messages[session.ID] = make([]chat.Message, 0, 16)
	return session, nil
}

// AppendMessage implements Store.
func (s *MemoryStore) AppendMessage(_ context.Context, msg chat.Message) error {
	if msg.SessionID == "" {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[msg.SessionID]
	if !ok {
		return ErrSessionNotFound
	}

	msg.ID = uuid.NewString()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}

	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	session.UpdatedAt = msg.CreatedAt
	s.sessions[msg.SessionID] = session
	return nil
}

// ListSessions implements Store. Anonymous sessions are visible alongside the
// user's own, newest activity first.
func (s *MemoryStore) ListSessions(_ context.Context, userID string, limit int) ([]chat.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]chat.SessionSummary, 0, len(s.sessions))
	for id, session := range s.sessions {
		if session.UserID != "" && session.UserID != userID {
			continue
		}
		summaries = append(summaries, chat.SessionSummary{
			ID:           id,
			CreatedAt:    session.CreatedAt,
			UpdatedAt:    session.UpdatedAt,
			Preview:      firstUserPreview(s.messages[id]),
			MessageCount: len(s.messages[id]),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// ListMessages implements Store, ascending by creation time.
func (s *MemoryStore) ListMessages(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Ping implements Store. Memory is always reachable.
func (s *MemoryStore) Ping(context.Context) error { return nil }

func firstUserPreview(messages []chat.Message) string {
	for _, msg := range messages {
		if msg.Role == chat.RoleUser {
			return msg.Content
		}
	}
	return "New conversation"
}
