// Package chatstore persists chat sessions and messages. Implementations are
// best-effort collaborators: the chat pipeline logs and swallows their
// failures rather than surfacing them to the user.
package chatstore

import (
	"context"
	"errors"

	"github.com/playbuni/backend/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

// Store is the durable record of conversations.
//
// GetOrCreateSession with an empty userID always creates a fresh anonymous
// session; with a userID it returns that user's most recently created live
// session, creating one if none qualifies. AppendMessage never mutates an
// existing message and bumps the session's UpdatedAt.
type Store interface {
	GetOrCreateSession(ctx context.Context, userID string) (chat.Session, error)
	AppendMessage(ctx context.Context, msg chat.Message) error
	ListSessions(ctx context.Context, userID string, limit int) ([]chat.SessionSummary, error)
	ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error)
	Ping(ctx context.Context) error
}
