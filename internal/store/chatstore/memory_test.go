package chatstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/playbuni/backend/internal/model/chat"
)

func TestGetOrCreateSessionReusesLatest(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	first, err := store.GetOrCreateSession(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetOrCreateSession err: %v", err)
	}
	second, err := store.GetOrCreateSession(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetOrCreateSession err: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected session reuse, got %s and %s", first.ID, second.ID)
	}
}

func TestGetOrCreateSessionAnonymousAlwaysNew(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	first, _ := store.GetOrCreateSession(ctx, "")
	second, _ := store.GetOrCreateSession(ctx, "")
	if first.ID == second.ID {
		t.Fatal("anonymous sessions must not be shared")
	}
}

func TestGetOrCreateSessionExpiry(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	first, _ := store.GetOrCreateSession(ctx, "user-1")

	// Within the idle window the session is reused.
	store.now = func() time.Time { return base.Add(10 * time.Minute) }
	again, _ := store.GetOrCreateSession(ctx, "user-1")
	if again.ID != first.ID {
		t.Fatal("expected reuse within idle window")
	}

	// Past the idle window a fresh session is created.
	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	fresh, _ := store.GetOrCreateSession(ctx, "user-1")
	if fresh.ID == first.ID {
		t.Fatal("expected new session after idle expiry")
	}
}

func TestAppendMessageUnknownSession(t *testing.T) {
	store := NewMemoryStore(0)

	err := store.AppendMessage(context.Background(), chat.Message{SessionID: "missing", Role: chat.RoleUser, Content: "hi"})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestListMessagesOrdered(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	session, _ := store.GetOrCreateSession(ctx, "user-1")
	contents := []string{"one", "two", "three"}
	for _, content := range contents {
		if err := store.AppendMessage(ctx, chat.Message{SessionID: session.ID, Role: chat.RoleUser, Content: content}); err != nil {
			t.Fatalf("AppendMessage err: %v", err)
		}
	}

	messages, err := store.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i, want := range contents {
		if messages[i].Content != want {
			t.Errorf("message %d = %q, want %q", i, messages[i].Content, want)
		}
		if messages[i].ID == "" {
			t.Errorf("message %d missing id", i)
		}
	}
}

func TestListSessionsPreviewAndCap(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		offset := time.Duration(i) * time.Minute
		store.now = func() time.Time { return base.Add(offset) }
		session, _ := store.GetOrCreateSession(ctx, "")
		store.AppendMessage(ctx, chat.Message{SessionID: session.ID, Role: chat.RoleUser, Content: "question"})
		store.AppendMessage(ctx, chat.Message{SessionID: session.ID, Role: chat.RoleAssistant, Content: "answer"})
	}

	summaries, err := store.ListSessions(ctx, "user-1", 3)
	if err != nil {
		t.Fatalf("ListSessions err: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(summaries))
	}
	for i := 1; i < len(summaries); i++ {
		if summaries[i].UpdatedAt.After(summaries[i-1].UpdatedAt) {
			t.Fatal("summaries not sorted newest first")
		}
	}
	if summaries[0].Preview != "question" {
		t.Fatalf("unexpected preview %q", summaries[0].Preview)
	}
	if summaries[0].MessageCount != 2 {
		t.Fatalf("unexpected message count %d", summaries[0].MessageCount)
	}
}

func TestListSessionsEmptyPreview(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	store.GetOrCreateSession(ctx, "user-1")
	summaries, err := store.ListSessions(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("ListSessions err: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].Preview != "New conversation" {
		t.Fatalf("unexpected preview %q", summaries[0].Preview)
	}
}

func TestListSessionsHidesOtherUsers(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	store.GetOrCreateSession(ctx, "user-1")
	store.GetOrCreateSession(ctx, "user-2")
	store.GetOrCreateSession(ctx, "")

	summaries, err := store.ListSessions(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("ListSessions err: %v", err)
	}
	// user-1's own session plus the anonymous one.
	if len(summaries) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(summaries))
	}
}
