package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	chatmodel "github.com/playbuni/backend/internal/model/chat"
	"github.com/playbuni/backend/internal/service/ai"
	chatservice "github.com/playbuni/backend/internal/service/chat"
	"github.com/playbuni/backend/internal/store/chatstore"
)

// failingCompleter simulates a provider outage.
type failingCompleter struct{}

func (failingCompleter) Complete(context.Context, []chatmodel.Message, string) (string, error) {
	return "", ai.ErrRemote
}

func (failingCompleter) Stream(context.Context, []chatmodel.Message, string) (*schema.StreamReader[*schema.Message], error) {
	return nil, ai.ErrRemote
}

// cannedCompleter replies with fixed content, streamed in chunks.
type cannedCompleter struct {
	chunks []string
}

func (c cannedCompleter) Complete(context.Context, []chatmodel.Message, string) (string, error) {
	return ai.EnsureSignature(strings.Join(c.chunks, "")), nil
}

func (c cannedCompleter) Stream(context.Context, []chatmodel.Message, string) (*schema.StreamReader[*schema.Message], error) {
	sr, sw := schema.Pipe[*schema.Message](len(c.chunks))
	go func() {
		defer sw.Close()
		for _, chunk := range c.chunks {
			sw.Send(schema.AssistantMessage(chunk, nil), nil)
		}
	}()
	return sr, nil
}

// downStore fails every operation, simulating an unreachable database.
type downStore struct{}

var errStoreDown = errors.New("store down")

func (downStore) GetOrCreateSession(context.Context, string) (chatmodel.Session, error) {
	return chatmodel.Session{}, errStoreDown
}
func (downStore) AppendMessage(context.Context, chatmodel.Message) error { return errStoreDown }
func (downStore) ListSessions(context.Context, string, int) ([]chatmodel.SessionSummary, error) {
	return nil, errStoreDown
}
func (downStore) ListMessages(context.Context, string) ([]chatmodel.Message, error) {
	return nil, errStoreDown
}
func (downStore) Ping(context.Context) error { return errStoreDown }

// collectingSink records streamed deltas.
type collectingSink struct {
	deltas []string
}

func (s *collectingSink) Delta(content string) error {
	s.deltas = append(s.deltas, content)
	return nil
}

func userTurn(content string) chatservice.Request {
	return chatservice.Request{
		Messages: []chatmodel.IncomingMessage{{Role: chatmodel.RoleUser, Content: content}},
		UserID:   "user-1",
	}
}

func TestHandleNoMessages(t *testing.T) {
	p := chatservice.NewPipeline(nil, chatstore.NewMemoryStore(0), zap.NewNop())

	if _, err := p.Handle(context.Background(), chatservice.Request{}); !errors.Is(err, chatservice.ErrNoMessages) {
		t.Fatalf("expected ErrNoMessages, got %v", err)
	}
}

func TestHandleRemoteFailureFallsBack(t *testing.T) {
	store := chatstore.NewMemoryStore(0)
	p := chatservice.NewPipeline(failingCompleter{}, store, zap.NewNop())

	reply, err := p.Handle(context.Background(), userTurn("what is solana?"))
	if err != nil {
		t.Fatalf("Handle err: %v", err)
	}
	if !reply.UsedFallback {
		t.Fatal("expected fallback reply")
	}
	if !strings.Contains(strings.ToLower(reply.Content), strings.ToLower(ai.Signature)) {
		t.Fatalf("reply missing signature: %q", reply.Content)
	}

	messages, err := store.ListMessages(context.Background(), reply.SessionID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected user + assistant messages, got %d", len(messages))
	}
	if messages[0].Role != chatmodel.RoleUser || messages[1].Role != chatmodel.RoleAssistant {
		t.Fatalf("unexpected roles: %s, %s", messages[0].Role, messages[1].Role)
	}
}

func TestHandleStoreDownStillReplies(t *testing.T) {
	p := chatservice.NewPipeline(nil, downStore{}, zap.NewNop())

	reply, err := p.Handle(context.Background(), userTurn("hi there"))
	if err != nil {
		t.Fatalf("Handle err: %v", err)
	}
	if reply.Content == "" {
		t.Fatal("expected non-empty reply despite store outage")
	}
	if reply.SessionID == "" {
		t.Fatal("expected synthesized session id")
	}
	if !reply.UsedFallback {
		t.Fatal("expected fallback with no remote tier")
	}
}

func TestHandleReusesSession(t *testing.T) {
	store := chatstore.NewMemoryStore(0)
	p := chatservice.NewPipeline(nil, store, zap.NewNop())
	ctx := context.Background()

	first, err := p.Handle(ctx, userTurn("hello"))
	if err != nil {
		t.Fatalf("first Handle err: %v", err)
	}
	second, err := p.Handle(ctx, userTurn("tell me about crypto"))
	if err != nil {
		t.Fatalf("second Handle err: %v", err)
	}
	if first.SessionID != second.SessionID {
		t.Fatalf("expected session reuse: %s vs %s", first.SessionID, second.SessionID)
	}

	messages, err := store.ListMessages(ctx, first.SessionID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	wantRoles := []string{chatmodel.RoleUser, chatmodel.RoleAssistant, chatmodel.RoleUser, chatmodel.RoleAssistant}
	for i, want := range wantRoles {
		if messages[i].Role != want {
			t.Errorf("message %d role = %s, want %s", i, messages[i].Role, want)
		}
	}
}

func TestHandleExplicitSessionID(t *testing.T) {
	store := chatstore.NewMemoryStore(0)
	p := chatservice.NewPipeline(nil, store, zap.NewNop())

	session, err := store.GetOrCreateSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOrCreateSession err: %v", err)
	}

	req := userTurn("hello again")
	req.SessionID = session.ID
	reply, err := p.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle err: %v", err)
	}
	if reply.SessionID != session.ID {
		t.Fatalf("expected provided session id to be honored, got %s", reply.SessionID)
	}
}

func TestHandleStreamForwardsDeltas(t *testing.T) {
	store := chatstore.NewMemoryStore(0)
	remote := cannedCompleter{chunks: []string{"Hey ", "there ", "cutie!"}}
	p := chatservice.NewPipeline(remote, store, zap.NewNop())

	sink := &collectingSink{}
	reply, err := p.HandleStream(context.Background(), userTurn("hi"), sink)
	if err != nil {
		t.Fatalf("HandleStream err: %v", err)
	}

	if got := strings.Join(sink.deltas, ""); got != "Hey there cutie!" {
		t.Fatalf("unexpected streamed content %q", got)
	}
	if reply.Content != ai.EnsureSignature("Hey there cutie!") {
		t.Fatalf("final content not normalized: %q", reply.Content)
	}
	if reply.UsedFallback || reply.Interrupted {
		t.Fatalf("unexpected flags: %+v", reply)
	}

	messages, err := store.ListMessages(context.Background(), reply.SessionID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[1].Content != reply.Content {
		t.Fatal("persisted assistant message does not match reply")
	}
}

func TestHandleStreamStartFailureFallsBack(t *testing.T) {
	store := chatstore.NewMemoryStore(0)
	p := chatservice.NewPipeline(failingCompleter{}, store, zap.NewNop())

	sink := &collectingSink{}
	reply, err := p.HandleStream(context.Background(), userTurn("what is solana?"), sink)
	if err != nil {
		t.Fatalf("HandleStream err: %v", err)
	}
	if !reply.UsedFallback {
		t.Fatal("expected fallback reply")
	}
	if len(sink.deltas) != 1 || sink.deltas[0] != reply.Content {
		t.Fatalf("expected fallback delivered as a single delta, got %v", sink.deltas)
	}
}

func TestHandleStreamClientAbortCommitsPartial(t *testing.T) {
	store := chatstore.NewMemoryStore(0)
	ctx, cancel := context.WithCancel(context.Background())

	// A stream that emits one chunk, then fails after the context is gone.
	sr, sw := schema.Pipe[*schema.Message](1)
	go func() {
		sw.Send(schema.AssistantMessage("partial answer", nil), nil)
		cancel()
		sw.Send(nil, context.Canceled)
		sw.Close()
	}()
	remote := readerCompleter{reader: sr}
	p := chatservice.NewPipeline(remote, store, zap.NewNop())

	sink := &collectingSink{}
	reply, err := p.HandleStream(ctx, userTurn("long question"), sink)
	if err != nil {
		t.Fatalf("HandleStream err: %v", err)
	}
	if !reply.Interrupted {
		t.Fatal("expected interrupted reply")
	}
	if reply.Content != "partial answer" {
		t.Fatalf("expected partial content, got %q", reply.Content)
	}

	messages, err := store.ListMessages(context.Background(), reply.SessionID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	last := messages[len(messages)-1]
	if !last.Interrupted || last.Content != "partial answer" {
		t.Fatalf("partial not committed as interrupted: %+v", last)
	}
}

// readerCompleter hands out a pre-built stream once.
type readerCompleter struct {
	reader *schema.StreamReader[*schema.Message]
}

func (r readerCompleter) Complete(context.Context, []chatmodel.Message, string) (string, error) {
	return "", ai.ErrRemote
}

func (r readerCompleter) Stream(context.Context, []chatmodel.Message, string) (*schema.StreamReader[*schema.Message], error) {
	return r.reader, nil
}

func TestFallbackContentSigned(t *testing.T) {
	p := chatservice.NewPipeline(nil, chatstore.NewMemoryStore(0), zap.NewNop())
	content := p.FallbackContent("what is play buni?")
	if !strings.Contains(strings.ToLower(content), strings.ToLower(ai.Signature)) {
		t.Fatalf("fallback content missing signature: %q", content)
	}
}
