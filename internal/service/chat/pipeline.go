// Package chat implements the response resolution pipeline: one
// parameterized path from inbound messages to a reply, with remote
// completion, local fallback, and best-effort persistence.
package chat

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"go.uber.org/zap"

	chatmodel "github.com/playbuni/backend/internal/model/chat"
	"github.com/playbuni/backend/internal/service/ai"
	"github.com/playbuni/backend/internal/service/localchat"
	"github.com/playbuni/backend/internal/store/chatstore"
)

// ErrNoMessages rejects requests without a message list. This is the only
// input the pipeline refuses; everything downstream degrades instead.
var ErrNoMessages = errors.New("messages are required")

// Completer is the remote generation tier. *ai.Client satisfies it; tests
// substitute failing or canned implementations.
type Completer interface {
	Complete(ctx context.Context, history []chatmodel.Message, userText string) (string, error)
	Stream(ctx context.Context, history []chatmodel.Message, userText string) (*schema.StreamReader[*schema.Message], error)
}

// Request is one inbound chat turn.
type Request struct {
	Messages  []chatmodel.IncomingMessage
	UserID    string
	SessionID string // optional; resolved against the store when empty
}

// Reply is the pipeline's terminal state. The pipeline always reaches it for
// well-formed input: generation failures surface only as UsedFallback.
type Reply struct {
	Content      string `json:"content"`
	SessionID    string `json:"sessionId"`
	UsedFallback bool   `json:"usedFallback"`
	Interrupted  bool   `json:"interrupted,omitempty"`
}

// StreamSink receives incremental output during a streaming resolution.
type StreamSink interface {
	Delta(content string) error
}

// Pipeline orchestrates the three tiers. remote may be nil (no credential
// configured), which routes every request through the local generator.
type Pipeline struct {
	remote Completer
	store  chatstore.Store
	logger *zap.Logger
}

// NewPipeline wires the tiers together.
func NewPipeline(remote Completer, store chatstore.Store, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		remote: remote,
		store:  store,
		logger: logger.Named("chatpipeline"),
	}
}

// RemoteAvailable reports whether the remote tier is configured.
func (p *Pipeline) RemoteAvailable() bool { return p.remote != nil }

// Handle resolves one whole-response chat turn.
//
// Not idempotent under retry: every call appends new messages. Callers that
// retry must dedupe at a higher layer.
func (p *Pipeline) Handle(ctx context.Context, req Request) (Reply, error) {
	if len(req.Messages) == 0 {
		return Reply{}, ErrNoMessages
	}

	userText := chatmodel.LastUserContent(req.Messages)
	sessionID := p.resolveSession(ctx, req)
	history := historyFromIncoming(sessionID, req.Messages)

	p.persist(ctx, chatmodel.Message{SessionID: sessionID, Role: chatmodel.RoleUser, Content: userText})

	content, usedFallback := p.generate(ctx, history, userText)

	p.persist(ctx, chatmodel.Message{SessionID: sessionID, Role: chatmodel.RoleAssistant, Content: content})

	return Reply{Content: content, SessionID: sessionID, UsedFallback: usedFallback}, nil
}

// HandleStream resolves one chat turn, forwarding deltas to sink as they
// arrive. A client abort mid-stream commits whatever text accumulated as a
// truncated assistant message annotated as interrupted; that partial text is
// also returned rather than discarded.
func (p *Pipeline) HandleStream(ctx context.Context, req Request, sink StreamSink) (Reply, error) {
	if len(req.Messages) == 0 {
		return Reply{}, ErrNoMessages
	}

	userText := chatmodel.LastUserContent(req.Messages)
	sessionID := p.resolveSession(ctx, req)
	history := historyFromIncoming(sessionID, req.Messages)

	p.persist(ctx, chatmodel.Message{SessionID: sessionID, Role: chatmodel.RoleUser, Content: userText})

	if p.remote == nil {
		return p.finishWithFallback(ctx, sessionID, userText, sink), nil
	}

	stream, err := p.remote.Stream(ctx, history, userText)
	if err != nil {
		p.logger.Warn("stream start failed, falling back", zap.Error(err))
		return p.finishWithFallback(ctx, sessionID, userText, sink), nil
	}
	defer stream.Close()

	var builder strings.Builder
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			if ctx.Err() != nil && builder.Len() > 0 {
				partial := builder.String()
				p.persist(context.WithoutCancel(ctx), chatmodel.Message{
					SessionID:   sessionID,
					Role:        chatmodel.RoleAssistant,
					Content:     partial,
					Interrupted: true,
				})
				p.logger.Info("stream interrupted by client", zap.String("session", sessionID), zap.Int("partial", len(partial)))
				return Reply{Content: partial, SessionID: sessionID, Interrupted: true}, nil
			}
			p.logger.Warn("stream failed, falling back", zap.Error(recvErr))
			return p.finishWithFallback(ctx, sessionID, userText, sink), nil
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}
		builder.WriteString(chunk.Content)
		if err := sink.Delta(chunk.Content); err != nil {
			p.logger.Warn("sink rejected delta", zap.Error(err))
		}
	}

	content := ai.EnsureSignature(builder.String())
	p.persist(ctx, chatmodel.Message{SessionID: sessionID, Role: chatmodel.RoleAssistant, Content: content})
	return Reply{Content: content, SessionID: sessionID}, nil
}

// FallbackContent produces guaranteed text for error envelopes so the UI
// never renders a dead end.
func (p *Pipeline) FallbackContent(userText string) string {
	return localchat.Generate(userText)
}

// generate attempts the remote tier and falls through to the local generator
// on any failure. Both paths satisfy the signature postcondition.
func (p *Pipeline) generate(ctx context.Context, history []chatmodel.Message, userText string) (string, bool) {
	if p.remote == nil {
		return localchat.Generate(userText), true
	}

	content, err := p.remote.Complete(ctx, history, userText)
	if err != nil {
		p.logger.Warn("remote completion failed, falling back", zap.Error(err))
		return localchat.Generate(userText), true
	}
	return content, false
}

// resolveSession returns the session id for this turn, synthesizing a local
// id when the store is down. The degraded id will simply fail to persist
// later; that is accepted, not retried.
func (p *Pipeline) resolveSession(ctx context.Context, req Request) string {
	if req.SessionID != "" {
		return req.SessionID
	}

	session, err := p.store.GetOrCreateSession(ctx, req.UserID)
	if err != nil {
		p.logger.Warn("session resolution failed, synthesizing id", zap.Error(err))
		return uuid.NewString()
	}
	return session.ID
}

// persist writes a message best-effort. Failures are logged and swallowed;
// they never change the user-visible outcome.
func (p *Pipeline) persist(ctx context.Context, msg chatmodel.Message) {
	if err := p.store.AppendMessage(ctx, msg); err != nil {
		p.logger.Warn("message persistence failed",
			zap.String("session", msg.SessionID),
			zap.String("role", msg.Role),
			zap.Error(err))
	}
}

func (p *Pipeline) finishWithFallback(ctx context.Context, sessionID, userText string, sink StreamSink) Reply {
	content := localchat.Generate(userText)
	if err := sink.Delta(content); err != nil {
		p.logger.Warn("sink rejected fallback content", zap.Error(err))
	}
	p.persist(ctx, chatmodel.Message{SessionID: sessionID, Role: chatmodel.RoleAssistant, Content: content})
	return Reply{Content: content, SessionID: sessionID, UsedFallback: true}
}

// historyFromIncoming converts wire messages into stored-message shape for
// the remote tier. The local generator never sees history; it is stateless
// by design.
func historyFromIncoming(sessionID string, messages []chatmodel.IncomingMessage) []chatmodel.Message {
	history := make([]chatmodel.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role != chatmodel.RoleUser && m.Role != chatmodel.RoleAssistant {
			continue
		}
		history = append(history, chatmodel.Message{SessionID: sessionID, Role: m.Role, Content: m.Content})
	}
	return history
}
