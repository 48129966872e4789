package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/playbuni/backend/internal/config"
	"github.com/playbuni/backend/internal/model/chat"
)

var (
	// ErrUnavailable means no provider credential is configured. Expected in
	// fully-local mode; callers fall back silently.
	ErrUnavailable = errors.New("remote completion provider not configured")
	// ErrRemote wraps provider call failures: timeouts, non-2xx, malformed
	// payloads. Callers fall back and log.
	ErrRemote = errors.New("remote completion failed")
)

// Client wraps the Ark chat model behind the Mae Buni persona. Every
// successful completion satisfies the signature postcondition, so the remote
// and local paths are indistinguishable to the caller.
type Client struct {
	chatModel    model.ChatModel
	chain        compose.Runnable[map[string]any, *schema.Message]
	historyLimit int
	timeout      time.Duration
	logger       *zap.Logger
}

// NewClient compiles the completion chain. Returns ErrUnavailable when the
// provider credential is absent.
func NewClient(ctx context.Context, cfg config.AIConfig, historyLimit int, logger *zap.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrUnavailable
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	if historyLimit <= 0 {
		historyLimit = 10
	}

	return &Client{
		chatModel:    chatModel,
		chain:        runnable,
		historyLimit: historyLimit,
		timeout:      cfg.Timeout,
		logger:       logger.Named("ai"),
	}, nil
}

// Complete runs one whole-response completion over the conversation history.
// The returned text always contains the signature.
func (c *Client) Complete(ctx context.Context, history []chat.Message, userText string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	response, err := c.chain.Invoke(ctx, c.buildChainInput(history, userText))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRemote, err)
	}

	c.logger.Debug("completion generated", zap.Int("length", len(response.Content)))
	return EnsureSignature(response.Content), nil
}

// Stream starts a streaming completion. Chunks are raw model output; the
// caller is responsible for normalizing the concatenated result with
// EnsureSignature.
func (c *Client) Stream(ctx context.Context, history []chat.Message, userText string) (*schema.StreamReader[*schema.Message], error) {
	stream, err := c.chain.Stream(ctx, c.buildChainInput(history, userText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	return stream, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) buildChainInput(history []chat.Message, userText string) map[string]any {
	return map[string]any{
		"system":  SystemPrompt,
		"history": c.buildHistoryMessages(history),
		"query":   userText,
	}
}

// buildHistoryMessages converts the last historyLimit stored turns into model
// messages. The latest user turn travels separately as the query, so it is
// dropped here when it trails the history.
func (c *Client) buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) > 0 && messages[len(messages)-1].Role == chat.RoleUser {
		messages = messages[:len(messages)-1]
	}
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > c.historyLimit {
		startIdx = len(messages) - c.historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
