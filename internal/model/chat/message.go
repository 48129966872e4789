package chat

import "time"

// Message roles as stored and exchanged with clients.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message persists individual conversation turns.
type Message struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Interrupted bool      `json:"interrupted,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IncomingMessage is the wire shape clients send in chat requests.
type IncomingMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LastUserContent returns the content of the most recent user turn, or ""
// when the history contains none. An empty result is not an error: the
// pipeline treats it as an empty prompt rather than rejecting the request.
func LastUserContent(messages []IncomingMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
