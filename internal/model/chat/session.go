package chat

import "time"

// Session groups the messages of one conversation. UserID is empty for
// anonymous visitors; anonymous sessions are never reused across requests.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionSummary is the list view of a session: the first user message as a
// preview plus a message count, newest sessions first.
type SessionSummary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Preview      string    `json:"preview"`
	MessageCount int       `json:"messageCount"`
}
