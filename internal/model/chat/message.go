package chat

import "time"

// Message is one persisted turn. Messages are immutable once stored.
type Message struct {
	ID        uint64    `json:"-"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
