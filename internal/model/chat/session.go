package chat

import (
	"strings"
	"time"
)

const (
	// TitleLimit is the display length of a derived session title, ellipsis included.
	TitleLimit    = 30
	titleEllipsis = "..."
	untitled      = "Nova conversa"
)

// Session is a persisted conversation owned by one client identity.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeriveTitle builds a session title from the first user message.
func DeriveTitle(firstMessage string) string {
	text := strings.Join(strings.Fields(firstMessage), " ")
	if text == "" {
		return untitled
	}

	runes := []rune(text)
	if len(runes) <= TitleLimit {
		return text
	}
	keep := TitleLimit - len([]rune(titleEllipsis))
	return string(runes[:keep]) + titleEllipsis
}
