package chat

import (
	"context"
	"errors"

	"github.com/cqle/dba-virtual/backend/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

// Store persists sessions and their turns.
type Store interface {
	// EnsureSession returns existingID unchanged when set, otherwise creates
	// a session titled after firstMessage and returns its id.
	EnsureSession(ctx context.Context, existingID, ownerID, firstMessage string) (string, error)
	AppendTurn(ctx context.Context, sessionID string, role chat.Role, content string) error
	// ListSessions returns the owner's sessions, newest first.
	ListSessions(ctx context.Context, ownerID string) ([]chat.Session, error)
	// ListMessages returns a session's turns in insertion order.
	ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error)
}
