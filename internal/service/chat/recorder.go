package chat

import (
	"context"

	"github.com/cqle/dba-virtual/backend/internal/model/chat"
)

// Exchange is one completed user/assistant round trip.
type Exchange struct {
	SessionID   string
	OwnerID     string
	UserMessage string
	Reply       string
}

// RecordResult reports what a best-effort write achieved. SessionID is set as
// soon as a session exists, even if a later append failed.
type RecordResult struct {
	SessionID string
	Created   bool
	Err       error
}

// Recorder writes exchanges to a Store without ever failing the caller.
type Recorder struct {
	store Store
}

// NewRecorder wraps store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record ensures the session and appends the user turn then the reply.
func (r *Recorder) Record(ctx context.Context, ex Exchange) RecordResult {
	sessionID, err := r.store.EnsureSession(ctx, ex.SessionID, ex.OwnerID, ex.UserMessage)
	if err != nil {
		return RecordResult{Err: err}
	}
	result := RecordResult{SessionID: sessionID, Created: ex.SessionID == ""}

	if err := r.store.AppendTurn(ctx, sessionID, chat.RoleUser, ex.UserMessage); err != nil {
		result.Err = err
		return result
	}
	if err := r.store.AppendTurn(ctx, sessionID, chat.RoleAssistant, ex.Reply); err != nil {
		result.Err = err
	}
	return result
}
