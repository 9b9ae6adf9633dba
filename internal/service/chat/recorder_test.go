package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/cqle/dba-virtual/backend/internal/model/chat"
)

type failingStore struct {
	Store
	ensureErr error
	appendErr error
	appends   int
}

func (f *failingStore) EnsureSession(ctx context.Context, existingID, ownerID, first string) (string, error) {
	if f.ensureErr != nil {
		return "", f.ensureErr
	}
	return f.Store.EnsureSession(ctx, existingID, ownerID, first)
}

func (f *failingStore) AppendTurn(ctx context.Context, sessionID string, role chat.Role, content string) error {
	f.appends++
	if f.appendErr != nil {
		return f.appendErr
	}
	return f.Store.AppendTurn(ctx, sessionID, role, content)
}

func TestRecorderRecordsBothTurns(t *testing.T) {
	store := NewMemoryStore()
	rec := NewRecorder(store)
	ctx := context.Background()

	res := rec.Record(ctx, Exchange{OwnerID: "u", UserMessage: "pergunta", Reply: "resposta"})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if !res.Created || res.SessionID == "" {
		t.Fatalf("expected a created session, got %+v", res)
	}

	msgs, _ := store.ListMessages(ctx, res.SessionID)
	if len(msgs) != 2 || msgs[0].Role != chat.RoleUser || msgs[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected messages: %+v", msgs)
	}

	again := rec.Record(ctx, Exchange{SessionID: res.SessionID, OwnerID: "u", UserMessage: "mais", Reply: "ok"})
	if again.Created || again.SessionID != res.SessionID || again.Err != nil {
		t.Fatalf("second exchange must append to the same session: %+v", again)
	}
	if msgs, _ := store.ListMessages(ctx, res.SessionID); len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
}

func TestRecorderEnsureFailureSkipsAppends(t *testing.T) {
	fs := &failingStore{Store: NewMemoryStore(), ensureErr: errors.New("db down")}
	res := NewRecorder(fs).Record(context.Background(), Exchange{OwnerID: "u", UserMessage: "q", Reply: "a"})

	if res.Err == nil || res.SessionID != "" {
		t.Fatalf("expected failure without session, got %+v", res)
	}
	if fs.appends != 0 {
		t.Fatalf("no append should be attempted, got %d", fs.appends)
	}
}

func TestRecorderAppendFailureKeepsSessionID(t *testing.T) {
	fs := &failingStore{Store: NewMemoryStore(), appendErr: errors.New("write timeout")}
	res := NewRecorder(fs).Record(context.Background(), Exchange{OwnerID: "u", UserMessage: "q", Reply: "a"})

	if res.Err == nil {
		t.Fatal("expected append error to be reported")
	}
	if res.SessionID == "" {
		t.Fatal("session id must survive an append failure")
	}
	if fs.appends != 1 {
		t.Fatalf("reply append must be skipped after user append fails, got %d appends", fs.appends)
	}
}
