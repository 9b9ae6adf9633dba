package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cqle/dba-virtual/backend/internal/model/chat"
)

// MemoryStore keeps conversations in process memory. It is used when no
// database is configured; data is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]chat.Message
	order    map[string]uint64 // 会话创建顺序
	seq      uint64
	now      func() time.Time
}

// NewMemoryStore bootstraps an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
		order:    make(map[string]uint64),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSession provisions a session unless existingID is supplied.
func (s *MemoryStore) EnsureSession(_ context.Context, existingID, ownerID, firstMessage string) (string, error) {
	if existingID != "" {
		return existingID, nil
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		Title:     chat.DeriveTitle(firstMessage),
		UserID:    ownerID,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.seq++
	s.sessions[session.ID] = session
	s.messages[session.ID] = make([]chat.Message, 0, 16)
	s.order[session.ID] = s.seq
	s.mu.Unlock()

	return session.ID, nil
}

// AppendTurn appends a message to the session history.
func (s *MemoryStore) AppendTurn(_ context.Context, sessionID string, role chat.Role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}

	createdAt := s.now()
	existing := s.messages[sessionID]
	if n := len(existing); n > 0 && createdAt.Before(existing[n-1].CreatedAt) {
		createdAt = existing[n-1].CreatedAt
	}

	s.seq++
	s.messages[sessionID] = append(existing, chat.Message{
		ID:        s.seq,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: createdAt,
	})
	return nil
}

// ListSessions returns the owner's sessions, newest first.
func (s *MemoryStore) ListSessions(_ context.Context, ownerID string) ([]chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]chat.Session, 0)
	for _, session := range s.sessions {
		if session.UserID == ownerID {
			out = append(out, session)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return s.order[out[i].ID] > s.order[out[j].ID]
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListMessages returns stored messages for the provided session.
func (s *MemoryStore) ListMessages(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[sessionID]
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}
