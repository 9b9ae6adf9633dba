package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cqle/dba-virtual/backend/internal/model/chat"
)

// SessionModel is the chat_sessions row.
type SessionModel struct {
	ID        string         `gorm:"primaryKey;size:64"`
	Title     string         `gorm:"size:128;not null"`
	UserID    string         `gorm:"index;size:128;not null"`
	CreatedAt time.Time      `gorm:"index"`
	Messages  []MessageModel `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (SessionModel) TableName() string { return "chat_sessions" }

// MessageModel is the chat_messages row. ID is auto-incremented and breaks
// ties between equal CreatedAt values.
type MessageModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	SessionID string    `gorm:"index;size:64;not null"`
	Role      string    `gorm:"size:16;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (MessageModel) TableName() string { return "chat_messages" }

// Models lists the tables owned by this package, in migration order.
func Models() []interface{} {
	return []interface{}{&SessionModel{}, &MessageModel{}}
}

// GormStore implements Store on a relational database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) EnsureSession(ctx context.Context, existingID, ownerID, firstMessage string) (string, error) {
	if existingID != "" {
		return existingID, nil
	}

	model := SessionModel{
		ID:     uuid.NewString(),
		Title:  chat.DeriveTitle(firstMessage),
		UserID: ownerID,
	}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return model.ID, nil
}

func (s *GormStore) AppendTurn(ctx context.Context, sessionID string, role chat.Role, content string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&SessionModel{}).Where("id = ?", sessionID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up session: %w", err)
		}
		if count == 0 {
			return ErrSessionNotFound
		}

		msg := MessageModel{SessionID: sessionID, Role: string(role), Content: content}
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("failed to append message: %w", err)
		}
		return nil
	})
}

func (s *GormStore) ListSessions(ctx context.Context, ownerID string) ([]chat.Session, error) {
	var rows []SessionModel
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]chat.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, chat.Session{
			ID:        row.ID,
			Title:     row.Title,
			UserID:    row.UserID,
			CreatedAt: row.CreatedAt,
		})
	}
	return sessions, nil
}

func (s *GormStore) ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	var rows []MessageModel
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]chat.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, chat.Message{
			ID:        row.ID,
			SessionID: row.SessionID,
			Role:      chat.ParseRole(row.Role),
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
		})
	}
	return messages, nil
}
