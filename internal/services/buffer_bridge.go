package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/buffer"
	"github.com/fastygo/taskboard/usecase"
)

// BufferBridge adapts the processor to the use-case level OperationBuffer port.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferProfile(ctx context.Context, operation string, user *domain.User) error {
	if b.processor == nil || user == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(bufferedUser{User: *user, PasswordHash: user.PasswordHash, GoogleSub: user.GoogleSub})
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		UserID:    user.ID,
		Entity:    buffer.EntityProfile,
		Operation: operation,
		Data:      payload,
		Priority:  buffer.PriorityNormal,
	})
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	priority := buffer.PriorityHigh
	if operation == usecase.OperationDelete {
		priority = buffer.PriorityLow
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		ID:        string(task.ID) + ":" + operation,
		UserID:    task.UserID,
		Entity:    buffer.EntityTask,
		Operation: operation,
		Data:      payload,
		Priority:  priority,
	})
}

// bufferedUser keeps the fields domain.User hides from JSON.
type bufferedUser struct {
	domain.User
	PasswordHash string `json:"password_hash,omitempty"`
	GoogleSub    string `json:"google_sub,omitempty"`
}

func (u bufferedUser) restore() domain.User {
	user := u.User
	user.PasswordHash = u.PasswordHash
	user.GoogleSub = u.GoogleSub
	return user
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
