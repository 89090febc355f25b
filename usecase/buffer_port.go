package usecase

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer parks writes that failed against the primary store so they
// can be replayed later. Use cases stay storage-agnostic through it.
type OperationBuffer interface {
	BufferProfile(ctx context.Context, operation string, user *domain.User) error
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
}
