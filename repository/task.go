package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskFilter narrows List. Limit <= 0 means no limit in every store.
type TaskFilter struct {
	UserID string
	Status domain.Status
	Limit  int
	Offset int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id domain.TaskID) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id domain.TaskID) error
}

type SubtaskRepository interface {
	Add(ctx context.Context, taskID domain.TaskID, subtask *domain.Subtask) error
	Update(ctx context.Context, taskID domain.TaskID, subtask *domain.Subtask) error
	Delete(ctx context.Context, taskID, subtaskID domain.TaskID) error
}
