package task

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

// SubtaskPatch carries the optional fields of a subtask update.
type SubtaskPatch struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

type UseCase struct {
	tasks    repository.TaskRepository
	subtasks repository.SubtaskRepository
	buffer   usecase.OperationBuffer
	logger   *zap.Logger
	now      func() time.Time
}

func New(tasks repository.TaskRepository, subtasks repository.SubtaskRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		subtasks: subtasks,
		buffer:   buffer,
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return uc.tasks.List(ctx, filter)
}

// GetTask returns the task only when it belongs to userID.
func (uc *UseCase) GetTask(ctx context.Context, userID string, id domain.TaskID) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (uc *UseCase) CreateTask(ctx context.Context, userID string, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	task.UserID = userID
	if task.Status == "" {
		task.Status = domain.StatusDraft
	}
	if task.TimeTracking == nil {
		task.TimeTracking = &domain.TimeTracking{}
	}
	uc.normalizeTracking(task.TimeTracking)
	for i := range task.Subtasks {
		if task.Subtasks[i].AuthorID == "" {
			task.Subtasks[i].AuthorID = userID
		}
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationCreate, task) {
			return task, nil
		}
		return nil, err
	}
	return created, nil
}

// PatchTask applies a partial JSON document on top of the stored task.
// Identity, ownership and subtasks are not patchable here.
func (uc *UseCase) PatchTask(ctx context.Context, userID string, id domain.TaskID, patch []byte) (*domain.Task, error) {
	current, err := uc.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	if err := json.Unmarshal(patch, &updated); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	updated.ID = current.ID
	updated.UserID = current.UserID
	updated.Subtasks = current.Subtasks
	updated.CreatedAt = current.CreatedAt
	if updated.TimeTracking == nil {
		updated.TimeTracking = &domain.TimeTracking{}
	}
	uc.normalizeTracking(updated.TimeTracking)

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := uc.tasks.Update(ctx, &updated); err != nil {
		if !errors.Is(err, domain.ErrTaskNotFound) && uc.shouldBuffer(ctx, usecase.OperationUpdate, &updated) {
			return &updated, nil
		}
		return nil, err
	}
	return &updated, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, userID string, id domain.TaskID) error {
	if _, err := uc.GetTask(ctx, userID, id); err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		task := &domain.Task{ID: id, UserID: userID}
		if uc.shouldBuffer(ctx, usecase.OperationDelete, task) {
			return nil
		}
		return err
	}
	return nil
}

func (uc *UseCase) AddSubtask(ctx context.Context, userID string, taskID domain.TaskID, text string) (*domain.Task, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "subtask text is required")
	}
	if _, err := uc.GetTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	sub := &domain.Subtask{Text: text, AuthorID: userID}
	if err := uc.subtasks.Add(ctx, taskID, sub); err != nil {
		return nil, err
	}
	return uc.tasks.GetByID(ctx, taskID)
}

func (uc *UseCase) UpdateSubtask(ctx context.Context, userID string, taskID, subtaskID domain.TaskID, patch SubtaskPatch) (*domain.Task, error) {
	task, err := uc.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	var sub *domain.Subtask
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == subtaskID {
			sub = &task.Subtasks[i]
			break
		}
	}
	if sub == nil {
		return nil, domain.ErrSubtaskNotFound
	}

	if patch.Text != nil {
		if strings.TrimSpace(*patch.Text) == "" {
			return nil, domain.NewError(domain.ErrCodeInvalid, "subtask text is required")
		}
		sub.Text = *patch.Text
	}
	if patch.Completed != nil {
		sub.Completed = *patch.Completed
	}

	if err := uc.subtasks.Update(ctx, taskID, sub); err != nil {
		return nil, err
	}
	return task, nil
}

func (uc *UseCase) DeleteSubtask(ctx context.Context, userID string, taskID, subtaskID domain.TaskID) (*domain.Task, error) {
	if _, err := uc.GetTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	if err := uc.subtasks.Delete(ctx, taskID, subtaskID); err != nil {
		return nil, err
	}
	return uc.tasks.GetByID(ctx, taskID)
}

// normalizeTracking keeps lastStarted set exactly while the tracker runs.
func (uc *UseCase) normalizeTracking(tt *domain.TimeTracking) {
	if tt.TimeSpent < 0 {
		tt.TimeSpent = 0
	}
	switch {
	case !tt.IsRunning:
		tt.LastStarted = nil
	case tt.LastStarted == nil:
		now := uc.now()
		tt.LastStarted = &now
	}
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, task *domain.Task) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation), zap.String("task_id", string(task.ID)))
	return true
}
