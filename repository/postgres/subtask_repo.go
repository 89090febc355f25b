package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type subtaskRepository struct {
	pool *pgxpool.Pool
}

// NewSubtaskRepository returns a Postgres-backed SubtaskRepository.
func NewSubtaskRepository(pool *pgxpool.Pool) repository.SubtaskRepository {
	return &subtaskRepository{pool: pool}
}

func (r *subtaskRepository) Add(ctx context.Context, taskID domain.TaskID, subtask *domain.Subtask) error {
	if subtask == nil {
		return domain.ErrInvalidPayload
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, string(taskID)).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrTaskNotFound
	}
	return insertSubtask(ctx, r.pool, taskID, subtask)
}

func (r *subtaskRepository) Update(ctx context.Context, taskID domain.TaskID, subtask *domain.Subtask) error {
	if subtask == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE subtasks
	SET text = $3,
		completed = $4
	WHERE id = $1 AND task_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, string(subtask.ID), string(taskID), subtask.Text, subtask.Completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubtaskNotFound
	}
	return nil
}

func (r *subtaskRepository) Delete(ctx context.Context, taskID, subtaskID domain.TaskID) error {
	const query = `DELETE FROM subtasks WHERE id = $1 AND task_id = $2`
	tag, err := r.pool.Exec(ctx, query, string(subtaskID), string(taskID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubtaskNotFound
	}
	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var (
	_ execer = (*pgxpool.Pool)(nil)
	_ execer = (pgx.Tx)(nil)
)

func insertSubtask(ctx context.Context, db execer, taskID domain.TaskID, subtask *domain.Subtask) error {
	if subtask.ID == "" {
		subtask.ID = domain.TaskID(uuid.NewString())
	}
	const query = `
	INSERT INTO subtasks (id, task_id, text, completed, author_id)
	VALUES ($1, $2, $3, $4, $5)
	`
	_, err := db.Exec(ctx, query, string(subtask.ID), string(taskID), subtask.Text, subtask.Completed, subtask.AuthorID)
	return err
}
