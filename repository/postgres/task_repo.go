package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const taskColumns = `id, user_id, title, description, status, type, progress, tags, priority, comments, files,
	starred, due_date, assigned_to, category, time_spent, is_running, last_started, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id domain.TaskID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.pool.QueryRow(ctx, query, string(id)))
	if err != nil {
		return nil, err
	}
	tasks := []domain.Task{*task}
	if err := r.attachSubtasks(ctx, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR status = $2)
	ORDER BY created_at ASC
	LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, filter.UserID, string(filter.Status), limitArg(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSubtasks(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = domain.TaskID(uuid.NewString())
	}

	const query = `
	INSERT INTO tasks (id, user_id, title, description, status, type, progress, tags, priority, comments, files,
		starred, due_date, assigned_to, category, time_spent, is_running, last_started)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	RETURNING created_at, updated_at
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	spent, running, lastStarted := trackingColumns(task.TimeTracking)
	var createdAt, updatedAt time.Time
	if err := tx.QueryRow(ctx, query,
		string(task.ID),
		task.UserID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Type),
		task.Progress,
		nonNilTags(task.Tags),
		string(task.Priority),
		task.Comments,
		task.Files,
		task.Starred,
		task.DueDate,
		task.AssignedTo,
		task.Category,
		spent,
		running,
		lastStarted,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	for i := range task.Subtasks {
		if err := insertSubtask(ctx, tx, task.ID, &task.Subtasks[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	task.CreatedAt = &createdAt
	task.UpdatedAt = &updatedAt
	if task.Subtasks == nil {
		task.Subtasks = []domain.Subtask{}
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		status = $4,
		type = $5,
		progress = $6,
		tags = $7,
		priority = $8,
		comments = $9,
		files = $10,
		starred = $11,
		due_date = $12,
		assigned_to = $13,
		category = $14,
		time_spent = $15,
		is_running = $16,
		last_started = $17,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	spent, running, lastStarted := trackingColumns(task.TimeTracking)
	var updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		string(task.ID),
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Type),
		task.Progress,
		nonNilTags(task.Tags),
		string(task.Priority),
		task.Comments,
		task.Files,
		task.Starred,
		task.DueDate,
		task.AssignedTo,
		task.Category,
		spent,
		running,
		lastStarted,
	).Scan(&updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	task.UpdatedAt = &updatedAt
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id domain.TaskID) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) attachSubtasks(ctx context.Context, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]string, len(tasks))
	index := make(map[domain.TaskID]int, len(tasks))
	for i := range tasks {
		ids[i] = string(tasks[i].ID)
		index[tasks[i].ID] = i
		tasks[i].Subtasks = []domain.Subtask{}
	}

	const query = `
	SELECT id, task_id, text, completed, author_id
	FROM subtasks
	WHERE task_id = ANY($1)
	ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sub    domain.Subtask
			taskID string
		)
		if err := rows.Scan(&sub.ID, &taskID, &sub.Text, &sub.Completed, &sub.AuthorID); err != nil {
			return err
		}
		if i, ok := index[domain.TaskID(taskID)]; ok {
			tasks[i].Subtasks = append(tasks[i].Subtasks, sub)
		}
	}
	return rows.Err()
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		status      string
		taskType    string
		priority    string
		spent       float64
		running     bool
		lastStarted *time.Time
		createdAt   time.Time
		updatedAt   time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&status,
		&taskType,
		&task.Progress,
		&task.Tags,
		&priority,
		&task.Comments,
		&task.Files,
		&task.Starred,
		&task.DueDate,
		&task.AssignedTo,
		&task.Category,
		&spent,
		&running,
		&lastStarted,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.Status(status)
	task.Type = domain.TaskType(taskType)
	task.Priority = domain.Priority(priority)
	task.TimeTracking = &domain.TimeTracking{
		TimeSpent:   spent,
		IsRunning:   running,
		LastStarted: lastStarted,
	}
	task.CreatedAt = &createdAt
	task.UpdatedAt = &updatedAt
	return &task, nil
}
