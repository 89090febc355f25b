package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
)

// ListTasks returns one status column. It satisfies board.TaskSource.
func (c *Client) ListTasks(ctx context.Context, status domain.Status) ([]domain.Task, error) {
	path := "/tasks"
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id domain.TaskID) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, task domain.Task) (*domain.Task, error) {
	var created domain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTask sends a partial document; fields absent from patch are kept.
func (c *Client) UpdateTask(ctx context.Context, id domain.TaskID, patch interface{}) (*domain.Task, error) {
	var updated domain.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteTask(ctx context.Context, id domain.TaskID) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func (c *Client) AddSubtask(ctx context.Context, taskID domain.TaskID, text string) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, taskPath(taskID)+"/subtasks", transport.SubtaskRequest{Text: text}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateSubtask(ctx context.Context, taskID, subtaskID domain.TaskID, update transport.SubtaskUpdateRequest) (*domain.Task, error) {
	var task domain.Task
	path := taskPath(taskID) + "/subtasks/" + url.PathEscape(string(subtaskID))
	if err := c.do(ctx, http.MethodPut, path, update, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteSubtask(ctx context.Context, taskID, subtaskID domain.TaskID) (*domain.Task, error) {
	var task domain.Task
	path := taskPath(taskID) + "/subtasks/" + url.PathEscape(string(subtaskID))
	if err := c.do(ctx, http.MethodDelete, path, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
