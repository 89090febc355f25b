package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/api/client"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/apitest"
	"github.com/fastygo/taskboard/repository"
)

type cli struct {
	t     *testing.T
	srv   *apitest.Server
	state string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{
		t:     t,
		srv:   apitest.Start(t, nil),
		state: filepath.Join(t.TempDir(), "state.db"),
	}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--api", apitest.BaseURL, "--state", c.state}, args...)
	err := execute(context.Background(), full, &stdout, &stderr, client.WithHTTPClient(c.srv.Client))
	return stdout.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func (c *cli) onlyTask() domain.Task {
	c.t.Helper()
	tasks, err := c.srv.Store.Tasks().List(context.Background(), repository.TaskFilter{})
	require.NoError(c.t, err)
	require.Len(c.t, tasks, 1)
	return tasks[0]
}

func TestCLI_BoardFlow(t *testing.T) {
	c := newCLI(t)

	assert.Contains(t, c.mustRun("register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret1"), "Welcome, Ada")

	out := c.mustRun("add", "Fix", "login", "--priority", "High", "--category", "Work", "--tag", "Bug")
	assert.Contains(t, out, "Task Created")
	task := c.onlyTask()
	assert.Equal(t, "Fix login", task.Title)
	assert.Equal(t, domain.StatusDraft, task.Status)
	assert.Equal(t, domain.PriorityHigh, task.Priority)

	out = c.mustRun("show")
	assert.Contains(t, out, "Draft (1)")
	assert.Contains(t, out, "Fix login")

	out = c.mustRun("move", string(task.ID), "done")
	assert.Contains(t, out, "Fix login moved to Done")
	assert.Equal(t, domain.StatusDone, c.onlyTask().Status)

	out = c.mustRun("show", "--priority", "Low")
	assert.NotContains(t, out, "Fix login")

	c.mustRun("prefs", "--side-panel")
	out = c.mustRun("show")
	assert.Contains(t, out, "Done (1)")
	assert.Contains(t, out, "Categories: Work")

	out = c.mustRun("stats")
	assert.Contains(t, out, "Completion")
	assert.Contains(t, out, "100%")
}

func TestCLI_AddWithoutTitle(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret1")

	out, err := c.run("add")

	assert.ErrorIs(t, err, domain.ErrTitleRequired)
	assert.Contains(t, out, "! Error: Title is required")

	tasks, err := c.srv.Store.Tasks().List(context.Background(), repository.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCLI_InvalidStatusRejected(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret1")
	c.mustRun("add", "Something")

	_, err := c.run("move", string(c.onlyTask().ID), "Someday")

	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Equal(t, domain.StatusDraft, c.onlyTask().Status)
}

func TestCLI_SessionSurvivesAndLogout(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret1")

	assert.Contains(t, c.mustRun("profile"), "ada@example.com")
	assert.Contains(t, c.mustRun("logout"), "Signed out")
	assert.Contains(t, c.mustRun("logout"), "Not signed in")

	_, err := c.run("show")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestCLI_AddRejectedByServerPrintsNoSuccess(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret1")

	out, err := c.run("add", "Something", "--priority", "Whenever")

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "%v", err)
	assert.NotContains(t, out, "Task Created")

	tasks, err := c.srv.Store.Tasks().List(context.Background(), repository.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCLI_Delete(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret1")
	c.mustRun("add", "Keep")
	c.mustRun("add", "Drop")

	tasks, err := c.srv.Store.Tasks().List(context.Background(), repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	var drop domain.TaskID
	for _, task := range tasks {
		if task.Title == "Drop" {
			drop = task.ID
		}
	}
	require.NotEmpty(t, drop)

	out := c.mustRun("delete", string(drop))

	assert.Contains(t, out, "Deleted "+string(drop)+", 1 tasks left")
	assert.Equal(t, "Keep", c.onlyTask().Title)
	assert.NotContains(t, c.mustRun("show"), "Drop")
}
