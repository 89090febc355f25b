package client

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/apitest"
	"github.com/fastygo/taskboard/internal/clientstate"
	"github.com/fastygo/taskboard/internal/infrastructure/localstore"
	"github.com/fastygo/taskboard/usecase/board"
)

func newTestClient(t *testing.T) (*Client, *clientstate.Credentials, *apitest.Server, *int32) {
	t.Helper()
	srv := apitest.Start(t, nil)

	store, err := localstore.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	creds, err := clientstate.LoadCredentials(store)
	require.NoError(t, err)

	var logouts int32
	c := New(apitest.BaseURL, creds,
		WithHTTPClient(srv.Client),
		WithTimeout(2*time.Second),
		WithLogoutHook(func() { atomic.AddInt32(&logouts, 1) }),
	)
	return c, creds, srv, &logouts
}

func signUp(t *testing.T, c *Client) *domain.AuthResult {
	t.Helper()
	result, err := c.Register(context.Background(), "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)
	return result
}

func TestAuthCachesCredentials(t *testing.T) {
	c, creds, _, _ := newTestClient(t)

	result := signUp(t, c)

	assert.Equal(t, result.Token, creds.Token())
	require.NotNil(t, creds.User())
	assert.Equal(t, "ada@example.com", creds.User().Email)

	profile, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, profile.ID)
}

func TestUnauthorizedForcesLogout(t *testing.T) {
	c, creds, srv, logouts := newTestClient(t)
	result := signUp(t, c)

	// Revoke the session server-side; the next call must sign the client out.
	require.NoError(t, srv.Store.Sessions().DeleteForUser(context.Background(), result.User.ID))

	_, err := c.ListTasks(context.Background(), domain.StatusDraft)

	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
	assert.Empty(t, creds.Token())
	assert.Nil(t, creds.User())
	assert.Equal(t, int32(1), atomic.LoadInt32(logouts))
}

func TestNoTokenIsUnauthorized(t *testing.T) {
	c, _, _, logouts := newTestClient(t)

	_, err := c.ListTasks(context.Background(), "")

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
	assert.Equal(t, int32(1), atomic.LoadInt32(logouts))
}

func TestLoginErrorsKeepServerMessage(t *testing.T) {
	c, _, _, _ := newTestClient(t)
	signUp(t, c)

	_, err := c.Login(context.Background(), "ada@example.com", "wrong")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestTaskCRUDRoundTrip(t *testing.T) {
	c, _, _, _ := newTestClient(t)
	signUp(t, c)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, domain.Task{
		Title:    "Fix bug",
		Status:   domain.StatusDraft,
		Priority: domain.PriorityHigh,
		Tags:     []string{"Bug"},
		DueDate:  "2024-05-01",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	drafts, err := c.ListTasks(ctx, domain.StatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, created.ID, drafts[0].ID)

	inProgress, err := c.ListTasks(ctx, domain.StatusInProgress)
	require.NoError(t, err)
	assert.NotNil(t, inProgress)
	assert.Empty(t, inProgress)

	updated, err := c.UpdateTask(ctx, created.ID, map[string]interface{}{"status": domain.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, "Fix bug", updated.Title)

	withSub, err := c.AddSubtask(ctx, created.ID, "reproduce")
	require.NoError(t, err)
	require.Len(t, withSub.Subtasks, 1)

	done := true
	withSub, err = c.UpdateSubtask(ctx, created.ID, withSub.Subtasks[0].ID, transport.SubtaskUpdateRequest{Completed: &done})
	require.NoError(t, err)
	assert.True(t, withSub.Subtasks[0].Completed)

	withSub, err = c.DeleteSubtask(ctx, created.ID, withSub.Subtasks[0].ID)
	require.NoError(t, err)
	assert.Empty(t, withSub.Subtasks)

	require.NoError(t, c.DeleteTask(ctx, created.ID))
	_, err = c.GetTask(ctx, created.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestCreateWithoutTitleIsInvalid(t *testing.T) {
	c, _, _, _ := newTestClient(t)
	signUp(t, c)

	_, err := c.CreateTask(context.Background(), domain.Task{Status: domain.StatusDraft})

	assert.ErrorIs(t, err, domain.ErrTitleRequired)
}

func TestBoardLoadsThroughClient(t *testing.T) {
	c, _, _, _ := newTestClient(t)
	signUp(t, c)
	ctx := context.Background()
	for _, status := range domain.Statuses {
		_, err := c.CreateTask(ctx, domain.Task{Title: "in " + string(status), Status: status, Category: "Work"})
		require.NoError(t, err)
	}

	b := board.New(c)
	require.NoError(t, b.Load(ctx))

	for _, status := range domain.Statuses {
		column := b.Column(status)
		require.Len(t, column, 1)
		assert.Equal(t, "in "+string(status), column[0].Title)
	}
	assert.Equal(t, []string{"Work"}, b.Categories())
}

func TestProfileAndPassword(t *testing.T) {
	c, _, _, _ := newTestClient(t)
	signUp(t, c)
	ctx := context.Background()

	name := "Ada L."
	user, err := c.UpdateProfile(ctx, transport.ProfileUpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", user.Name)

	require.NoError(t, c.ChangePassword(ctx, "secret1", "secret2"))
	_, err = c.Login(ctx, "ada@example.com", "secret2")
	assert.NoError(t, err)
}

func TestLogoutClearsLocally(t *testing.T) {
	c, creds, _, logouts := newTestClient(t)
	signUp(t, c)

	require.NoError(t, c.Logout(context.Background(), false))

	assert.Empty(t, creds.Token())
	assert.Equal(t, int32(0), atomic.LoadInt32(logouts))

	_, err := c.Profile(context.Background())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestCancelledContext(t *testing.T) {
	c, _, _, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListTasks(ctx, domain.StatusDraft)

	assert.ErrorIs(t, err, context.Canceled)
}
