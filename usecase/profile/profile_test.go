package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/memory"
)

type recordingBuffer struct {
	users []domain.User
}

func (b *recordingBuffer) BufferProfile(_ context.Context, _ string, user *domain.User) error {
	b.users = append(b.users, *user)
	return nil
}

func (b *recordingBuffer) BufferTask(context.Context, string, *domain.Task) error { return nil }

type offlineUsers struct {
	repository.UserRepository
}

func (offlineUsers) Upsert(context.Context, *domain.User) error {
	return errors.New("connection refused")
}

func strPtr(s string) *string { return &s }

func seed(t *testing.T, store *memory.Store, users ...domain.User) {
	t.Helper()
	for i := range users {
		require.NoError(t, store.Users().Upsert(context.Background(), &users[i]))
	}
}

func TestUpdateProfile(t *testing.T) {
	store := memory.New()
	seed(t, store,
		domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com"},
		domain.User{ID: "u2", Name: "Bob", Email: "bob@example.com"},
	)
	uc := New(store.Users(), nil, nil)
	ctx := context.Background()

	user, err := uc.UpdateProfile(ctx, "u1", Patch{Name: strPtr("  Ada L. "), Email: strPtr("ADA@lovelace.dev")})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", user.Name)
	assert.Equal(t, "ada@lovelace.dev", user.Email)

	_, err = uc.UpdateProfile(ctx, "u1", Patch{Email: strPtr("bob@example.com")})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = uc.UpdateProfile(ctx, "u1", Patch{Name: strPtr(" ")})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.UpdateProfile(ctx, "u1", Patch{Email: strPtr("nope")})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.UpdateProfile(ctx, "ghost", Patch{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	got, err := uc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
}

func TestUpdateProfile_BuffersWhenOffline(t *testing.T) {
	store := memory.New()
	seed(t, store, domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com"})
	buf := &recordingBuffer{}
	uc := New(offlineUsers{store.Users()}, buf, nil)

	user, err := uc.UpdateProfile(context.Background(), "u1", Patch{Avatar: strPtr("https://img/a.png")})

	require.NoError(t, err)
	assert.Equal(t, "https://img/a.png", user.Avatar)
	require.Len(t, buf.users, 1)
	assert.Equal(t, "u1", buf.users[0].ID)
}
