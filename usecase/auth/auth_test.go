package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository/memory"
)

type fakeGoogle struct {
	identity *GoogleIdentity
	err      error
}

func (f fakeGoogle) Verify(context.Context, string) (*GoogleIdentity, error) {
	return f.identity, f.err
}

func newAuth(t *testing.T, google GoogleVerifier) (*UseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	tokens := NewTokens("test-secret-test-secret-test-secret", "taskboard-test", time.Hour)
	return New(store.Users(), store.Sessions(), tokens, google, nil), store
}

func TestRegisterThenLogin(t *testing.T) {
	uc, _ := newAuth(t, nil)
	ctx := context.Background()

	reg, err := uc.Register(ctx, "Ada", " Ada@Example.com ", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ada@example.com", reg.User.Email)
	assert.NotEqual(t, "secret1", reg.User.PasswordHash)

	login, err := uc.Login(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	claims, err := uc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)
}

func TestRegister_Validation(t *testing.T) {
	uc, _ := newAuth(t, nil)
	ctx := context.Background()

	_, err := uc.Register(ctx, "", "a@b.c", "secret1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.Register(ctx, "A", "a@b.c", "123")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.Register(ctx, "A", "a@b.c", "secret1")
	require.NoError(t, err)
	_, err = uc.Register(ctx, "B", "A@B.C", "secret2")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	uc, _ := newAuth(t, nil)
	ctx := context.Background()
	_, err := uc.Register(ctx, "A", "a@b.c", "secret1")
	require.NoError(t, err)

	_, err = uc.Login(ctx, "a@b.c", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = uc.Login(ctx, "who@b.c", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogoutRevokesSession(t *testing.T) {
	uc, store := newAuth(t, nil)
	ctx := context.Background()
	first, err := uc.Register(ctx, "A", "a@b.c", "secret1")
	require.NoError(t, err)
	second, err := uc.Login(ctx, "a@b.c", "secret1")
	require.NoError(t, err)
	require.Len(t, store.SessionIDs(first.User.ID), 2)

	claims, err := uc.Authenticate(ctx, first.Token)
	require.NoError(t, err)
	require.NoError(t, uc.Logout(ctx, claims, false))

	_, err = uc.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Authenticate(ctx, second.Token)
	require.NoError(t, err)

	claims, _ = uc.Authenticate(ctx, second.Token)
	require.NoError(t, uc.Logout(ctx, claims, true))
	assert.Empty(t, store.SessionIDs(first.User.ID))
}

func TestAuthenticate_RejectsForeignTokens(t *testing.T) {
	uc, _ := newAuth(t, nil)

	other := NewTokens("another-secret-another-secret-xx", "taskboard-test", time.Hour)
	raw, err := other.Issue("u1", "s1")
	require.NoError(t, err)

	_, err = uc.Authenticate(context.Background(), raw)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))

	_, err = uc.Authenticate(context.Background(), "not-a-jwt")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens("secret", "iss", time.Minute)
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, err := tokens.Issue("u1", "s1")
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Parse(raw)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestChangePassword(t *testing.T) {
	uc, _ := newAuth(t, nil)
	ctx := context.Background()
	reg, err := uc.Register(ctx, "A", "a@b.c", "secret1")
	require.NoError(t, err)

	err = uc.ChangePassword(ctx, reg.User.ID, "wrong", "secret2")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	require.NoError(t, uc.ChangePassword(ctx, reg.User.ID, "secret1", "secret2"))
	_, err = uc.Login(ctx, "a@b.c", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = uc.Login(ctx, "a@b.c", "secret2")
	assert.NoError(t, err)
}

func TestLoginWithGoogle(t *testing.T) {
	ctx := context.Background()

	uc, _ := newAuth(t, nil)
	_, err := uc.LoginWithGoogle(ctx, "token")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "disabled without a verifier")

	uc, _ = newAuth(t, fakeGoogle{err: errors.New("bad audience")})
	_, err = uc.LoginWithGoogle(ctx, "token")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))

	uc, _ = newAuth(t, fakeGoogle{identity: &GoogleIdentity{
		Subject: "g-1", Email: "grace@example.com", Name: "Grace", Picture: "https://img/g.png",
	}})
	first, err := uc.LoginWithGoogle(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "Grace", first.User.Name)
	assert.Equal(t, "https://img/g.png", first.User.Avatar)

	again, err := uc.LoginWithGoogle(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, again.User.ID, "same account on the second login")
}
