package client

import (
	"context"
	"net/http"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
)

func (c *Client) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", transport.RegisterRequest{Name: name, Email: email, Password: password})
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", transport.LoginRequest{Email: email, Password: password})
}

// LoginWithGoogle exchanges a Google ID token for an API token.
func (c *Client) LoginWithGoogle(ctx context.Context, idToken string) (*domain.AuthResult, error) {
	return c.authenticate(ctx, "/auth/google", transport.GoogleLoginRequest{Token: idToken})
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*domain.AuthResult, error) {
	var result domain.AuthResult
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, domain.NewError(domain.ErrCodeInternal, "auth response without token")
	}
	if err := c.remember(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout revokes the session on the server and always clears it locally.
func (c *Client) Logout(ctx context.Context, all bool) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", transport.LogoutRequest{All: all}, nil)
	if c.session != nil {
		if clearErr := c.session.Clear(); clearErr != nil && err == nil {
			err = clearErr
		}
	}
	if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		return nil
	}
	return err
}

func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update transport.ProfileUpdateRequest) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPut, "/users/me", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPut, "/users/password", transport.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, nil)
}
