package clientstate

import (
	"errors"
	"sync"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/localstore"
)

const (
	KeyToken = "auth_token"
	KeyUser  = "user"
)

// Credentials caches the bearer token and signed-in user between runs.
type Credentials struct {
	store *localstore.Store

	mu    sync.RWMutex
	token string
	user  *domain.User
}

// LoadCredentials reads whatever a previous run left in the store.
func LoadCredentials(store *localstore.Store) (*Credentials, error) {
	c := &Credentials{store: store}

	token, err := store.Get(KeyToken)
	switch {
	case errors.Is(err, localstore.ErrNotFound):
		return c, nil
	case err != nil:
		return nil, err
	}
	c.token = token

	var user domain.User
	switch err := store.GetJSON(KeyUser, &user); {
	case err == nil:
		c.user = &user
	case !errors.Is(err, localstore.ErrNotFound):
		return nil, err
	}
	return c, nil
}

func (c *Credentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Credentials) User() *domain.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Credentials) SignedIn() bool {
	return c.Token() != ""
}

// Save stores a fresh token and user.
func (c *Credentials) Save(token string, user *domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Set(KeyToken, token); err != nil {
		return err
	}
	if user != nil {
		if err := c.store.SetJSON(KeyUser, user); err != nil {
			return err
		}
		u := *user
		c.user = &u
	}
	c.token = token
	return nil
}

// SaveUser refreshes the cached user after a profile change.
func (c *Credentials) SaveUser(user *domain.User) error {
	if user == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.SetJSON(KeyUser, user); err != nil {
		return err
	}
	u := *user
	c.user = &u
	return nil
}

// Clear forgets the token and user.
func (c *Credentials) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.user = nil
	return c.store.Remove(KeyToken, KeyUser)
}
