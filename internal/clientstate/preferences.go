package clientstate

import (
	"errors"
	"strconv"
	"sync"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/localstore"
)

const (
	KeyShowSidePanel = "showRightSidebar"
	KeyDarkMode      = "darkMode"
)

// Preferences is the process-wide copy of the UI settings. It is read once
// at startup and written through on every change.
type Preferences struct {
	store *localstore.Store

	mu      sync.RWMutex
	current domain.Preferences
}

func LoadPreferences(store *localstore.Store) (*Preferences, error) {
	p := &Preferences{store: store}

	side, err := readBool(store, KeyShowSidePanel)
	if err != nil {
		return nil, err
	}
	dark, err := readBool(store, KeyDarkMode)
	if err != nil {
		return nil, err
	}
	p.current = domain.Preferences{ShowSidePanel: side, DarkMode: dark}
	return p, nil
}

func (p *Preferences) Get() domain.Preferences {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *Preferences) SetShowSidePanel(v bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.Set(KeyShowSidePanel, strconv.FormatBool(v)); err != nil {
		return err
	}
	p.current.ShowSidePanel = v
	return nil
}

func (p *Preferences) SetDarkMode(v bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.Set(KeyDarkMode, strconv.FormatBool(v)); err != nil {
		return err
	}
	p.current.DarkMode = v
	return nil
}

// readBool treats a missing or unparsable value as false.
func readBool(store *localstore.Store, key string) (bool, error) {
	raw, err := store.Get(key)
	if errors.Is(err, localstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return v, nil
}
