package clientstate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/localstore"
)

func reopen(t *testing.T, path string, prev *localstore.Store) *localstore.Store {
	t.Helper()
	if prev != nil {
		require.NoError(t, prev.Close())
	}
	store, err := localstore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPreferences_DefaultFalse(t *testing.T) {
	store := reopen(t, filepath.Join(t.TempDir(), "state.db"), nil)

	prefs, err := LoadPreferences(store)
	require.NoError(t, err)

	assert.Equal(t, domain.Preferences{}, prefs.Get())
}

func TestPreferences_SurviveRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store := reopen(t, path, nil)
	prefs, err := LoadPreferences(store)
	require.NoError(t, err)

	require.NoError(t, prefs.SetShowSidePanel(true))
	require.NoError(t, prefs.SetDarkMode(true))
	require.NoError(t, prefs.SetDarkMode(false))

	store = reopen(t, path, store)
	prefs, err = LoadPreferences(store)
	require.NoError(t, err)
	assert.Equal(t, domain.Preferences{ShowSidePanel: true, DarkMode: false}, prefs.Get())

	raw, err := store.Get(KeyShowSidePanel)
	require.NoError(t, err)
	assert.Equal(t, "true", raw)
}

func TestPreferences_GarbageReadsFalse(t *testing.T) {
	store := reopen(t, filepath.Join(t.TempDir(), "state.db"), nil)
	require.NoError(t, store.Set(KeyDarkMode, "sometimes"))

	prefs, err := LoadPreferences(store)
	require.NoError(t, err)
	assert.False(t, prefs.Get().DarkMode)
}

func TestCredentials_SaveReloadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store := reopen(t, path, nil)
	creds, err := LoadCredentials(store)
	require.NoError(t, err)
	assert.False(t, creds.SignedIn())

	require.NoError(t, creds.Save("tok", &domain.User{ID: "u1", Email: "a@b.c"}))

	store = reopen(t, path, store)
	creds, err = LoadCredentials(store)
	require.NoError(t, err)
	assert.True(t, creds.SignedIn())
	assert.Equal(t, "tok", creds.Token())
	require.NotNil(t, creds.User())
	assert.Equal(t, "u1", creds.User().ID)

	creds.User().Name = "mutated"
	assert.Empty(t, creds.User().Name, "User returns a copy")

	require.NoError(t, creds.SaveUser(&domain.User{ID: "u1", Email: "a@b.c", Name: "Ada"}))
	assert.Equal(t, "Ada", creds.User().Name)

	require.NoError(t, creds.Clear())
	store = reopen(t, path, store)
	creds, err = LoadCredentials(store)
	require.NoError(t, err)
	assert.False(t, creds.SignedIn())
	assert.Nil(t, creds.User())
}
