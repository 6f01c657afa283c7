package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentctl/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestCurrent_NotLoggedIn(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Current()
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
	assert.Empty(t, store.Token())
}

func TestSaveCurrentRoundTrip(t *testing.T) {
	store := openTestStore(t)

	saved := Session{
		Endpoint: "https://platform.example.com",
		Token:    "tok-1",
		User:     "ops",
	}
	require.NoError(t, store.Save(saved))

	got, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, saved.Endpoint, got.Endpoint)
	assert.Equal(t, saved.Token, got.Token)
	assert.Equal(t, saved.User, got.User)
	assert.False(t, got.CreatedAt.IsZero(), "save stamps the creation time")
	assert.Equal(t, "tok-1", store.Token())
}

func TestSave_RequiresToken(t *testing.T) {
	store := openTestStore(t)
	assert.Error(t, store.Save(Session{Endpoint: "https://platform.example.com"}))
}

func TestClear_IsIdempotent(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Clear(), "clearing an empty store is a no-op")

	require.NoError(t, store.Save(Session{Token: "tok-1"}))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	_, err := store.Current()
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestSessionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(Session{Token: "tok-1", User: "ops"}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Current()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.Token)
}

func TestClosedStoreRejectsAccess(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "double close is safe")

	_, err := store.Current()
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, store.Save(Session{Token: "tok"}), ErrStoreClosed)
	assert.ErrorIs(t, store.Clear(), ErrStoreClosed)
}
