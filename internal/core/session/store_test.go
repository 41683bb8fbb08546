package session

import (
	"os"
	"path/filepath"
	"testing"

	"insureadmin/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	return key
}

func newTempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.bin")
	store, err := New(path, testKey())
	require.NoError(t, err)
	return store, path
}

func TestNewRejectsShortKey(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "sessions.bin"), []byte("too short"))
	assert.ErrorIs(t, err, ErrBadKeySize)
}

func TestSetGetRoundTrip(t *testing.T) {
	store, _ := newTempStore(t)

	require.NoError(t, store.Set("user-1", KeyEmail, "casey@example.com"))

	got, ok := store.Get("user-1", KeyEmail)
	assert.True(t, ok)
	assert.Equal(t, "casey@example.com", got)
}

func TestGetNeverSetKey(t *testing.T) {
	store, _ := newTempStore(t)

	_, ok := store.Get("user-1", KeyAccessToken)
	assert.False(t, ok)

	require.NoError(t, store.Set("user-1", KeyEmail, "casey@example.com"))
	_, ok = store.Get("user-1", KeyAccessToken)
	assert.False(t, ok)
}

func TestValuesArePartitionedByOwner(t *testing.T) {
	store, _ := newTempStore(t)

	require.NoError(t, store.Set("user-1", KeyUserRole, "agent"))

	_, ok := store.Get("user-2", KeyUserRole)
	assert.False(t, ok)
}

func TestStoreSurvivesReopen(t *testing.T) {
	store, path := newTempStore(t)
	require.NoError(t, store.SetAll("user-1", map[string]string{
		KeyUserID: "user-1",
		KeyEmail:  "casey@example.com",
	}))

	reopened, err := New(path, testKey())
	require.NoError(t, err)

	got, ok := reopened.Get("user-1", KeyEmail)
	assert.True(t, ok)
	assert.Equal(t, "casey@example.com", got)
}

func TestFileIsNotPlaintext(t *testing.T) {
	store, path := newTempStore(t)
	require.NoError(t, store.Set("user-1", KeyEmail, "casey@example.com"))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "casey@example.com")
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.bin")
	require.NoError(t, os.WriteFile(path, []byte("this is not a sealed blob at all"), 0600))

	store, err := New(path, testKey())
	require.NoError(t, err)

	_, ok := store.Get("user-1", KeyEmail)
	assert.False(t, ok)

	// The store must be writable again after starting empty
	require.NoError(t, store.Set("user-1", KeyEmail, "casey@example.com"))
}

func TestWrongKeyStartsEmpty(t *testing.T) {
	store, path := newTempStore(t)
	require.NoError(t, store.Set("user-1", KeyEmail, "casey@example.com"))

	otherKey := make([]byte, 32)
	reopened, err := New(path, otherKey)
	require.NoError(t, err)

	_, ok := reopened.Get("user-1", KeyEmail)
	assert.False(t, ok)
}

func TestClearUnknownOwnerIsNoOp(t *testing.T) {
	store, _ := newTempStore(t)
	assert.NoError(t, store.Clear("never-seen"))
}

type recordingResetter struct {
	reset []string
}

func (r *recordingResetter) Reset(userID string) { r.reset = append(r.reset, userID) }

func TestBridgeSaveLoginAndCurrentRole(t *testing.T) {
	store, _ := newTempStore(t)
	bridge := NewBridge(store, &recordingResetter{})

	require.NoError(t, bridge.SaveLogin(Login{
		UserID:       "user-1",
		Email:        "casey@example.com",
		Role:         "agent",
		AccessToken:  "access",
		RefreshToken: "refresh",
	}))

	role, ok := bridge.CurrentRole("user-1")
	assert.True(t, ok)
	assert.Equal(t, domain.RoleAgent, role)

	token, ok := store.Get("user-1", KeyRefreshToken)
	assert.True(t, ok)
	assert.Equal(t, "refresh", token)
}

func TestBridgeCurrentRoleRejectsUnknownRole(t *testing.T) {
	store, _ := newTempStore(t)
	bridge := NewBridge(store, &recordingResetter{})

	require.NoError(t, store.Set("user-1", KeyUserRole, "superuser"))

	_, ok := bridge.CurrentRole("user-1")
	assert.False(t, ok)
}

func TestBridgeLogoutLeavesNoKeysBehind(t *testing.T) {
	store, _ := newTempStore(t)
	resetter := &recordingResetter{}
	bridge := NewBridge(store, resetter)

	require.NoError(t, bridge.SaveLogin(Login{
		UserID:       "user-1",
		Email:        "casey@example.com",
		Role:         "policy_holder",
		AccessToken:  "access",
		RefreshToken: "refresh",
	}))

	require.NoError(t, bridge.Logout("user-1"))

	assert.Equal(t, []string{"user-1"}, resetter.reset)
	for _, key := range []string{KeyUserID, KeyEmail, KeyUserRole, KeyAccessToken, KeyRefreshToken, KeyStateSnapshot} {
		_, ok := store.Get("user-1", key)
		assert.False(t, ok, "key %q should read as never set after logout", key)
	}
}
