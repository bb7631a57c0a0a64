package locker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmiclocker/internal/logging"
)

func newTestLocker(t *testing.T) *Locker {
	t.Helper()
	l, err := New(t.TempDir(), logging.NewNop())
	require.NoError(t, err)
	return l
}

func TestLockAndRetrieve_RoundTrip(t *testing.T) {
	l := newTestLocker(t)

	name, err := l.Lock("alice", "hunter2", "report.txt", strings.NewReader("top secret"))
	require.NoError(t, err)
	assert.Equal(t, "alice_report.txt.enc", name)

	// The blob on disk must not contain the plaintext.
	blob, err := os.ReadFile(filepath.Join(l.vaultDir, name))
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "top secret")

	plain, err := l.Retrieve(name, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, []byte("top secret"), plain)
}

func TestRetrieve_WrongPassword(t *testing.T) {
	l := newTestLocker(t)

	name, err := l.Lock("alice", "hunter2", "report.txt", strings.NewReader("data"))
	require.NoError(t, err)

	_, err = l.Retrieve(name, "alice", "wrong")
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestRetrieve_OtherUsersFileLooksMissing(t *testing.T) {
	l := newTestLocker(t)

	name, err := l.Lock("alice", "hunter2", "report.txt", strings.NewReader("data"))
	require.NoError(t, err)

	_, err = l.Retrieve(name, "bob", "hunter2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_ScopedToOwnerAndExcludesRecycled(t *testing.T) {
	l := newTestLocker(t)

	a1, err := l.Lock("alice", "pw", "a.txt", strings.NewReader("1"))
	require.NoError(t, err)
	a2, err := l.Lock("alice", "pw", "b.txt", strings.NewReader("2"))
	require.NoError(t, err)
	_, err = l.Lock("bob", "pw", "c.txt", strings.NewReader("3"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{a1, a2}, l.List("alice"))

	require.NoError(t, l.Delete(a1, "alice"))
	assert.ElementsMatch(t, []string{a2}, l.List("alice"))
	assert.ElementsMatch(t, []string{a1}, l.ListRecycleBin("alice"))
	assert.Empty(t, l.ListRecycleBin("bob"))
}

func TestDeleteAndRestore_MoveBetweenDirs(t *testing.T) {
	l := newTestLocker(t)

	name, err := l.Lock("alice", "pw", "a.txt", strings.NewReader("1"))
	require.NoError(t, err)

	require.NoError(t, l.Delete(name, "alice"))
	_, err = os.Stat(filepath.Join(l.recycleDir, name))
	require.NoError(t, err)

	// Already moved; a second delete finds nothing in the vault.
	assert.ErrorIs(t, l.Delete(name, "alice"), ErrNotFound)

	require.NoError(t, l.Restore(name, "alice"))
	_, err = os.Stat(filepath.Join(l.vaultDir, name))
	require.NoError(t, err)

	// Restored files decrypt as before.
	plain, err := l.Retrieve(name, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), plain)
}

func TestDelete_RequiresOwnership(t *testing.T) {
	l := newTestLocker(t)

	name, err := l.Lock("alice", "pw", "a.txt", strings.NewReader("1"))
	require.NoError(t, err)

	assert.ErrorIs(t, l.Delete(name, "bob"), ErrNotFound)
}

func TestLoadMetadata_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir, logging.NewNop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(l.metaPath, []byte("{not json"), 0o600))
	assert.Empty(t, l.List("alice"))
}
