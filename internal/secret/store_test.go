package secret

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrefersSuppliedValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signing.key")
	store := NewStore("configured-secret-value-of-ample-length", path)

	key, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("configured-secret-value-of-ample-length"), key)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "supplied value must not create a key file")
}

func TestLoadGeneratesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "signing.key")

	first := NewStore("", path)
	key, err := first.Load()
	require.NoError(t, err)
	require.Len(t, key, keyBytes)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A fresh store (restarted process) must reuse the persisted key.
	second := NewStore("", path)
	again, err := second.Load()
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestLoadFailsOnCorruptKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signing.key")
	require.NoError(t, os.WriteFile(path, []byte("not hex at all!"), 0o600))

	_, err := NewStore("", path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")
}

func TestLoadFailsOnShortKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signing.key")
	require.NoError(t, os.WriteFile(path, []byte("deadbeef"), 0o600))

	_, err := NewStore("", path).Load()
	require.Error(t, err)
}

func TestLoadIsIdempotentUnderConcurrency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signing.key")
	store := NewStore("", path)

	const callers = 16
	keys := make([][]byte, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keys[i], errs[i] = store.Load()
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
	}
	for i := 1; i < callers; i++ {
		assert.Equal(t, keys[0], keys[i])
	}
}
