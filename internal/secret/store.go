package secret

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const keyBytes = 32

// Store provisions the token signing key. Resolution order: an
// externally supplied value wins, then a previously persisted key
// file, and only when neither exists is a fresh key generated and
// persisted. The key is resolved at most once per process.
type Store struct {
	value string
	path  string

	once sync.Once
	key  []byte
	err  error
}

// NewStore builds a store. value is the optional pre-supplied secret
// (e.g. from the environment); path is the key file location used when
// no value is supplied.
func NewStore(value, path string) *Store {
	return &Store{value: value, path: path}
}

// Load returns the signing key, provisioning it on first call.
// Concurrent callers all observe the same key. A key file that exists
// but cannot be read or decoded is a fatal condition: regenerating
// would silently invalidate every outstanding token.
func (s *Store) Load() ([]byte, error) {
	s.once.Do(func() {
		s.key, s.err = s.resolve()
	})
	return s.key, s.err
}

func (s *Store) resolve() ([]byte, error) {
	if s.value != "" {
		return []byte(s.value), nil
	}

	raw, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		key, decErr := hex.DecodeString(strings.TrimSpace(string(raw)))
		if decErr != nil {
			return nil, fmt.Errorf("key file %s is corrupt: %w", s.path, decErr)
		}
		if len(key) < keyBytes {
			return nil, fmt.Errorf("key file %s holds a short key (%d bytes)", s.path, len(key))
		}
		return key, nil
	case os.IsNotExist(err):
		return s.generate()
	default:
		return nil, fmt.Errorf("read key file %s: %w", s.path, err)
	}
}

func (s *Store) generate() ([]byte, error) {
	key := make([]byte, keyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create key directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(hex.EncodeToString(key)+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("persist signing key: %w", err)
	}
	return key, nil
}
