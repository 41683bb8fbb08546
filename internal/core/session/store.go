// Package session is the encrypted persistent key-value store behind the
// signed-in experience. Values are grouped per session owner, sealed as one
// XChaCha20-Poly1305 blob on disk, and reads are tolerant: a key that was
// never set, a missing file, or a blob that fails to open all behave as
// "no session".
package session

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// Well-known keys persisted at login
const (
	KeyUserID        = "user_id"
	KeyEmail         = "email"
	KeyUserRole      = "userRole"
	KeyAccessToken   = "access_token"
	KeyRefreshToken  = "refresh_token"
	KeyStateSnapshot = "state_snapshot"
)

var ErrBadKeySize = errors.New("session key must be 32 bytes")

// Store is a file-backed encrypted key-value store, partitioned by owner id
type Store struct {
	mu     sync.RWMutex
	path   string
	key    []byte
	values map[string]map[string]string
}

// New opens (or creates) a store at path sealed with the given 32-byte key.
// An unreadable or corrupt file starts the store empty rather than failing.
func New(path string, key []byte) (*Store, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrBadKeySize
	}

	s := &Store{
		path:   path,
		key:    key,
		values: make(map[string]map[string]string),
	}

	if err := s.load(); err != nil {
		log.Printf("⚠️ Session store unreadable, starting empty: %v", err)
		s.values = make(map[string]map[string]string)
	}
	return s, nil
}

// Get returns the value for (owner, key). The second return is false when
// the key was never set or the owner has no session.
func (s *Store) Get(owner, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kv, ok := s.values[owner]
	if !ok {
		return "", false
	}
	v, ok := kv[key]
	return v, ok
}

// Set writes one value for an owner and persists the store
func (s *Store) Set(owner, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values[owner] == nil {
		s.values[owner] = make(map[string]string)
	}
	s.values[owner][key] = value
	return s.save()
}

// SetAll writes several values for an owner in one persisted step
func (s *Store) SetAll(owner string, kv map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values[owner] == nil {
		s.values[owner] = make(map[string]string)
	}
	for k, v := range kv {
		s.values[owner][k] = v
	}
	return s.save()
}

// Clear removes every value an owner has. Clearing an owner that was never
// set is a no-op.
func (s *Store) Clear(owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[owner]; !ok {
		return nil
	}
	delete(s.values, owner)
	return s.save()
}

// load opens and decrypts the backing file into memory
func (s *Store) load() error {
	blob, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return err
	}
	if len(blob) < aead.NonceSize() {
		return errors.New("blob too short")
	}

	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}

	return json.Unmarshal(plaintext, &s.values)
}

// save encrypts the in-memory map and atomically replaces the backing file
func (s *Store) save() error {
	plaintext, err := json.Marshal(s.values)
	if err != nil {
		return err
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	blob := aead.Seal(nonce, nonce, plaintext, nil)

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// DefaultPath returns a store path under dir, creating dir if needed
func DefaultPath(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions.bin"), nil
}
