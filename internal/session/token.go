// Package session persists the backend session token across restarts.
package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is a file-backed holder for the session id. An empty token means
// the operator must sign in again.
type Store struct {
	mu    sync.Mutex
	path  string
	token string
}

// Open loads the token file if present. A missing file is not an error.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	s.token = strings.TrimSpace(string(data))
	return s, nil
}

// Token returns the current session id, or "" when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Save stores the token in memory and on disk.
func (s *Store) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0o600)
}

// Clear forgets the token. The backend signals an expired session with a
// 403; the client calls Clear and routes the operator back to sign-in.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
