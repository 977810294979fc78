// Package token persists the access token so it survives process restarts,
// the way the web client mirrors it into browser local storage.
package token

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const fileName = "access_token"

// Store reads and writes the access token file under the config directory.
type Store struct {
	path string
}

// NewStore creates a token store rooted at configDir.
func NewStore(configDir string) *Store {
	return &Store{path: filepath.Join(configDir, fileName)}
}

// Load returns the persisted token, or "" when none is stored.
// Read failures are treated the same as an absent token.
func (s *Store) Load() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Save persists the token with owner-only permissions.
func (s *Store) Save(tok string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(tok), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Clear removes the persisted token. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
