// Package session persists the signed token of the single active CLI session.
//
// One machine holds at most one session: saving overwrites the previous token and
// deleting the file logs the operator out.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

const filePermissions = 0o600

// FileStore keeps one opaque token in a file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the token file location.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes the token, replacing any previous one. The write goes through a
// temporary file so a crash never leaves a truncated token behind.
func (s *FileStore) Save(token string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(filePermissions); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to protect session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to store session file: %w", err)
	}
	return nil
}

// Load returns the stored token or a NoSession error when there is none.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", apperrors.New(apperrors.ErrCodeNoSession, "no session found, log in with `login`")
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", apperrors.New(apperrors.ErrCodeNoSession, "no session found, log in with `login`")
	}
	return token, nil
}

// Delete removes the stored token. It reports whether a session existed;
// a missing file is not an error.
func (s *FileStore) Delete() (bool, error) {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove session file: %w", err)
	}
	return true, nil
}
