// Package file implements the client-local persistence: the session token
// and the cart snapshot, each a small JSON-or-text file under the state
// directory. Writes go through pkg/atomicfile so concurrent readers never
// observe partial state.
package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"

	"github.com/veskr/storefront/internal/domain/session"
	"github.com/veskr/storefront/pkg/atomicfile"
)

var _ session.TokenStore = (*TokenStore)(nil)

// TokenStore persists the session token as a single file.
type TokenStore struct {
	path string
}

// NewTokenStore returns a TokenStore writing under dir.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{path: filepath.Join(dir, "token")}
}

// Save writes the token, readable by the owner only.
func (s *TokenStore) Save(_ context.Context, token string) error {
	if err := atomicfile.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return errors.Wrap(err, "write token")
	}
	return nil
}

// Load returns the persisted token, or empty when none exists.
func (s *TokenStore) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "read token")
	}
	return strings.TrimSpace(string(data)), nil
}

// Clear removes the token file. Missing file is not an error.
func (s *TokenStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove token")
	}
	return nil
}
