package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/veskr/storefront/internal/domain/cart"
	"github.com/veskr/storefront/pkg/atomicfile"
)

var _ cart.Snapshotter = (*CartSnapshotter)(nil)

// CartSnapshotter persists the cart as an ordered JSON array of items.
type CartSnapshotter struct {
	path string
}

// NewCartSnapshotter returns a CartSnapshotter writing under dir.
func NewCartSnapshotter(dir string) *CartSnapshotter {
	return &CartSnapshotter{path: filepath.Join(dir, "cart.json")}
}

// Save replaces the whole snapshot atomically.
func (s *CartSnapshotter) Save(_ context.Context, items []cart.Item) error {
	if items == nil {
		items = []cart.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := atomicfile.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrap(err, "write cart")
	}
	return nil
}

// Load returns the persisted items, or nil when no snapshot exists.
func (s *CartSnapshotter) Load(_ context.Context) ([]cart.Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read cart")
	}

	var items []cart.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return items, nil
}
