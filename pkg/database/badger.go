package database

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

// NewBadgerDB opens an embedded Badger store at path. An empty path keeps
// everything in memory, which is what tests and local demos use.
func NewBadgerDB(path string) (*badger.DB, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create badger directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return db, nil
}
