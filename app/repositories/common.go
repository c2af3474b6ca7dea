package repositories

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

const (
	// PostsKey holds the serialized post collection in the local store.
	PostsKey = "ft_posts"

	// DisplayNameKeyPrefix prefixes the cached display name of an identity.
	DisplayNameKeyPrefix = "ft_username:"
)

// OpenBadger opens the local key-value store. An empty path opens an
// in-memory instance.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return db, nil
}

func displayNameKey(identityKey string) []byte {
	return []byte(DisplayNameKeyPrefix + identityKey)
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity any) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity any) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
