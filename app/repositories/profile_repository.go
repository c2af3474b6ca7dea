package repositories

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// BadgerProfileStore implements ProfileStore using BadgerDB
type BadgerProfileStore struct {
	db *badger.DB
}

// NewBadgerProfileStore creates a new BadgerProfileStore
func NewBadgerProfileStore(db *badger.DB) *BadgerProfileStore {
	return &BadgerProfileStore{db: db}
}

// DisplayName returns the cached display name for an identity
func (r *BadgerProfileStore) DisplayName(ctx context.Context, identityKey string) (string, bool, error) {
	var name string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(displayNameKey(identityKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			name = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

// SetDisplayName caches the display name for an identity
func (r *BadgerProfileStore) SetDisplayName(ctx context.Context, identityKey, name string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(displayNameKey(identityKey), []byte(name))
	})
}
