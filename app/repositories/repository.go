package repositories

import (
	"context"
	"errors"
	"sync"

	"firsttime/app/models"

	"github.com/dgraph-io/badger/v4"
)

// LocalAdapter keeps the whole collection under a single Badger key and
// rewrites it after every mutation. Last write wins by change version.
type LocalAdapter struct {
	db      *badger.DB
	mutex   sync.Mutex
	written uint64
}

// NewLocalAdapter creates a LocalAdapter on an open Badger DB. The caller
// owns the DB.
func NewLocalAdapter(db *badger.DB) *LocalAdapter {
	return &LocalAdapter{db: db}
}

func (r *LocalAdapter) Name() string { return "local" }

// Load reads the stored collection, or ErrNoData if none was ever written.
func (r *LocalAdapter) Load(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(PostsKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoData
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &posts)
		})
	})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	for _, p := range posts {
		if p.Comments == nil {
			p.Comments = []*models.Comment{}
		}
	}
	return posts, nil
}

// Apply writes the change's snapshot. Snapshots older than the last one
// written are dropped.
func (r *LocalAdapter) Apply(ctx context.Context, change Change) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if change.Version != 0 && change.Version <= r.written {
		return nil
	}

	snapshot := change.Snapshot
	if snapshot == nil {
		snapshot = []*models.Post{}
	}
	data, err := marshalEntity(snapshot)
	if err != nil {
		return err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(PostsKey), data)
	})
	if err != nil {
		return err
	}
	r.written = change.Version
	return nil
}

// Clear removes the stored collection so the next load seeds again.
func (r *LocalAdapter) Clear() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.written = 0
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(PostsKey))
	})
}

func (r *LocalAdapter) Close() error { return nil }
