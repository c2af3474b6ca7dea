package mock

import (
	"context"
	"sync"

	"firsttime/app/models"
	"firsttime/app/repositories"
)

// Adapter is an in-memory repositories.Adapter that records every change
// and can be told to fail.
type Adapter struct {
	mutex   sync.Mutex
	posts   []*models.Post
	loadErr error
	failErr error
	changes []repositories.Change
	closed  bool
}

// NewAdapter returns an adapter whose Load reports ErrNoData.
func NewAdapter() *Adapter {
	return &Adapter{loadErr: repositories.ErrNoData}
}

// NewAdapterWith returns an adapter preloaded with posts.
func NewAdapterWith(posts []*models.Post) *Adapter {
	return &Adapter{posts: models.ClonePosts(posts)}
}

func (m *Adapter) Name() string { return "mock" }

func (m *Adapter) Load(ctx context.Context) ([]*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return models.ClonePosts(m.posts), nil
}

func (m *Adapter) Apply(ctx context.Context, change repositories.Change) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.changes = append(m.changes, change)
	if m.failErr != nil {
		return m.failErr
	}
	m.posts = models.ClonePosts(change.Snapshot)
	return nil
}

func (m *Adapter) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.closed = true
	return nil
}

// SetLoadError makes Load fail with err. Pass nil to load stored posts.
func (m *Adapter) SetLoadError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.loadErr = err
}

// FailWrites makes every Apply fail with err. Pass nil to recover.
func (m *Adapter) FailWrites(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.failErr = err
}

// Changes returns the changes seen so far.
func (m *Adapter) Changes() []repositories.Change {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]repositories.Change(nil), m.changes...)
}

// Stored returns the last successfully applied snapshot.
func (m *Adapter) Stored() []*models.Post {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return models.ClonePosts(m.posts)
}

func (m *Adapter) Closed() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.closed
}

// ProfileStore is an in-memory repositories.ProfileStore.
type ProfileStore struct {
	mutex sync.RWMutex
	names map[string]string
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{names: make(map[string]string)}
}

func (m *ProfileStore) DisplayName(ctx context.Context, identityKey string) (string, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	name, ok := m.names[identityKey]
	return name, ok, nil
}

func (m *ProfileStore) SetDisplayName(ctx context.Context, identityKey, name string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.names[identityKey] = name
	return nil
}
