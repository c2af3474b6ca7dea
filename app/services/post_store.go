package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"firsttime/app/models"
	"firsttime/app/observability"
	"firsttime/app/repositories"
	"firsttime/app/seed"

	"github.com/google/uuid"
)

// State is the store lifecycle. Startup always ends in StateReady.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
)

// PostStore holds the canonical post collection and applies mutations to
// it. Each mutation is applied in memory under the lock and then handed to
// the adapter; a failed durable write is reported but never rolled back.
// Changes reach the adapter in version order.
type PostStore struct {
	mutex   sync.RWMutex
	posts   []*models.Post
	state   State
	seeded  bool
	version uint64

	// every version stamped by changeLocked is persisted exactly once
	persistMu sync.Mutex
	persisted uint64
	turn      *sync.Cond

	adapter    repositories.Adapter
	durability *Durability
	clock      func() time.Time
	newID      func() string
	seed       func() []*models.Post
	logger     *slog.Logger
}

// Option configures a PostStore.
type Option func(*PostStore)

func WithClock(clock func() time.Time) Option {
	return func(s *PostStore) { s.clock = clock }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *PostStore) { s.newID = newID }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *PostStore) { s.logger = logger }
}

// WithSeed replaces the demo dataset used when nothing can be loaded.
func WithSeed(fn func() []*models.Post) Option {
	return func(s *PostStore) { s.seed = fn }
}

// NewPostStore creates an uninitialized store backed by adapter.
func NewPostStore(adapter repositories.Adapter, opts ...Option) *PostStore {
	s := &PostStore{
		posts:   []*models.Post{},
		state:   StateUninitialized,
		adapter: adapter,
		clock:   time.Now,
		newID:   uuid.NewString,
		seed:    seed.Demo,
		logger:  observability.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.durability = newDurability(adapter.Name(), s.clock)
	s.turn = sync.NewCond(&s.persistMu)
	return s
}

// Load reads the collection from the adapter. When the adapter has nothing
// stored, the demo dataset is installed and written back. When the adapter
// cannot be read, the demo dataset is installed in memory only. Load runs
// once; later calls are no-ops.
func (s *PostStore) Load(ctx context.Context) {
	s.mutex.Lock()
	if s.state != StateUninitialized {
		s.mutex.Unlock()
		return
	}
	s.state = StateLoading
	s.mutex.Unlock()

	posts, err := s.adapter.Load(ctx)

	s.mutex.Lock()
	var change *repositories.Change
	switch {
	case err == nil:
		if cleared := keepFirstFeatured(posts); cleared > 0 {
			s.logger.Warn("loaded collection had several featured posts, keeping the first",
				"adapter", s.adapter.Name(), "cleared", cleared)
		}
		s.posts = posts
		s.logger.Info("post collection loaded", "adapter", s.adapter.Name(), "posts", len(posts))
	case errors.Is(err, repositories.ErrNoData):
		s.posts = s.seed()
		s.seeded = true
		c := s.changeLocked(repositories.CollectionSeeded)
		change = &c
		s.logger.Info("no stored collection, seeding demo data", "adapter", s.adapter.Name())
	default:
		s.posts = s.seed()
		s.seeded = true
		s.logger.Warn("failed to load post collection, using demo data",
			"adapter", s.adapter.Name(), "error", err)
	}
	s.state = StateReady
	observability.StorePosts.Set(float64(len(s.posts)))
	s.mutex.Unlock()

	if change != nil {
		_ = s.persist(ctx, *change)
	}
}

func (s *PostStore) State() State {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.state
}

// Seeded reports whether the collection came from the demo dataset.
func (s *PostStore) Seeded() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.seeded
}

func (s *PostStore) AdapterName() string {
	return s.adapter.Name()
}

func (s *PostStore) Durability() DurabilityReport {
	return s.durability.Report()
}

// Snapshot returns a deep copy of the collection in canonical order.
func (s *PostStore) Snapshot() []*models.Post {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return models.ClonePosts(s.posts)
}

// Get returns a copy of the post with the given id.
func (s *PostStore) Get(id string) (*models.Post, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil, models.NewNotFoundError("post", id)
	}
	return s.posts[i].Clone(), nil
}

// AddPost validates the draft and prepends a new, unfeatured post.
func (s *PostStore) AddPost(ctx context.Context, draft models.PostDraft) (*models.Post, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	post := models.NewPost(s.newID(), draft, s.clock())
	s.posts = append([]*models.Post{post}, s.posts...)
	change := s.changeLocked(repositories.PostCreated)
	change.PostID = post.ID
	change.Post = post.Clone()
	created := post.Clone()
	s.mutex.Unlock()

	return created, s.persist(ctx, change)
}

// AddComment appends a comment to the post with the given id.
func (s *PostStore) AddComment(ctx context.Context, postID string, draft models.CommentDraft) (*models.Comment, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	i := s.indexLocked(postID)
	if i < 0 {
		s.mutex.Unlock()
		return nil, models.NewNotFoundError("post", postID)
	}
	comment := models.NewComment(s.newID(), postID, draft, s.clock())
	post := s.posts[i].Clone()
	if err := post.AddComment(comment); err != nil {
		s.mutex.Unlock()
		return nil, err
	}
	s.posts[i] = post

	change := s.changeLocked(repositories.CommentAdded)
	change.PostID = postID
	change.Post = post.Clone()
	c := *comment
	change.Comment = &c
	added := *comment
	s.mutex.Unlock()

	return &added, s.persist(ctx, change)
}

// DeletePost removes the post and its comments. Irreversible.
func (s *PostStore) DeletePost(ctx context.Context, postID string) error {
	s.mutex.Lock()
	i := s.indexLocked(postID)
	if i < 0 {
		s.mutex.Unlock()
		return models.NewNotFoundError("post", postID)
	}
	posts := make([]*models.Post, 0, len(s.posts)-1)
	posts = append(posts, s.posts[:i]...)
	posts = append(posts, s.posts[i+1:]...)
	s.posts = posts

	change := s.changeLocked(repositories.PostDeleted)
	change.PostID = postID
	s.mutex.Unlock()

	return s.persist(ctx, change)
}

// ToggleFeatured features the post, clearing every other flag, or unfeatures
// it if it is already featured. At most one post is featured afterwards.
func (s *PostStore) ToggleFeatured(ctx context.Context, postID string) (*models.Post, error) {
	s.mutex.Lock()
	i := s.indexLocked(postID)
	if i < 0 {
		s.mutex.Unlock()
		return nil, models.NewNotFoundError("post", postID)
	}

	featured := !s.posts[i].IsFeatured
	posts := make([]*models.Post, len(s.posts))
	for j, p := range s.posts {
		want := featured && j == i
		if p.IsFeatured == want {
			posts[j] = p
			continue
		}
		cp := p.Clone()
		cp.IsFeatured = want
		posts[j] = cp
	}
	s.posts = posts

	change := s.changeLocked(repositories.FeaturedToggled)
	change.PostID = postID
	change.Post = posts[i].Clone()
	toggled := posts[i].Clone()
	s.mutex.Unlock()

	return toggled, s.persist(ctx, change)
}

// RenameAuthor rewrites the author label on every post and comment whose
// author key matches identityKey. Entries without a key are never touched.
// It returns the number of rewritten entries.
func (s *PostStore) RenameAuthor(ctx context.Context, identityKey, name string) (int, error) {
	identityKey = strings.TrimSpace(identityKey)
	name = strings.TrimSpace(name)
	if identityKey == "" {
		return 0, models.NewValidationError("identity key is required")
	}
	if name == "" {
		return 0, models.NewValidationError("display name is required")
	}

	s.mutex.Lock()
	posts, n := CascadeAuthorName(s.posts, identityKey, name)
	if n == 0 {
		s.mutex.Unlock()
		return 0, nil
	}
	s.posts = posts
	change := s.changeLocked(repositories.AuthorRenamed)
	change.AuthorKey = identityKey
	change.AuthorName = name
	s.mutex.Unlock()

	return n, s.persist(ctx, change)
}

func (s *PostStore) indexLocked(id string) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// changeLocked stamps a new version and snapshots the collection. Callers
// hold the write lock.
func (s *PostStore) changeLocked(kind repositories.ChangeKind) repositories.Change {
	s.version++
	observability.StoreMutations.WithLabelValues(kind.String()).Inc()
	observability.StorePosts.Set(float64(len(s.posts)))
	return repositories.Change{
		Kind:     kind,
		Version:  s.version,
		Snapshot: models.ClonePosts(s.posts),
	}
}

// persist hands the change to the adapter. The write is not tied to the
// caller's cancellation and is never retried.
func (s *PostStore) persist(ctx context.Context, change repositories.Change) error {
	ctx = context.WithoutCancel(ctx)

	s.durability.begin()
	err := s.applyInOrder(ctx, change)
	s.durability.end(err)

	if err != nil {
		s.logger.ErrorContext(ctx, "persistence write failed",
			"adapter", s.adapter.Name(),
			"change", change.Kind.String(),
			"post_id", change.PostID,
			"version", change.Version,
			"request_id", observability.ExtractRequestID(ctx),
			"error", err,
		)
		return models.NewPersistenceError(change.Kind.String(), err)
	}
	return nil
}

// applyInOrder waits until every earlier version has been handed to the
// adapter, so remote rows end up in the same state as memory.
func (s *PostStore) applyInOrder(ctx context.Context, change repositories.Change) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	for s.persisted+1 < change.Version {
		s.turn.Wait()
	}
	defer func() {
		s.persisted = change.Version
		s.turn.Broadcast()
	}()

	start := time.Now()
	err := s.adapter.Apply(ctx, change)
	observability.PersistenceLatency.WithLabelValues(s.adapter.Name()).Observe(time.Since(start).Seconds())
	return err
}

// keepFirstFeatured clears the flag on every featured post after the first
// and returns how many were cleared. Another client writing the same table
// can leave more than one.
func keepFirstFeatured(posts []*models.Post) int {
	seen, cleared := false, 0
	for _, p := range posts {
		if !p.IsFeatured {
			continue
		}
		if seen {
			p.IsFeatured = false
			cleared++
		}
		seen = true
	}
	return cleared
}
