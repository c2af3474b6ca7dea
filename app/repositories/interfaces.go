package repositories

import (
	"context"
	"errors"

	"firsttime/app/models"
)

// ErrNoData is returned by Adapter.Load when the backing store has never
// been written. The store seeds itself in that case.
var ErrNoData = errors.New("no stored collection")

// ChangeKind identifies the mutation carried by a Change.
type ChangeKind int

const (
	PostCreated ChangeKind = iota + 1
	CommentAdded
	PostDeleted
	FeaturedToggled
	AuthorRenamed
	CollectionSeeded
)

func (k ChangeKind) String() string {
	switch k {
	case PostCreated:
		return "post_created"
	case CommentAdded:
		return "comment_added"
	case PostDeleted:
		return "post_deleted"
	case FeaturedToggled:
		return "featured_toggled"
	case AuthorRenamed:
		return "author_renamed"
	case CollectionSeeded:
		return "collection_seeded"
	default:
		return "unknown"
	}
}

// Change describes one applied store mutation. It carries both the affected
// entity and the full collection so an adapter can persist at whichever
// granularity it supports. All pointers are private copies.
type Change struct {
	Kind    ChangeKind
	Version uint64

	PostID  string
	Post    *models.Post
	Comment *models.Comment

	AuthorKey  string
	AuthorName string

	Snapshot []*models.Post
}

// Adapter durably saves and loads the post collection.
type Adapter interface {
	Name() string
	Load(ctx context.Context) ([]*models.Post, error)
	Apply(ctx context.Context, change Change) error
	Close() error
}

// Filter selects rows by column equality.
type Filter map[string]any

// TableStore is the table-oriented remote collaborator.
type TableStore interface {
	SelectAll(ctx context.Context, table string, dest any, order string) error
	Insert(ctx context.Context, table string, row any) error
	Update(ctx context.Context, table string, filter Filter, patch map[string]any) error
	Delete(ctx context.Context, table string, filter Filter) error
}

// Transactor is implemented by table stores that can group writes.
type Transactor interface {
	InTx(ctx context.Context, fn func(TableStore) error) error
}

// ProfileStore caches the display name chosen for an identity.
type ProfileStore interface {
	DisplayName(ctx context.Context, identityKey string) (string, bool, error)
	SetDisplayName(ctx context.Context, identityKey, name string) error
}
