package repositories

import (
	"context"
	"fmt"

	"firsttime/app/models"
)

// RemoteAdapter persists each change as per-row writes against a hosted
// table store and reads the collection back with two selects.
type RemoteAdapter struct {
	tables TableStore
	cache  *PostCache
}

// NewRemoteAdapter creates a RemoteAdapter. cache may be nil.
func NewRemoteAdapter(tables TableStore, cache *PostCache) *RemoteAdapter {
	return &RemoteAdapter{tables: tables, cache: cache}
}

func (r *RemoteAdapter) Name() string { return "remote" }

// Load returns posts newest first, each with its comments oldest first.
func (r *RemoteAdapter) Load(ctx context.Context) ([]*models.Post, error) {
	return r.cache.Aside(ctx, func() ([]*models.Post, error) {
		var postRows []postRow
		if err := r.tables.SelectAll(ctx, PostsTable, &postRows, "created_at desc"); err != nil {
			return nil, fmt.Errorf("select posts: %w", err)
		}
		var commentRows []commentRow
		if err := r.tables.SelectAll(ctx, CommentsTable, &commentRows, "created_at asc, id asc"); err != nil {
			return nil, fmt.Errorf("select comments: %w", err)
		}

		posts := make([]*models.Post, 0, len(postRows))
		byID := make(map[string]*models.Post, len(postRows))
		for _, row := range postRows {
			p := row.toModel()
			posts = append(posts, p)
			byID[p.ID] = p
		}
		for _, row := range commentRows {
			if p, ok := byID[row.PostID]; ok {
				p.Comments = append(p.Comments, row.toModel())
			}
		}
		return posts, nil
	})
}

// Apply maps the change onto row writes.
func (r *RemoteAdapter) Apply(ctx context.Context, change Change) error {
	var err error
	switch change.Kind {
	case PostCreated:
		err = r.tables.Insert(ctx, PostsTable, toPostRow(change.Post))
	case CommentAdded:
		err = r.tables.Insert(ctx, CommentsTable, toCommentRow(change.Comment))
	case PostDeleted:
		err = r.inTx(ctx, func(t TableStore) error {
			if err := t.Delete(ctx, CommentsTable, Filter{"post_id": change.PostID}); err != nil {
				return err
			}
			return t.Delete(ctx, PostsTable, Filter{"id": change.PostID})
		})
	case FeaturedToggled:
		err = r.applyFeatured(ctx, change.Post)
	case AuthorRenamed:
		err = r.inTx(ctx, func(t TableStore) error {
			patch := map[string]any{"author": change.AuthorName}
			if err := t.Update(ctx, PostsTable, Filter{"author_id": change.AuthorKey}, patch); err != nil {
				return err
			}
			return t.Update(ctx, CommentsTable, Filter{"author_id": change.AuthorKey}, patch)
		})
	case CollectionSeeded:
		err = r.inTx(ctx, func(t TableStore) error {
			for _, p := range change.Snapshot {
				if err := t.Insert(ctx, PostsTable, toPostRow(p)); err != nil {
					return err
				}
				for _, c := range p.Comments {
					if err := t.Insert(ctx, CommentsTable, toCommentRow(c)); err != nil {
						return err
					}
				}
			}
			return nil
		})
	default:
		err = fmt.Errorf("unsupported change kind %d", change.Kind)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", change.Kind, err)
	}
	r.cache.Invalidate(ctx)
	return nil
}

// applyFeatured clears the previous featured row and sets the new one in a
// single transaction so concurrent readers never see two featured posts.
func (r *RemoteAdapter) applyFeatured(ctx context.Context, post *models.Post) error {
	if !post.IsFeatured {
		return r.tables.Update(ctx, PostsTable, Filter{"id": post.ID}, map[string]any{"is_featured": false})
	}
	return r.inTx(ctx, func(t TableStore) error {
		if err := t.Update(ctx, PostsTable, Filter{"is_featured": true}, map[string]any{"is_featured": false}); err != nil {
			return err
		}
		return t.Update(ctx, PostsTable, Filter{"id": post.ID}, map[string]any{"is_featured": true})
	})
}

func (r *RemoteAdapter) inTx(ctx context.Context, fn func(TableStore) error) error {
	if tx, ok := r.tables.(Transactor); ok {
		return tx.InTx(ctx, fn)
	}
	return fn(r.tables)
}

func (r *RemoteAdapter) Close() error {
	if c, ok := r.tables.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
