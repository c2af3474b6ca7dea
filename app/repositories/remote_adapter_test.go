package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"firsttime/app/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTableStore(t *testing.T) *GormTableStore {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := NewGormTableStore(db)
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { store.Close() })
	return store
}

func seedRemote(t *testing.T, adapter *RemoteAdapter) []*models.Post {
	ctx := context.Background()
	posts := samplePosts()
	for _, p := range posts {
		require.NoError(t, adapter.Apply(ctx, Change{Kind: PostCreated, PostID: p.ID, Post: p}))
		for _, c := range p.Comments {
			require.NoError(t, adapter.Apply(ctx, Change{Kind: CommentAdded, PostID: p.ID, Comment: c}))
		}
	}
	return posts
}

func featuredIDs(posts []*models.Post) []string {
	var ids []string
	for _, p := range posts {
		if p.IsFeatured {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func TestRemoteAdapterLoad(t *testing.T) {
	ctx := context.Background()
	adapter := NewRemoteAdapter(setupTableStore(t), nil)

	t.Run("empty tables", func(t *testing.T) {
		posts, err := adapter.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	seedRemote(t, adapter)

	t.Run("posts newest first with comments oldest first", func(t *testing.T) {
		posts, err := adapter.Load(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)

		assert.Equal(t, "p2", posts[0].ID)
		assert.Equal(t, "p1", posts[1].ID)
		require.Len(t, posts[0].Comments, 2)
		assert.Equal(t, "c1", posts[0].Comments[0].ID)
		assert.Equal(t, "c2", posts[0].Comments[1].ID)
		assert.Empty(t, posts[1].Comments)

		assert.Equal(t, []string{"Turn off the water"}, posts[0].Tips)
		assert.Equal(t, "Rusted nut", posts[0].RealityChecks[0].Reality)
		assert.Equal(t, "u1", posts[0].AuthorKey)
		assert.Equal(t, time.UTC, posts[0].CreatedAt.Location())
		assert.Equal(t, []string{"p1"}, featuredIDs(posts))
	})
}

func TestRemoteAdapterApply(t *testing.T) {
	ctx := context.Background()

	t.Run("featuring a post clears the previous one", func(t *testing.T) {
		adapter := NewRemoteAdapter(setupTableStore(t), nil)
		posts := seedRemote(t, adapter)

		target := posts[0].Clone()
		target.IsFeatured = true
		require.NoError(t, adapter.Apply(ctx, Change{Kind: FeaturedToggled, PostID: target.ID, Post: target}))

		loaded, err := adapter.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"p2"}, featuredIDs(loaded))
	})

	t.Run("unfeaturing leaves nothing featured", func(t *testing.T) {
		adapter := NewRemoteAdapter(setupTableStore(t), nil)
		posts := seedRemote(t, adapter)

		target := posts[1].Clone()
		target.IsFeatured = false
		require.NoError(t, adapter.Apply(ctx, Change{Kind: FeaturedToggled, PostID: target.ID, Post: target}))

		loaded, err := adapter.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, featuredIDs(loaded))
	})

	t.Run("delete removes post and its comments", func(t *testing.T) {
		store := setupTableStore(t)
		adapter := NewRemoteAdapter(store, nil)
		seedRemote(t, adapter)

		require.NoError(t, adapter.Apply(ctx, Change{Kind: PostDeleted, PostID: "p2"}))

		loaded, err := adapter.Load(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, "p1", loaded[0].ID)

		var orphans []commentRow
		require.NoError(t, store.SelectAll(ctx, CommentsTable, &orphans, ""))
		assert.Empty(t, orphans)
	})

	t.Run("rename touches only keyed rows", func(t *testing.T) {
		adapter := NewRemoteAdapter(setupTableStore(t), nil)
		seedRemote(t, adapter)

		require.NoError(t, adapter.Apply(ctx, Change{Kind: AuthorRenamed, AuthorKey: "u1", AuthorName: "Marco"}))

		loaded, err := adapter.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Marco", loaded[0].Author)
		assert.Equal(t, "Ann", loaded[0].Comments[0].Author)
		assert.Equal(t, "Marco", loaded[0].Comments[1].Author)
		assert.Equal(t, "Elena Gomez", loaded[1].Author)
	})

	t.Run("duplicate insert fails", func(t *testing.T) {
		adapter := NewRemoteAdapter(setupTableStore(t), nil)
		posts := seedRemote(t, adapter)

		err := adapter.Apply(ctx, Change{Kind: PostCreated, PostID: posts[0].ID, Post: posts[0]})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), PostCreated.String())
	})

	t.Run("seeding inserts posts and comments together", func(t *testing.T) {
		adapter := NewRemoteAdapter(setupTableStore(t), nil)
		require.NoError(t, adapter.Apply(ctx, Change{Kind: CollectionSeeded, Snapshot: samplePosts()}))

		loaded, err := adapter.Load(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Len(t, loaded[0].Comments, 2)
	})

	t.Run("unknown change kind", func(t *testing.T) {
		adapter := NewRemoteAdapter(setupTableStore(t), nil)
		err := adapter.Apply(ctx, Change{Kind: ChangeKind(99)})
		assert.Error(t, err)
	})
}

func TestRemoteAdapterConnectionFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	adapter := NewRemoteAdapter(NewGormTableStore(db), nil)
	post := samplePosts()[1]
	err = adapter.Apply(context.Background(), Change{Kind: PostCreated, PostID: post.ID, Post: post})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
