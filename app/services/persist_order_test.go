package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"firsttime/app/models"
	"firsttime/app/repositories"
	"firsttime/app/repositories/mock"
	"firsttime/app/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gate holds the first row update until released.
type gate struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

type gatedTables struct {
	repositories.TableStore
	gate *gate
}

func (g *gatedTables) Update(ctx context.Context, table string, filter repositories.Filter, patch map[string]any) error {
	g.gate.once.Do(func() {
		close(g.gate.entered)
		<-g.gate.release
	})
	return g.TableStore.Update(ctx, table, filter, patch)
}

func (g *gatedTables) InTx(ctx context.Context, fn func(repositories.TableStore) error) error {
	return g.TableStore.(repositories.Transactor).InTx(ctx, func(tx repositories.TableStore) error {
		return fn(&gatedTables{TableStore: tx, gate: g.gate})
	})
}

func setupRemoteTables(t *testing.T) *repositories.GormTableStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	tables := repositories.NewGormTableStore(db)
	require.NoError(t, tables.Migrate())
	t.Cleanup(func() { tables.Close() })
	return tables
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

func TestPostStoreRemoteFollowsMemoryOrder(t *testing.T) {
	ctx := context.Background()
	tables := setupRemoteTables(t)
	require.NoError(t, repositories.NewRemoteAdapter(tables, nil).Apply(ctx, repositories.Change{
		Kind:     repositories.CollectionSeeded,
		Snapshot: seed.Demo(),
	}))

	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	adapter := repositories.NewRemoteAdapter(&gatedTables{TableStore: tables, gate: g}, nil)
	store := NewPostStore(adapter)
	store.Load(ctx)
	require.Equal(t, []string{"1"}, featuredIDs(store.Snapshot()))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := store.ToggleFeatured(ctx, "2")
		assert.NoError(t, err)
	}()
	<-g.entered

	go func() {
		defer wg.Done()
		_, err := store.ToggleFeatured(ctx, "3")
		assert.NoError(t, err)
	}()
	assert.Eventually(t, func() bool {
		p, err := store.Get("3")
		return err == nil && p.IsFeatured
	}, time.Second, 5*time.Millisecond)

	close(g.release)
	wg.Wait()

	stored, err := adapter.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, featuredIDs(store.Snapshot()))
	assert.Equal(t, featuredIDs(store.Snapshot()), featuredIDs(stored))
}

func TestPostStoreAppliesVersionsInOrder(t *testing.T) {
	ctx := context.Background()
	adapter := mock.NewAdapterWith(seed.Demo())
	store := newTestStore(t, adapter)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = store.ToggleFeatured(ctx, "2")
				return
			}
			_, _ = store.AddComment(ctx, "1", models.CommentDraft{Author: "Jo", Text: "again"})
		}(i)
	}
	wg.Wait()

	changes := adapter.Changes()
	require.Len(t, changes, 25)
	for i, c := range changes {
		assert.Equal(t, uint64(i+1), c.Version)
	}
	assert.Equal(t, featuredIDs(store.Snapshot()), featuredIDs(adapter.Stored()))
}

func TestPostStoreLoadKeepsOneFeatured(t *testing.T) {
	posts := seed.Demo()
	posts[1].IsFeatured = true
	posts[2].IsFeatured = true
	adapter := mock.NewAdapterWith(posts)

	store := newTestStore(t, adapter)
	assert.Equal(t, []string{"1"}, featuredIDs(store.Snapshot()))
	assert.Empty(t, adapter.Changes())
}
