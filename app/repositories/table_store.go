package repositories

import (
	"context"
	"fmt"
	"time"

	"firsttime/app/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	PostsTable    = "posts"
	CommentsTable = "comments"
)

type postRow struct {
	ID            string                `gorm:"primaryKey;type:text"`
	Title         string                `gorm:"not null"`
	Author        string                `gorm:"not null"`
	AuthorID      string                `gorm:"column:author_id;index"`
	Category      string                `gorm:"not null"`
	Difficulty    int                   `gorm:"not null"`
	Content       string                `gorm:"type:text;not null"`
	Tips          []string              `gorm:"serializer:json;type:text"`
	RealityChecks []models.RealityCheck `gorm:"column:reality_checks;serializer:json;type:text"`
	ImageURL      string                `gorm:"column:image_url"`
	CreatedAt     time.Time             `gorm:"index"`
	IsFeatured    bool                  `gorm:"column:is_featured;not null;default:false"`
}

func (postRow) TableName() string { return PostsTable }

type commentRow struct {
	ID        string    `gorm:"primaryKey;type:text"`
	PostID    string    `gorm:"column:post_id;index;not null"`
	Author    string    `gorm:"not null"`
	AuthorID  string    `gorm:"column:author_id;index"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (commentRow) TableName() string { return CommentsTable }

// GormTableStore implements TableStore on a GORM connection.
type GormTableStore struct {
	db *gorm.DB
}

// OpenPostgres connects to the hosted Postgres database behind Supabase.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

func NewGormTableStore(db *gorm.DB) *GormTableStore {
	return &GormTableStore{db: db}
}

// Migrate creates or updates the posts and comments tables.
func (s *GormTableStore) Migrate() error {
	return s.db.AutoMigrate(&postRow{}, &commentRow{})
}

func (s *GormTableStore) SelectAll(ctx context.Context, table string, dest any, order string) error {
	q := s.db.WithContext(ctx).Table(table)
	if order != "" {
		q = q.Order(order)
	}
	return q.Find(dest).Error
}

func (s *GormTableStore) Insert(ctx context.Context, table string, row any) error {
	return s.db.WithContext(ctx).Table(table).Create(row).Error
}

func (s *GormTableStore) Update(ctx context.Context, table string, filter Filter, patch map[string]any) error {
	model, err := modelFor(table)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(model).Where(map[string]any(filter)).Updates(patch).Error
}

func (s *GormTableStore) Delete(ctx context.Context, table string, filter Filter) error {
	model, err := modelFor(table)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where(map[string]any(filter)).Delete(model).Error
}

// InTx runs fn against a table store bound to a single transaction.
func (s *GormTableStore) InTx(ctx context.Context, fn func(TableStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormTableStore{db: tx})
	})
}

func (s *GormTableStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func modelFor(table string) (any, error) {
	switch table {
	case PostsTable:
		return &postRow{}, nil
	case CommentsTable:
		return &commentRow{}, nil
	default:
		return nil, fmt.Errorf("unknown table %q", table)
	}
}

func toPostRow(p *models.Post) *postRow {
	return &postRow{
		ID:            p.ID,
		Title:         p.Title,
		Author:        p.Author,
		AuthorID:      p.AuthorKey,
		Category:      string(p.Category),
		Difficulty:    p.Difficulty,
		Content:       p.Content,
		Tips:          p.Tips,
		RealityChecks: p.RealityChecks,
		ImageURL:      p.ImageURL,
		CreatedAt:     p.CreatedAt,
		IsFeatured:    p.IsFeatured,
	}
}

func toCommentRow(c *models.Comment) *commentRow {
	return &commentRow{
		ID:        c.ID,
		PostID:    c.PostID,
		Author:    c.Author,
		AuthorID:  c.AuthorKey,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func (r postRow) toModel() *models.Post {
	tips := r.Tips
	if tips == nil {
		tips = []string{}
	}
	checks := r.RealityChecks
	if checks == nil {
		checks = []models.RealityCheck{}
	}
	return &models.Post{
		ID:            r.ID,
		Title:         r.Title,
		Author:        r.Author,
		AuthorKey:     r.AuthorID,
		Category:      models.Category(r.Category),
		Difficulty:    r.Difficulty,
		Content:       r.Content,
		Tips:          tips,
		RealityChecks: checks,
		ImageURL:      r.ImageURL,
		CreatedAt:     r.CreatedAt.UTC(),
		IsFeatured:    r.IsFeatured,
		Comments:      []*models.Comment{},
	}
}

func (r commentRow) toModel() *models.Comment {
	return &models.Comment{
		ID:        r.ID,
		PostID:    r.PostID,
		Author:    r.Author,
		AuthorKey: r.AuthorID,
		Text:      r.Text,
		CreatedAt: r.CreatedAt.UTC(),
	}
}
