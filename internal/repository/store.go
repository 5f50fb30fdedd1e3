package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence contract shared by every top-level financial record.
type Store[T any] interface {
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, q Query) ([]T, int64, error)
	Count(ctx context.Context, q Query) (int64, error)
}

// StoreOption customizes a gormStore.
type StoreOption func(*storeConfig)

type storeConfig struct {
	preloads     []string
	order        string
	associations []string
}

// WithPreload loads the named association on every read, ordered by insertion.
func WithPreload(names ...string) StoreOption {
	return func(c *storeConfig) { c.preloads = append(c.preloads, names...) }
}

// WithOrder sets the default sort. The primary key is always appended as a tie-breaker.
func WithOrder(order string) StoreOption {
	return func(c *storeConfig) { c.order = order }
}

// WithCascade deletes the named has-many associations together with the record.
func WithCascade(names ...string) StoreOption {
	return func(c *storeConfig) { c.associations = append(c.associations, names...) }
}

type gormStore[T any] struct {
	db  *gorm.DB
	cfg storeConfig
}

func NewStore[T any](db *gorm.DB, opts ...StoreOption) Store[T] {
	cfg := storeConfig{order: "created_at DESC"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &gormStore[T]{db: db, cfg: cfg}
}

func (s *gormStore[T]) withPreloads(db *gorm.DB) *gorm.DB {
	for _, name := range s.cfg.preloads {
		db = db.Preload(name, func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC, id ASC")
		})
	}
	return db
}

func (s *gormStore[T]) Create(ctx context.Context, record *T) error {
	return GetDB(ctx, s.db).Create(record).Error
}

// Update saves the record's own columns; associations are managed through NestedStore.
func (s *gormStore[T]) Update(ctx context.Context, record *T) error {
	return GetDB(ctx, s.db).Omit(clause.Associations).Save(record).Error
}

func (s *gormStore[T]) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, s.db)

	var record T
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		return translate(err)
	}

	if len(s.cfg.associations) > 0 {
		db = db.Select(s.cfg.associations)
	}
	res := db.Delete(&record)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var record T
	if err := s.withPreloads(GetDB(ctx, s.db)).First(&record, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

// FindByIDForUpdate locks the row for the rest of the surrounding transaction
// on dialects that support row locks.
func (s *gormStore[T]) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*T, error) {
	var record T
	db := GetDB(ctx, s.db).Clauses(clause.Locking{Strength: "UPDATE"})
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (s *gormStore[T]) List(ctx context.Context, q Query) ([]T, int64, error) {
	records := make([]T, 0)
	if q.MatchesNothing() {
		return records, 0, nil
	}

	total, err := s.Count(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	db := q.Apply(s.withPreloads(GetDB(ctx, s.db)).Model(new(T)))
	db = db.Order(s.cfg.order).Order("id DESC")
	if q.Page.Limit > 0 {
		db = db.Offset(q.Page.Offset).Limit(q.Page.Limit)
	}
	err = db.Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (s *gormStore[T]) Count(ctx context.Context, q Query) (int64, error) {
	if q.MatchesNothing() {
		return 0, nil
	}
	var total int64
	if err := q.Apply(GetDB(ctx, s.db).Model(new(T))).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("store: %w", err)
}
