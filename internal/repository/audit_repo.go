package repository

import (
	"context"

	"obrafin/internal/model"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, q Query) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db    *gorm.DB
	store Store[model.AuditLog]
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db, store: NewStore[model.AuditLog](db, WithPreload("User"))}
}

func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, q Query) ([]model.AuditLog, int64, error) {
	return r.store.List(ctx, q)
}
