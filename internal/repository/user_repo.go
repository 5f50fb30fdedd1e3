package repository

import (
	"context"

	"obrafin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, q Query) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	AllowedProjectIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	SetAllowedProjects(ctx context.Context, id uuid.UUID, projectIDs []uuid.UUID) error
	GrantProject(ctx context.Context, id, projectID uuid.UUID) error
}

const userProjectsTable = "user_obras"

type userRepository struct {
	db    *gorm.DB
	store Store[model.User]
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db:    db,
		store: NewStore[model.User](db, WithPreload("Obras")),
	}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.store.Create(ctx, user)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.store.FindByID(ctx, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).Preload("Obras").First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, q Query) ([]model.User, int64, error) {
	return r.store.List(ctx, q)
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.store.Update(ctx, user)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+userProjectsTable+" WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		// free the unique email for a future registration
		res := tx.Model(&model.User{}).Where("id = ?", id).
			UpdateColumn("email", gorm.Expr("email || ?", "#removido-"+id.String()))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Delete(&model.User{}, "id = ?", id).Error
	})
}

func (r *userRepository) AllowedProjectIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Table(userProjectsTable).
		Joins("JOIN obras ON obras.id = user_obras.obra_id AND obras.deleted_at IS NULL").
		Where("user_obras.user_id = ?", id).
		Pluck("user_obras.obra_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SetAllowedProjects replaces the user's allow-list.
func (r *userRepository) SetAllowedProjects(ctx context.Context, id uuid.UUID, projectIDs []uuid.UUID) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+userProjectsTable+" WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		if len(projectIDs) == 0 {
			return nil
		}
		rows := make([]map[string]any, 0, len(projectIDs))
		for _, pid := range projectIDs {
			rows = append(rows, map[string]any{"user_id": id, "obra_id": pid})
		}
		return tx.Table(userProjectsTable).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

func (r *userRepository) GrantProject(ctx context.Context, id, projectID uuid.UUID) error {
	row := map[string]any{"user_id": id, "obra_id": projectID}
	return GetDB(ctx, r.db).Table(userProjectsTable).
		Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}
