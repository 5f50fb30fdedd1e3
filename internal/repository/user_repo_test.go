package repository

import (
	"context"
	"strings"
	"testing"

	"obrafin/internal/model"
	"obrafin/pkg/pagination"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(email string) *model.User {
	return &model.User{
		Nome:     "Usuário",
		Email:    email,
		Password: "hash",
		Role:     model.RoleUser,
		Approved: true,
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := newUser("ana@obra.com")
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByEmail(ctx, "ana@obra.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByEmail(ctx, "ninguem@obra.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_DeleteFreesEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := newUser("bruno@obra.com")
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.Delete(ctx, u.ID))

	_, err := repo.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var stored model.User
	require.NoError(t, db.Unscoped().First(&stored, "id = ?", u.ID).Error)
	assert.True(t, strings.HasPrefix(stored.Email, "bruno@obra.com#removido-"))

	require.NoError(t, repo.Create(ctx, newUser("bruno@obra.com")))
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), ErrNotFound)
}

func TestUserRepository_AllowedProjects(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	obras := NewStore[model.Obra](db)
	ctx := context.Background()

	u := newUser("carla@obra.com")
	require.NoError(t, repo.Create(ctx, u))
	a, b := newObra(t, db, "A"), newObra(t, db, "B")

	ids, err := repo.AllowedProjectIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.SetAllowedProjects(ctx, u.ID, []uuid.UUID{a.ID, b.ID}))
	require.NoError(t, repo.GrantProject(ctx, u.ID, a.ID))

	ids, err = repo.AllowedProjectIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ids)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, got.AllowedProjectIDs())

	// a removed project drops out of the allow-list
	require.NoError(t, obras.Delete(ctx, b.ID))
	ids, err = repo.AllowedProjectIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID}, ids)

	require.NoError(t, repo.SetAllowedProjects(ctx, u.ID, nil))
	ids, err = repo.AllowedProjectIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUserRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	pending := newUser("novo@obra.com")
	pending.Role = model.RolePending
	pending.Approved = false
	require.NoError(t, repo.Create(ctx, pending))
	require.NoError(t, repo.Create(ctx, newUser("velho@obra.com")))

	users, total, err := repo.List(ctx, NewQuery(pagination.New("", "")).Where("approved = ?", false))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "novo@obra.com", users[0].Email)
}
