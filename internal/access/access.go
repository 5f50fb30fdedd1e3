// Package access decides what an authenticated principal may see.
package access

import (
	"context"
	"fmt"

	"obrafin/internal/model"
	"obrafin/internal/repository"

	"github.com/google/uuid"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin reports whether the principal bypasses project narrowing.
func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

// Actor returns the user id for audit and ownership fields.
func (p Principal) Actor() *uuid.UUID {
	if p.UserID == uuid.Nil {
		return nil
	}
	id := p.UserID
	return &id
}

// Scope is the set of projects a principal may read.
type Scope struct {
	all bool
	ids map[uuid.UUID]struct{}
}

// Everything is the scope of privileged principals.
func Everything() Scope { return Scope{all: true} }

// Only restricts to the given projects. An empty list grants nothing.
func Only(ids []uuid.UUID) Scope {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Scope{ids: set}
}

func (s Scope) Unrestricted() bool { return s.all }

// ProjectIDs lists the allowed projects; nil for an unrestricted scope.
func (s Scope) ProjectIDs() []uuid.UUID {
	if s.all {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids
}

// Allows reports whether a record bound to projectID is visible. Records
// without a project are visible only to unrestricted scopes.
func (s Scope) Allows(projectID *uuid.UUID) bool {
	if s.all {
		return true
	}
	if projectID == nil {
		return false
	}
	_, ok := s.ids[*projectID]
	return ok
}

// Narrow restricts q to the scope using column as the project reference.
func (s Scope) Narrow(q repository.Query, column string) repository.Query {
	if s.all {
		return q
	}
	return q.Restrict(column, s.ProjectIDs())
}

// AllowListSource loads a user's allowed projects.
type AllowListSource interface {
	AllowedProjectIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Resolver turns principals into scopes.
type Resolver struct {
	source AllowListSource
}

func NewResolver(source AllowListSource) *Resolver {
	return &Resolver{source: source}
}

func (r *Resolver) Resolve(ctx context.Context, p Principal) (Scope, error) {
	if p.IsAdmin() {
		return Everything(), nil
	}
	ids, err := r.source.AllowedProjectIDs(ctx, p.UserID)
	if err != nil {
		return Scope{}, fmt.Errorf("load allowed projects: %w", err)
	}
	return Only(ids), nil
}
