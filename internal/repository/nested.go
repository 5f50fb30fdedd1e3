package repository

import (
	"context"
	"errors"
	"time"

	"obrafin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrElementNotFound is returned when the parent exists but the sub-record does not.
var ErrElementNotFound = errors.New("element not found")

// NestedStore manages the sub-records of one parent collection. Every
// operation first checks the parent exists (ErrNotFound otherwise).
type NestedStore[E any] interface {
	Append(ctx context.Context, parentID uuid.UUID, elem *E) error
	Update(ctx context.Context, parentID, elemID uuid.UUID, mutate func(*E) error) (*E, error)
	Remove(ctx context.Context, parentID, elemID uuid.UUID) error
	Find(ctx context.Context, parentID, elemID uuid.UUID) (*E, error)
}

// ChildBinding ties a child table to its parent.
type ChildBinding[E any] struct {
	Column string         // reference column on the child table
	Fixed  map[string]any // constant conditions, e.g. a polymorphic type
	Attach func(elem *E, parentID uuid.UUID)
}

type nestedStore[P any, E any] struct {
	db      *gorm.DB
	binding ChildBinding[E]
	now     func() time.Time
}

func NewNestedStore[P any, E any](db *gorm.DB, binding ChildBinding[E]) NestedStore[E] {
	return &nestedStore[P, E]{db: db, binding: binding, now: time.Now}
}

// NewLedgerCollection binds one of the four ledger collections.
func NewLedgerCollection[E any](db *gorm.DB, attach func(elem *E, ledgerID uuid.UUID)) NestedStore[E] {
	return NewNestedStore[model.Ledger, E](db, ChildBinding[E]{Column: "ledger_id", Attach: attach})
}

// NewInstallmentStore binds the installments of P, discriminated by ownerType.
func NewInstallmentStore[P any](db *gorm.DB, ownerType string) NestedStore[model.Installment] {
	return NewNestedStore[P, model.Installment](db, ChildBinding[model.Installment]{
		Column: "owner_id",
		Fixed:  map[string]any{"owner_type": ownerType},
		Attach: func(elem *model.Installment, parentID uuid.UUID) {
			elem.OwnerID = parentID
			elem.OwnerType = ownerType
		},
	})
}

func (s *nestedStore[P, E]) children(db *gorm.DB, parentID uuid.UUID) *gorm.DB {
	db = db.Where(s.binding.Column+" = ?", parentID)
	if len(s.binding.Fixed) > 0 {
		db = db.Where(s.binding.Fixed)
	}
	return db
}

// lockParent verifies the parent exists and, inside a transaction, locks it
// so concurrent edits of the same parent serialize.
func (s *nestedStore[P, E]) lockParent(tx *gorm.DB, parentID uuid.UUID) error {
	var parent P
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").First(&parent, "id = ?", parentID).Error
	if err != nil {
		return translate(err)
	}
	return nil
}

func (s *nestedStore[P, E]) touchParent(tx *gorm.DB, parentID uuid.UUID) error {
	return tx.Model(new(P)).Where("id = ?", parentID).
		UpdateColumn("updated_at", s.now()).Error
}

func (s *nestedStore[P, E]) Append(ctx context.Context, parentID uuid.UUID, elem *E) error {
	return GetDB(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		if err := s.lockParent(tx, parentID); err != nil {
			return err
		}
		s.binding.Attach(elem, parentID)
		if err := tx.Create(elem).Error; err != nil {
			return err
		}
		return s.touchParent(tx, parentID)
	})
}

func (s *nestedStore[P, E]) Update(ctx context.Context, parentID, elemID uuid.UUID, mutate func(*E) error) (*E, error) {
	var elem E
	err := GetDB(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		if err := s.lockParent(tx, parentID); err != nil {
			return err
		}
		if err := s.children(tx, parentID).First(&elem, "id = ?", elemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrElementNotFound
			}
			return err
		}
		if err := mutate(&elem); err != nil {
			return err
		}
		// the mutation may not move the element to another parent
		s.binding.Attach(&elem, parentID)
		if err := tx.Save(&elem).Error; err != nil {
			return err
		}
		return s.touchParent(tx, parentID)
	})
	if err != nil {
		return nil, err
	}
	return &elem, nil
}

func (s *nestedStore[P, E]) Remove(ctx context.Context, parentID, elemID uuid.UUID) error {
	return GetDB(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		if err := s.lockParent(tx, parentID); err != nil {
			return err
		}
		res := s.children(tx, parentID).Where("id = ?", elemID).Delete(new(E))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrElementNotFound
		}
		return s.touchParent(tx, parentID)
	})
}

func (s *nestedStore[P, E]) Find(ctx context.Context, parentID, elemID uuid.UUID) (*E, error) {
	db := GetDB(ctx, s.db)

	var parent P
	if err := db.Select("id").First(&parent, "id = ?", parentID).Error; err != nil {
		return nil, translate(err)
	}

	var elem E
	if err := s.children(db, parentID).First(&elem, "id = ?", elemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrElementNotFound
		}
		return nil, err
	}
	return &elem, nil
}
