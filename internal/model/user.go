package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles
const (
	RolePending = "PreAprovacao"
	RoleUser    = "User"
	RoleAdmin   = "Admin"
)

// User represents an operator of the system. Only approved users may log in.
type User struct {
	Base
	Nome      string         `gorm:"type:varchar(255);not null" json:"nome"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"`
	Approved  bool           `gorm:"not null;default:false" json:"approved"`
	Role      string         `gorm:"type:varchar(30);not null;default:'PreAprovacao'" json:"role"`
	Obras     []Obra         `gorm:"many2many:user_obras" json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AllowedProjectIDs returns the ids of the projects the user may see.
func (u *User) AllowedProjectIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(u.Obras))
	for _, o := range u.Obras {
		ids = append(ids, o.ID)
	}
	return ids
}
