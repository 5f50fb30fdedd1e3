package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"

	ActionApproveUser       = "APPROVE_USER"
	ActionGrantProjects     = "GRANT_PROJECTS"
	ActionMarkWeeklyPaid    = "MARK_WEEKLY_PAID"
	ActionLinkSpreadsheet   = "LINK_SPREADSHEET"
	ActionExportSpreadsheet = "EXPORT_SPREADSHEET"
	ActionAppendElement     = "APPEND_ELEMENT"
	ActionUpdateElement     = "UPDATE_ELEMENT"
	ActionRemoveElement     = "REMOVE_ELEMENT"
)

// AuditLog tracks who changed which record and when
type AuditLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"_id"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"userId"` // nil for system actions
	User      *User          `gorm:"foreignKey:UserID" json:"-"`
	Action    string         `gorm:"type:varchar(50);not null;index" json:"action"`
	Entity    string         `gorm:"type:varchar(50);not null;index" json:"entity"`
	EntityID  string         `gorm:"type:varchar(50);index" json:"entityId"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
}

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		a.ID = id
	}
	return nil
}
