package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionCreateBudget     = "CREATE_BUDGET"
	ActionUpdateBudget     = "UPDATE_BUDGET"
	ActionDeleteBudget     = "DELETE_BUDGET"
	ActionDeactivateBudget = "DEACTIVATE_BUDGET"

	ActionCreateRequest   = "CREATE_REQUEST"
	ActionApproveRequest  = "APPROVE_REQUEST"
	ActionRejectRequest   = "REJECT_REQUEST"
	ActionDeleteRequest   = "DELETE_REQUEST"
	ActionChooseSRMR      = "CHOOSE_SR_MR"
	ActionCompleteRequest = "COMPLETE_REQUEST"

	ActionCreateRevision   = "CREATE_REVISION"
	ActionCreateDepartment = "CREATE_DEPARTMENT"
)

// AuditLog tracks Who, What, and When for every ledger mutation
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Actor      string         `gorm:"type:varchar(100);not null;index" json:"actor"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string         `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string         `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
