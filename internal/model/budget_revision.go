package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BudgetRevision is an append-only audit record of an administrative change
// to a request's committed amount.
type BudgetRevision struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"request_id"`
	BudgetID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"budget_id"`
	OriginalAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"original_amount"`
	NewAmount           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"new_amount"`
	ReductionPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"reduction_percentage"`
	Currency            string          `gorm:"type:varchar(10);not null;default:'IDR'" json:"currency"`
	Reason              string          `gorm:"type:text;not null" json:"reason"`
	PreviousData        datatypes.JSON  `json:"previous_data"` // request + budget before the revision
	NewData             datatypes.JSON  `json:"new_data"`
	RevisedBy           string          `gorm:"type:varchar(50);not null" json:"revised_by"`
	CreatedAt           time.Time       `gorm:"index" json:"created_at"`
}

func (r *BudgetRevision) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RevisionSnapshot is the serialized ledger state captured around a revision.
type RevisionSnapshot struct {
	Request BudgetRequest `json:"request"`
	Budget  Budget        `json:"budget"`
}
