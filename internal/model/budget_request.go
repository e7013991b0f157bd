package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RequestType enum constants
const (
	RequestTypeItem    = "ITEM"
	RequestTypeService = "SERVICE"
)

// RequestStatus constants
//
//	DRAFT -> SUBMITTED -> BUDGET_APPROVED | BUDGET_REJECTED
//	BUDGET_APPROVED -> WAITING_SR_MR -> COMPLETED
const (
	RequestStatusDraft          = "DRAFT"
	RequestStatusSubmitted      = "SUBMITTED"
	RequestStatusBudgetApproved = "BUDGET_APPROVED"
	RequestStatusBudgetRejected = "BUDGET_REJECTED"
	RequestStatusWaitingSRMR    = "WAITING_SR_MR"
	RequestStatusCompleted      = "COMPLETED"
)

// BudgetRequest is a purchase or service ask drawn against a single Budget.
type BudgetRequest struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestNo      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"request_no"` // REQ/YYYY/MM/NNN
	RequesterName  string    `gorm:"type:varchar(100);not null" json:"requester_name"`
	RequesterBadge string    `gorm:"type:varchar(50)" json:"requester_badge"`
	Department     string    `gorm:"type:varchar(100);not null;index" json:"department"`
	RequestType    string    `gorm:"type:varchar(10);not null" json:"request_type"` // ITEM, SERVICE
	ItemName       string    `gorm:"type:varchar(255)" json:"item_name"`
	Specification  string    `gorm:"type:text" json:"specification"`
	Quantity       int       `gorm:"not null;default:1" json:"quantity"`

	Currency          string          `gorm:"type:varchar(10);not null;default:'IDR'" json:"currency"`
	ExchangeRate      decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1" json:"exchange_rate"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"unit_price"`
	UnitPriceIDR      decimal.Decimal `gorm:"column:unit_price_idr;type:decimal(18,2);not null;default:0" json:"unit_price_idr"`
	EstimatedTotal    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"estimated_total"`
	EstimatedTotalIDR decimal.Decimal `gorm:"column:estimated_total_idr;type:decimal(18,2);not null;default:0" json:"estimated_total_idr"`

	BudgetType        string          `gorm:"type:varchar(10)" json:"budget_type"`
	BudgetID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"budget_id"`
	Budget            *Budget         `gorm:"foreignKey:BudgetID" json:"budget,omitempty"`
	ReservedAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"reserved_amount"`
	ReservedAmountIDR decimal.Decimal `gorm:"column:reserved_amount_idr;type:decimal(18,2);not null;default:0" json:"reserved_amount_idr"`

	Status      string     `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Notes       *string    `gorm:"type:text" json:"notes"`
	SubmittedAt *time.Time `json:"submitted_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (r *BudgetRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HasReservation reports whether the request currently holds funds on its budget.
func (r BudgetRequest) HasReservation() bool {
	return !r.ReservedAmount.IsZero() && r.BudgetID != uuid.Nil
}
