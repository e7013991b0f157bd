package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetType enum constants
const (
	BudgetTypeCapex = "CAPEX"
	BudgetTypeOpex  = "OPEX"
)

// CurrencyIDR is the settlement currency every *_idr column is expressed in.
const CurrencyIDR = "IDR"

// Budget is an annual funding pool for one department.
// remaining_amount + used_amount == total_amount at rest, mirrored in IDR.
type Budget struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FiscalYear     string     `gorm:"type:varchar(50);not null;index" json:"fiscal_year"`
	DepartmentName string     `gorm:"type:varchar(100);not null;index" json:"department_name"`
	BudgetType     string     `gorm:"type:varchar(10);not null" json:"budget_type"` // CAPEX, OPEX
	BudgetCode     *string    `gorm:"type:varchar(50)" json:"budget_code"`
	BudgetName     string     `gorm:"type:varchar(255);not null" json:"budget_name"`
	Description    *string    `gorm:"type:text" json:"description"`
	BudgetOwner    *string    `gorm:"type:varchar(100)" json:"budget_owner"`
	PeriodStart    *time.Time `gorm:"type:date" json:"period_start"`
	PeriodEnd      *time.Time `gorm:"type:date" json:"period_end"`

	// Currency & Exchange Rate
	Currency     string          `gorm:"type:varchar(10);not null;default:'IDR'" json:"currency"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1" json:"exchange_rate"` // IDR per unit, 1 if IDR

	TotalAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	TotalAmountIDR     decimal.Decimal `gorm:"column:total_amount_idr;type:decimal(18,2);not null;default:0" json:"total_amount_idr"`
	ReservedAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"reserved_amount"`
	ReservedAmountIDR  decimal.Decimal `gorm:"column:reserved_amount_idr;type:decimal(18,2);not null;default:0" json:"reserved_amount_idr"`
	UsedAmount         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"used_amount"`
	UsedAmountIDR      decimal.Decimal `gorm:"column:used_amount_idr;type:decimal(18,2);not null;default:0" json:"used_amount_idr"`
	RemainingAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"remaining_amount"`
	RemainingAmountIDR decimal.Decimal `gorm:"column:remaining_amount_idr;type:decimal(18,2);not null;default:0" json:"remaining_amount_idr"`

	RevisionNo     int        `gorm:"not null;default:0" json:"revision_no"`
	LastRevisionAt *time.Time `json:"last_revision_at"`
	IsActive       bool       `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Balanced reports whether remaining + used equals total within tolerance.
func (b Budget) Balanced(tolerance decimal.Decimal) bool {
	diff := b.RemainingAmount.Add(b.UsedAmount).Sub(b.TotalAmount).Abs()
	return diff.LessThanOrEqual(tolerance)
}
