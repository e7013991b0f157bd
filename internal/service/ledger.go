package service

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"procurement/internal/currency"
	"procurement/internal/model"
	"procurement/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Ledger event names pushed to live subscribers after commit.
const (
	EventBudgetCreated    = "budget.created"
	EventBudgetUpdated    = "budget.updated"
	EventBudgetDeleted    = "budget.deleted"
	EventRequestCreated   = "request.created"
	EventRequestSubmitted = "request.submitted"
	EventRequestUpdated   = "request.updated"
	EventRequestDeleted   = "request.deleted"
	EventRevisionCreated  = "revision.created"
)

// EventPublisher receives ledger events. Implementations must not block.
type EventPublisher interface {
	Publish(event string, data interface{})
}

// Ledger bundles the collaborators shared by every budget-affecting operation.
type Ledger struct {
	Tx        repository.TransactionManager
	Budgets   repository.BudgetRepository
	Requests  repository.RequestRepository
	Revisions repository.RevisionRepository
	Audit     repository.AuditRepository
	Rates     currency.RateTable
	Locker    *BudgetLocker
	Events    EventPublisher // optional
	Actor     string         // recorded on audit rows and revisions
}

// DeleteResult is returned by delete operations that succeed.
type DeleteResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	SoftDeleted bool   `json:"soft_deleted,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

func (l Ledger) toIDR(amount decimal.Decimal, code string) decimal.Decimal {
	return currency.ConvertToIDR(l.Rates, amount, code)
}

func (l Ledger) actor(override string) string {
	if override != "" {
		return override
	}
	if l.Actor != "" {
		return l.Actor
	}
	return "system"
}

func (l Ledger) publish(event string, data interface{}) {
	if l.Events == nil {
		return
	}
	l.Events.Publish(event, data)
}

func (l Ledger) audit(ctx context.Context, action, entityID, entityName string, details map[string]interface{}) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}
	entry := model.AuditLog{
		Actor:      l.actor(""),
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    datatypes.JSON(raw),
	}
	if err := l.Audit.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func parseID(entity, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		// an id that cannot exist is reported the same way as a missing one
		return uuid.Nil, &NotFoundError{Entity: entity, ID: raw}
	}
	return id, nil
}

func logBudget(b *model.Budget) *log.Entry {
	return log.WithFields(log.Fields{
		"budget_id": b.ID.String(),
		"remaining": b.RemainingAmount.String(),
		"used":      b.UsedAmount.String(),
	})
}
