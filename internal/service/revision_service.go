package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"procurement/internal/currency"
	"procurement/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type CreateRevisionDTO struct {
	RequestID           string           `json:"request_id" validate:"required,uuid"`
	BudgetID            string           `json:"budget_id" validate:"required,uuid"`
	NewAmount           decimal.Decimal  `json:"new_amount"`
	OriginalAmount      *decimal.Decimal `json:"original_amount"`
	ReductionPercentage *decimal.Decimal `json:"reduction_percentage"`
	Currency            string           `json:"currency" validate:"omitempty,alpha,len=3"`
	Reason              string           `json:"reason"`
	RevisedBy           string           `json:"revised_by" validate:"max=50"`
}

type RevisionService interface {
	ListRevisions(ctx context.Context, requestID string, page, limit int) ([]model.BudgetRevision, int64, error)
	// CreateRevision is an administrative override: it moves the committed
	// amount without checking that the budget can absorb the change.
	CreateRevision(ctx context.Context, in CreateRevisionDTO) (*model.BudgetRevision, error)
}

type revisionService struct {
	Ledger
	now func() time.Time
}

func NewRevisionService(ledger Ledger) RevisionService {
	return &revisionService{Ledger: ledger, now: time.Now}
}

func (s *revisionService) ListRevisions(ctx context.Context, requestID string, page, limit int) ([]model.BudgetRevision, int64, error) {
	var filter *uuid.UUID
	if requestID != "" {
		id, err := uuid.Parse(requestID)
		if err != nil {
			return nil, 0, &ValidationError{Field: "request_id", Reason: "must be a valid UUID"}
		}
		filter = &id
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	revisions, total, err := s.Revisions.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list revisions: %w", err)
	}
	return revisions, total, nil
}

func (s *revisionService) CreateRevision(ctx context.Context, in CreateRevisionDTO) (*model.BudgetRevision, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("failed to create revision: %w", validationFrom(err))
	}
	if in.NewAmount.IsNegative() {
		return nil, fmt.Errorf("failed to create revision: %w", &ValidationError{Field: "new_amount", Reason: "must not be negative"})
	}

	reqID := uuid.MustParse(in.RequestID)
	budgetID := uuid.MustParse(in.BudgetID)

	unlock := s.Locker.Lock(budgetID)
	defer unlock()

	var (
		rev    model.BudgetRevision
		budget *model.Budget
	)
	err := s.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.Requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return notFoundOr(findErr, "request", in.RequestID)
		}
		budget, findErr = s.Budgets.FindByIDForUpdate(txCtx, budgetID)
		if findErr != nil {
			return notFoundOr(findErr, "budget", in.BudgetID)
		}
		if req.BudgetID != budget.ID {
			return &ValidationError{Field: "budget_id", Reason: "does not own the request"}
		}

		previous, err := snapshot(req, budget)
		if err != nil {
			return err
		}

		original := req.EstimatedTotal
		if in.OriginalAmount != nil {
			original = *in.OriginalAmount
		}
		difference := req.EstimatedTotal.Sub(in.NewAmount)

		// IDR mirrors are re-derived from the new native balances rather than
		// shifted by a converted delta.
		budget.RemainingAmount = budget.RemainingAmount.Add(difference)
		budget.UsedAmount = budget.UsedAmount.Sub(difference)
		budget.RemainingAmountIDR = s.toIDR(budget.RemainingAmount, budget.Currency)
		budget.UsedAmountIDR = s.toIDR(budget.UsedAmount, budget.Currency)
		now := s.now()
		budget.RevisionNo++
		budget.LastRevisionAt = &now

		req.EstimatedTotal = in.NewAmount
		req.EstimatedTotalIDR = s.toIDR(in.NewAmount, req.Currency)
		if req.HasReservation() {
			req.ReservedAmount = in.NewAmount
			req.ReservedAmountIDR = s.toIDR(in.NewAmount, budget.Currency)
		}
		if in.Reason != "" {
			reason := in.Reason
			req.Notes = &reason
		}

		if err := s.Budgets.Update(txCtx, budget); err != nil {
			return err
		}
		if err := s.Requests.Update(txCtx, req); err != nil {
			return err
		}

		next, err := snapshot(req, budget)
		if err != nil {
			return err
		}

		code := in.Currency
		if code == "" {
			code = req.Currency
		}
		rev = model.BudgetRevision{
			RequestID:           req.ID,
			BudgetID:            budget.ID,
			OriginalAmount:      original,
			NewAmount:           in.NewAmount,
			ReductionPercentage: reductionPercentage(in.ReductionPercentage, original, in.NewAmount),
			Currency:            currency.Normalize(code),
			Reason:              in.Reason,
			PreviousData:        previous,
			NewData:             next,
			RevisedBy:           s.actor(in.RevisedBy),
		}
		if err := s.Revisions.Create(txCtx, &rev); err != nil {
			return err
		}

		return s.audit(txCtx, model.ActionCreateRevision, req.ID.String(), req.RequestNo, map[string]interface{}{
			"revision_id": rev.ID.String(),
			"budget_id":   budget.ID.String(),
			"difference":  difference.String(),
			"new_amount":  in.NewAmount.String(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create revision: %w", err)
	}

	logBudget(budget).WithFields(log.Fields{
		"request_id":  in.RequestID,
		"new_amount":  in.NewAmount.String(),
		"revision_no": budget.RevisionNo,
	}).Info("revision recorded")
	s.publish(EventRevisionCreated, rev)
	return &rev, nil
}

// snapshot serializes a deep copy of the request and budget as they stand.
func snapshot(req *model.BudgetRequest, budget *model.Budget) (datatypes.JSON, error) {
	r := *req
	r.Budget = nil
	raw, err := json.Marshal(model.RevisionSnapshot{Request: r, Budget: *budget})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot ledger state: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// reductionPercentage keeps a supplied value, otherwise derives it from the
// original and new amounts.
func reductionPercentage(given *decimal.Decimal, original, next decimal.Decimal) decimal.Decimal {
	if given != nil {
		return given.Round(2)
	}
	if original.IsZero() {
		return decimal.Zero
	}
	return original.Sub(next).Div(original).Mul(decimal.NewFromInt(100)).Round(2)
}
