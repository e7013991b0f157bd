package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"procurement/internal/currency"
	"procurement/internal/model"
	"procurement/internal/repository"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// --- DTOs ---

type CreateBudgetDTO struct {
	FiscalYear     string           `json:"fiscal_year" validate:"required,max=50"`
	DepartmentName string           `json:"department_name" validate:"required,max=100"`
	BudgetType     string           `json:"budget_type" validate:"required,oneof=CAPEX OPEX"`
	BudgetCode     *string          `json:"budget_code"`
	BudgetName     string           `json:"budget_name" validate:"required,max=255"`
	Description    *string          `json:"description"`
	BudgetOwner    *string          `json:"budget_owner"`
	PeriodStart    *time.Time       `json:"period_start"`
	PeriodEnd      *time.Time       `json:"period_end"`
	Currency       string           `json:"currency" validate:"omitempty,alpha,len=3"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	ReservedAmount *decimal.Decimal `json:"reserved_amount"`
}

// UpdateBudgetDTO is a selective patch; nil fields are left untouched.
type UpdateBudgetDTO struct {
	FiscalYear     *string          `json:"fiscal_year" validate:"omitempty,max=50"`
	DepartmentName *string          `json:"department_name" validate:"omitempty,max=100"`
	BudgetType     *string          `json:"budget_type" validate:"omitempty,oneof=CAPEX OPEX"`
	BudgetCode     *string          `json:"budget_code"`
	BudgetName     *string          `json:"budget_name" validate:"omitempty,max=255"`
	Description    *string          `json:"description"`
	BudgetOwner    *string          `json:"budget_owner"`
	PeriodStart    *time.Time       `json:"period_start"`
	PeriodEnd      *time.Time       `json:"period_end"`
	Currency       *string          `json:"currency" validate:"omitempty,alpha,len=3"`
	TotalAmount    *decimal.Decimal `json:"total_amount"`
	IsActive       *bool            `json:"is_active"`
}

type BudgetFilter = repository.BudgetFilter

// --- Interface ---

type BudgetService interface {
	ListBudgets(ctx context.Context, filter BudgetFilter) ([]model.Budget, error)
	GetBudget(ctx context.Context, id string) (*model.Budget, error)
	CreateBudget(ctx context.Context, req CreateBudgetDTO) (*model.Budget, error)
	UpdateBudget(ctx context.Context, id string, req UpdateBudgetDTO) (*model.Budget, error)
	DeleteBudget(ctx context.Context, id string) (DeleteResult, error)
}

type budgetService struct {
	Ledger
	departments DepartmentService
}

func NewBudgetService(ledger Ledger, departments DepartmentService) BudgetService {
	return &budgetService{Ledger: ledger, departments: departments}
}

// --- Implementation ---

func (s *budgetService) ListBudgets(ctx context.Context, filter BudgetFilter) ([]model.Budget, error) {
	budgets, err := s.Budgets.ListActive(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

func (s *budgetService) GetBudget(ctx context.Context, id string) (*model.Budget, error) {
	budgetID, err := parseID("budget", id)
	if err != nil {
		return nil, err
	}
	budget, err := s.Budgets.FindByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", notFoundOr(err, "budget", id))
	}
	return budget, nil
}

func (s *budgetService) CreateBudget(ctx context.Context, req CreateBudgetDTO) (*model.Budget, error) {
	req.DepartmentName = strings.TrimSpace(req.DepartmentName)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", validationFrom(err))
	}
	if !req.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("failed to create budget: %w", &ValidationError{Field: "total_amount", Reason: "must be greater than 0"})
	}
	reserved := decimal.Zero
	if req.ReservedAmount != nil {
		if req.ReservedAmount.IsNegative() {
			return nil, fmt.Errorf("failed to create budget: %w", &ValidationError{Field: "reserved_amount", Reason: "must not be negative"})
		}
		reserved = *req.ReservedAmount
	}

	code := currency.Normalize(req.Currency)
	budget := model.Budget{
		FiscalYear:         req.FiscalYear,
		DepartmentName:     req.DepartmentName,
		BudgetType:         req.BudgetType,
		BudgetCode:         req.BudgetCode,
		BudgetName:         req.BudgetName,
		Description:        req.Description,
		BudgetOwner:        req.BudgetOwner,
		PeriodStart:        req.PeriodStart,
		PeriodEnd:          req.PeriodEnd,
		Currency:           code,
		ExchangeRate:       s.Rates.Rate(code),
		TotalAmount:        req.TotalAmount,
		TotalAmountIDR:     s.toIDR(req.TotalAmount, code),
		ReservedAmount:     reserved,
		ReservedAmountIDR:  s.toIDR(reserved, code),
		UsedAmount:         decimal.Zero,
		UsedAmountIDR:      decimal.Zero,
		RemainingAmount:    req.TotalAmount,
		RemainingAmountIDR: s.toIDR(req.TotalAmount, code),
		IsActive:           true,
	}

	err := s.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, _, err := s.departments.EnsureDepartment(txCtx, budget.DepartmentName); err != nil {
			return err
		}
		if err := s.Budgets.Create(txCtx, &budget); err != nil {
			return err
		}
		return s.audit(txCtx, model.ActionCreateBudget, budget.ID.String(), budget.BudgetName, map[string]interface{}{
			"fiscal_year":  budget.FiscalYear,
			"department":   budget.DepartmentName,
			"currency":     budget.Currency,
			"total_amount": budget.TotalAmount.String(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	logBudget(&budget).Info("budget created")
	s.publish(EventBudgetCreated, budget)
	return &budget, nil
}

func (s *budgetService) UpdateBudget(ctx context.Context, id string, req UpdateBudgetDTO) (*model.Budget, error) {
	budgetID, err := parseID("budget", id)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", validationFrom(err))
	}
	if req.TotalAmount != nil && req.TotalAmount.IsNegative() {
		return nil, fmt.Errorf("failed to update budget: %w", &ValidationError{Field: "total_amount", Reason: "must not be negative"})
	}
	if req.DepartmentName != nil && strings.TrimSpace(*req.DepartmentName) == "" {
		return nil, fmt.Errorf("failed to update budget: %w", &ValidationError{Field: "department_name", Reason: "is required"})
	}

	unlock := s.Locker.Lock(budgetID)
	defer unlock()

	var budget *model.Budget
	err = s.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		budget, findErr = s.Budgets.FindByIDForUpdate(txCtx, budgetID)
		if findErr != nil {
			return notFoundOr(findErr, "budget", id)
		}

		changes := s.applyPatch(budget, req)
		if req.DepartmentName != nil {
			if _, _, err := s.departments.EnsureDepartment(txCtx, budget.DepartmentName); err != nil {
				return err
			}
		}

		if err := s.Budgets.Update(txCtx, budget); err != nil {
			return err
		}
		return s.audit(txCtx, model.ActionUpdateBudget, budget.ID.String(), budget.BudgetName, changes)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}

	logBudget(budget).Info("budget updated")
	s.publish(EventBudgetUpdated, budget)
	return budget, nil
}

// applyPatch copies the provided fields onto b and returns what changed.
// A currency change only refreshes the exchange rate; stored balances are not
// retro-converted. A total change re-derives remaining from the untouched
// used amount.
func (s *budgetService) applyPatch(b *model.Budget, req UpdateBudgetDTO) map[string]interface{} {
	changes := map[string]interface{}{}

	if req.FiscalYear != nil {
		b.FiscalYear = *req.FiscalYear
		changes["fiscal_year"] = b.FiscalYear
	}
	if req.DepartmentName != nil {
		b.DepartmentName = strings.TrimSpace(*req.DepartmentName)
		changes["department_name"] = b.DepartmentName
	}
	if req.BudgetType != nil {
		b.BudgetType = *req.BudgetType
		changes["budget_type"] = b.BudgetType
	}
	if req.BudgetCode != nil {
		b.BudgetCode = req.BudgetCode
		changes["budget_code"] = *req.BudgetCode
	}
	if req.BudgetName != nil {
		b.BudgetName = *req.BudgetName
		changes["budget_name"] = b.BudgetName
	}
	if req.Description != nil {
		b.Description = req.Description
	}
	if req.BudgetOwner != nil {
		b.BudgetOwner = req.BudgetOwner
		changes["budget_owner"] = *req.BudgetOwner
	}
	if req.PeriodStart != nil {
		b.PeriodStart = req.PeriodStart
	}
	if req.PeriodEnd != nil {
		b.PeriodEnd = req.PeriodEnd
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
		changes["is_active"] = b.IsActive
	}

	if req.Currency != nil {
		code := currency.Normalize(*req.Currency)
		if code != b.Currency {
			b.Currency = code
			b.ExchangeRate = s.Rates.Rate(code)
			changes["currency"] = code
			changes["exchange_rate"] = b.ExchangeRate.String()
		}
	}

	if req.TotalAmount != nil && !req.TotalAmount.Equal(b.TotalAmount) {
		changes["previous_total"] = b.TotalAmount.String()
		b.TotalAmount = *req.TotalAmount
		b.TotalAmountIDR = s.toIDR(b.TotalAmount, b.Currency)
		b.RemainingAmount = b.TotalAmount.Sub(b.UsedAmount)
		b.RemainingAmountIDR = s.toIDR(b.RemainingAmount, b.Currency)
		changes["total_amount"] = b.TotalAmount.String()
	}

	return changes
}

// DeleteBudget hard-deletes an unreferenced budget. A budget any request
// points at is deactivated instead.
func (s *budgetService) DeleteBudget(ctx context.Context, id string) (DeleteResult, error) {
	budgetID, err := parseID("budget", id)
	if err != nil {
		return DeleteResult{}, err
	}

	unlock := s.Locker.Lock(budgetID)
	defer unlock()

	var result DeleteResult
	err = s.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		budget, findErr := s.Budgets.FindByIDForUpdate(txCtx, budgetID)
		if findErr != nil {
			return notFoundOr(findErr, "budget", id)
		}

		refs, err := s.Budgets.CountRequests(txCtx, budgetID)
		if err != nil {
			return err
		}

		if refs > 0 {
			budget.IsActive = false
			if err := s.Budgets.Update(txCtx, budget); err != nil {
				return err
			}
			result = DeleteResult{
				Success:     true,
				Message:     fmt.Sprintf("Budget has %d request(s) and was deactivated", refs),
				SoftDeleted: true,
			}
			return s.audit(txCtx, model.ActionDeactivateBudget, budget.ID.String(), budget.BudgetName, map[string]interface{}{
				"request_count": refs,
			})
		}

		affected, err := s.Budgets.Delete(txCtx, budgetID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return &NotFoundError{Entity: "budget", ID: id}
		}
		result = DeleteResult{Success: true, Message: "Budget deleted successfully"}
		return s.audit(txCtx, model.ActionDeleteBudget, budget.ID.String(), budget.BudgetName, nil)
	})
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to delete budget: %w", err)
	}

	log.WithFields(log.Fields{"budget_id": id, "soft": result.SoftDeleted}).Info("budget deleted")
	s.publish(EventBudgetDeleted, map[string]interface{}{"id": id, "soft_deleted": result.SoftDeleted})
	return result, nil
}
