package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"procurement/internal/currency"
	"procurement/internal/model"
	"procurement/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRequestDTO struct {
	RequesterName  string           `json:"requester_name" validate:"required,max=100"`
	RequesterBadge string           `json:"requester_badge" validate:"max=50"`
	Department     string           `json:"department" validate:"required,max=100"`
	RequestType    string           `json:"request_type" validate:"required,oneof=ITEM SERVICE"`
	ItemName       string           `json:"item_name" validate:"max=255"`
	Specification  string           `json:"specification"`
	Quantity       int              `json:"quantity" validate:"min=1"`
	Currency       string           `json:"currency" validate:"omitempty,alpha,len=3"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	EstimatedTotal *decimal.Decimal `json:"estimated_total"`
	BudgetID       string           `json:"budget_id" validate:"required,uuid"`
	Notes          *string          `json:"notes"`
}

type RequestFilter struct {
	Status     string
	Department string
	BudgetID   string
	Page       int
	Limit      int
}

// Procurement routes an approved request takes: a service request or a
// material request.
const (
	RouteSR = "SR"
	RouteMR = "MR"
)

const requestNoAttempts = 3

// --- Interface ---

type RequestService interface {
	ListRequests(ctx context.Context, filter RequestFilter) ([]model.BudgetRequest, int64, error)
	GetRequest(ctx context.Context, id string) (*model.BudgetRequest, error)
	CreateRequest(ctx context.Context, req CreateRequestDTO) (*model.BudgetRequest, error)
	// SubmitRequest reserves funds when the budget can cover the estimate and
	// rejects the request otherwise. A rejection is a successful outcome.
	SubmitRequest(ctx context.Context, id string) (*model.BudgetRequest, error)
	DeleteRequest(ctx context.Context, id string) (DeleteResult, error)
	ChooseSRMR(ctx context.Context, id string, route string) (*model.BudgetRequest, error)
	CompleteRequest(ctx context.Context, id string) (*model.BudgetRequest, error)
}

type requestService struct {
	Ledger
	now func() time.Time
}

func NewRequestService(ledger Ledger) RequestService {
	return &requestService{Ledger: ledger, now: time.Now}
}

// --- Implementation ---

func (s *requestService) ListRequests(ctx context.Context, filter RequestFilter) ([]model.BudgetRequest, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.RequestFilter{
		Status:     filter.Status,
		Department: filter.Department,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	if filter.BudgetID != "" {
		budgetID, err := uuid.Parse(filter.BudgetID)
		if err != nil {
			return nil, 0, &ValidationError{Field: "budget_id", Reason: "must be a valid UUID"}
		}
		repoFilter.BudgetID = &budgetID
	}

	requests, total, err := s.Requests.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, total, nil
}

func (s *requestService) GetRequest(ctx context.Context, id string) (*model.BudgetRequest, error) {
	reqID, err := parseID("request", id)
	if err != nil {
		return nil, err
	}
	req, err := s.Requests.FindByIDWithBudget(ctx, reqID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", notFoundOr(err, "request", id))
	}
	return req, nil
}

func (s *requestService) CreateRequest(ctx context.Context, in CreateRequestDTO) (*model.BudgetRequest, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", validationFrom(err))
	}
	if in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("failed to create request: %w", &ValidationError{Field: "unit_price", Reason: "must not be negative"})
	}

	total := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
	if in.EstimatedTotal != nil {
		total = *in.EstimatedTotal
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("failed to create request: %w", &ValidationError{Field: "estimated_total", Reason: "must be greater than 0"})
	}

	budgetID := uuid.MustParse(in.BudgetID)
	req := model.BudgetRequest{
		RequesterName:     in.RequesterName,
		RequesterBadge:    in.RequesterBadge,
		Department:        in.Department,
		RequestType:       in.RequestType,
		ItemName:          in.ItemName,
		Specification:     in.Specification,
		Quantity:          in.Quantity,
		UnitPrice:         in.UnitPrice,
		EstimatedTotal:    total,
		BudgetID:          budgetID,
		Status:            model.RequestStatusDraft,
		Notes:             in.Notes,
	}

	var err error
	for attempt := 1; attempt <= requestNoAttempts; attempt++ {
		req.ID = uuid.Nil
		err = s.Tx.RunInTx(ctx, func(txCtx context.Context) error {
			budget, findErr := s.Budgets.FindByID(txCtx, budgetID)
			if findErr != nil {
				return notFoundOr(findErr, "budget", in.BudgetID)
			}
			if !budget.IsActive {
				return &ConflictError{Reason: "budget is inactive"}
			}
			// amounts are compared against the budget natively, so they must
			// share its currency
			code := budget.Currency
			if in.Currency != "" {
				code = currency.Normalize(in.Currency)
			}
			if code != budget.Currency {
				return &ValidationError{Field: "currency", Reason: fmt.Sprintf("must match budget currency %s", budget.Currency)}
			}
			req.BudgetType = budget.BudgetType
			req.Currency = code
			req.ExchangeRate = s.Rates.Rate(code)
			req.UnitPriceIDR = s.toIDR(in.UnitPrice, code)
			req.EstimatedTotalIDR = s.toIDR(total, code)

			no, err := s.nextRequestNo(txCtx)
			if err != nil {
				return err
			}
			req.RequestNo = no

			if err := s.Requests.Create(txCtx, &req); err != nil {
				return err
			}
			return s.audit(txCtx, model.ActionCreateRequest, req.ID.String(), req.RequestNo, map[string]interface{}{
				"budget_id":       req.BudgetID.String(),
				"estimated_total": req.EstimatedTotal.String(),
				"currency":        req.Currency,
			})
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		log.WithField("attempt", attempt).Warn("request number collision, retrying")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.WithFields(log.Fields{"request_id": req.ID.String(), "request_no": req.RequestNo}).Info("request created")
	s.publish(EventRequestCreated, req)
	return &req, nil
}

// nextRequestNo allocates REQ/YYYY/MM/NNN, continuing this month's sequence.
func (s *requestService) nextRequestNo(ctx context.Context) (string, error) {
	now := s.now()
	prefix := fmt.Sprintf("REQ/%d/%02d/", now.Year(), int(now.Month()))

	last, err := s.Requests.LastRequestNo(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to read last request number: %w", err)
	}

	seq := 1
	if last != "" {
		n, convErr := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if convErr == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

func submittable(status string) bool {
	switch status {
	case model.RequestStatusDraft, model.RequestStatusSubmitted, model.RequestStatusBudgetRejected:
		return true
	}
	return false
}

func (s *requestService) SubmitRequest(ctx context.Context, id string) (*model.BudgetRequest, error) {
	reqID, err := parseID("request", id)
	if err != nil {
		return nil, err
	}

	// the owning budget decides which lock to take
	current, err := s.Requests.FindByID(ctx, reqID)
	if err != nil {
		return nil, fmt.Errorf("failed to submit request: %w", notFoundOr(err, "request", id))
	}

	unlock := s.Locker.Lock(current.BudgetID)
	defer unlock()

	var (
		req      *model.BudgetRequest
		budget   *model.Budget
		approved bool
	)
	err = s.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		// request row first, then budget row, in every ledger transaction
		var findErr error
		req, findErr = s.Requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return notFoundOr(findErr, "request", id)
		}
		if !submittable(req.Status) {
			return &ConflictError{Reason: fmt.Sprintf("request %s is %s and cannot be submitted", req.RequestNo, req.Status)}
		}

		budget, findErr = s.Budgets.FindByIDForUpdate(txCtx, req.BudgetID)
		if findErr != nil {
			return notFoundOr(findErr, "budget", req.BudgetID.String())
		}
		if !budget.IsActive {
			return &ConflictError{Reason: "budget is inactive"}
		}

		approved = budget.RemainingAmount.GreaterThanOrEqual(req.EstimatedTotal)
		if approved {
			deltaIDR := s.toIDR(req.EstimatedTotal, budget.Currency)

			budget.RemainingAmount = budget.RemainingAmount.Sub(req.EstimatedTotal)
			budget.UsedAmount = budget.UsedAmount.Add(req.EstimatedTotal)
			budget.RemainingAmountIDR = budget.RemainingAmountIDR.Sub(deltaIDR)
			budget.UsedAmountIDR = budget.UsedAmountIDR.Add(deltaIDR)
			if err := s.Budgets.Update(txCtx, budget); err != nil {
				return err
			}

			now := s.now()
			req.Status = model.RequestStatusBudgetApproved
			req.SubmittedAt = &now
			req.ReservedAmount = req.EstimatedTotal
			req.ReservedAmountIDR = deltaIDR
		} else {
			note := fmt.Sprintf("Insufficient budget. Remaining: %s %s", budget.Currency, budget.RemainingAmount.StringFixed(2))
			req.Status = model.RequestStatusBudgetRejected
			req.Notes = &note
		}

		if err := s.Requests.Update(txCtx, req); err != nil {
			return err
		}

		action := model.ActionRejectRequest
		if approved {
			action = model.ActionApproveRequest
		}
		return s.audit(txCtx, action, req.ID.String(), req.RequestNo, map[string]interface{}{
			"budget_id":       budget.ID.String(),
			"estimated_total": req.EstimatedTotal.String(),
			"remaining":       budget.RemainingAmount.String(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit request: %w", err)
	}

	entry := logBudget(budget).WithField("request_id", req.ID.String())
	if approved {
		entry.Info("budget approved")
	} else {
		entry.Info("request rejected: insufficient budget")
	}
	s.publish(EventRequestSubmitted, req)
	return req, nil
}

// DeleteRequest returns any reservation to the budget, then removes the row.
// Approved requests hold committed spend and must be revised instead.
func (s *requestService) DeleteRequest(ctx context.Context, id string) (DeleteResult, error) {
	reqID, err := parseID("request", id)
	if err != nil {
		return DeleteResult{}, err
	}

	current, err := s.Requests.FindByID(ctx, reqID)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to delete request: %w", notFoundOr(err, "request", id))
	}
	if current.Status == model.RequestStatusBudgetApproved {
		return DeleteResult{}, fmt.Errorf("failed to delete request: %w", approvedConflict(current))
	}

	unlock := s.Locker.Lock(current.BudgetID)
	defer unlock()

	var released decimal.Decimal
	err = s.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.Requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return notFoundOr(findErr, "request", id)
		}
		if req.Status == model.RequestStatusBudgetApproved {
			return approvedConflict(req)
		}

		if req.HasReservation() {
			budget, findErr := s.Budgets.FindByIDForUpdate(txCtx, req.BudgetID)
			if findErr != nil {
				return notFoundOr(findErr, "budget", req.BudgetID.String())
			}

			// stored IDR reservation, not a fresh conversion
			budget.RemainingAmount = budget.RemainingAmount.Add(req.ReservedAmount)
			budget.UsedAmount = budget.UsedAmount.Sub(req.ReservedAmount)
			budget.RemainingAmountIDR = budget.RemainingAmountIDR.Add(req.ReservedAmountIDR)
			budget.UsedAmountIDR = budget.UsedAmountIDR.Sub(req.ReservedAmountIDR)
			if err := s.Budgets.Update(txCtx, budget); err != nil {
				return err
			}
			released = req.ReservedAmount
			logBudget(budget).WithField("request_id", id).Info("reservation released")
		}

		affected, err := s.Requests.Delete(txCtx, reqID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return &NotFoundError{Entity: "request", ID: id}
		}

		return s.audit(txCtx, model.ActionDeleteRequest, req.ID.String(), req.RequestNo, map[string]interface{}{
			"budget_id": req.BudgetID.String(),
			"status":    req.Status,
			"released":  released.String(),
		})
	})
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to delete request: %w", err)
	}

	s.publish(EventRequestDeleted, map[string]interface{}{"id": id, "released": released.String()})
	return DeleteResult{Success: true, Message: "Request deleted successfully"}, nil
}

func approvedConflict(req *model.BudgetRequest) error {
	return &ConflictError{Reason: fmt.Sprintf("request %s is approved; revise it instead of deleting", req.RequestNo)}
}

// ChooseSRMR moves an approved request onto the service (SR) or material (MR)
// route. The reservation stays in place.
func (s *requestService) ChooseSRMR(ctx context.Context, id string, route string) (*model.BudgetRequest, error) {
	route = strings.ToUpper(route)
	var requestType string
	switch route {
	case RouteSR:
		requestType = model.RequestTypeService
	case RouteMR:
		requestType = model.RequestTypeItem
	default:
		return nil, &ValidationError{Field: "tipe", Reason: "must be one of SR, MR"}
	}

	req, err := s.transition(ctx, id, model.RequestStatusBudgetApproved, model.RequestStatusWaitingSRMR, model.ActionChooseSRMR, func(r *model.BudgetRequest) {
		r.RequestType = requestType
	})
	if err != nil {
		return nil, fmt.Errorf("failed to choose SR/MR: %w", err)
	}
	return req, nil
}

func (s *requestService) CompleteRequest(ctx context.Context, id string) (*model.BudgetRequest, error) {
	req, err := s.transition(ctx, id, model.RequestStatusWaitingSRMR, model.RequestStatusCompleted, model.ActionCompleteRequest, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to complete request: %w", err)
	}
	return req, nil
}

// transition moves a request between non-financial states under its budget lock.
func (s *requestService) transition(ctx context.Context, id, from, to, action string, mutate func(*model.BudgetRequest)) (*model.BudgetRequest, error) {
	reqID, err := parseID("request", id)
	if err != nil {
		return nil, err
	}
	current, err := s.Requests.FindByID(ctx, reqID)
	if err != nil {
		return nil, notFoundOr(err, "request", id)
	}

	unlock := s.Locker.Lock(current.BudgetID)
	defer unlock()

	var req *model.BudgetRequest
	err = s.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		req, findErr = s.Requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return notFoundOr(findErr, "request", id)
		}
		if req.Status != from {
			return &ConflictError{Reason: fmt.Sprintf("request %s is %s, expected %s", req.RequestNo, req.Status, from)}
		}
		req.Status = to
		if mutate != nil {
			mutate(req)
		}
		if err := s.Requests.Update(txCtx, req); err != nil {
			return err
		}
		return s.audit(txCtx, action, req.ID.String(), req.RequestNo, map[string]interface{}{
			"from":         from,
			"to":           to,
			"request_type": req.RequestType,
		})
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"request_id": id, "status": to}).Info("request status changed")
	s.publish(EventRequestUpdated, req)
	return req, nil
}
