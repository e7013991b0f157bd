package repository

import (
	"context"

	"procurement/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RequestFilter struct {
	Status     string
	Department string
	BudgetID   *uuid.UUID
	Page       int
	Limit      int
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.BudgetRequest) error
	Update(ctx context.Context, req *model.BudgetRequest) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.BudgetRequest, error)
	// FindByIDForUpdate row-locks the request until the surrounding
	// transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.BudgetRequest, error)
	FindByIDWithBudget(ctx context.Context, id uuid.UUID) (*model.BudgetRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]model.BudgetRequest, int64, error)
	LastRequestNo(ctx context.Context, prefix string) (string, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.BudgetRequest) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(req).Error
}

func (r *requestRepository) Update(ctx context.Context, req *model.BudgetRequest) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(req).Error
}

// Delete removes the row and reports how many rows went away. Zero means a
// concurrent writer got there first.
func (r *requestRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.BudgetRequest{})
	return res.RowsAffected, res.Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BudgetRequest, error) {
	var req model.BudgetRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.BudgetRequest, error) {
	var req model.BudgetRequest
	if err := lockForUpdate(GetDB(ctx, r.db)).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDWithBudget(ctx context.Context, id uuid.UUID) (*model.BudgetRequest, error) {
	var req model.BudgetRequest
	if err := GetDB(ctx, r.db).Preload("Budget").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]model.BudgetRequest, int64, error) {
	var requests []model.BudgetRequest
	var total int64

	db := GetDB(ctx, r.db).Model(&model.BudgetRequest{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if filter.BudgetID != nil {
		db = db.Where("budget_id = ?", *filter.BudgetID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Preload("Budget").Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// LastRequestNo returns the highest request number starting with prefix, or ""
// when none exists yet.
func (r *requestRepository) LastRequestNo(ctx context.Context, prefix string) (string, error) {
	var requestNos []string
	err := GetDB(ctx, r.db).Model(&model.BudgetRequest{}).
		Where("request_no LIKE ?", prefix+"%").
		Order("LENGTH(request_no) desc").Order("request_no desc").
		Limit(1).
		Pluck("request_no", &requestNos).Error
	if err != nil || len(requestNos) == 0 {
		return "", err
	}
	return requestNos[0], nil
}
