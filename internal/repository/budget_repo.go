package repository

import (
	"context"

	"procurement/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BudgetFilter struct {
	FiscalYear     string
	DepartmentName string
	BudgetType     string
}

type BudgetRepository interface {
	Create(ctx context.Context, budget *model.Budget) error
	Update(ctx context.Context, budget *model.Budget) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Budget, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Budget, error)
	ListActive(ctx context.Context, filter BudgetFilter) ([]model.Budget, error)
	CountRequests(ctx context.Context, budgetID uuid.UUID) (int64, error)
}

type budgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Create(ctx context.Context, budget *model.Budget) error {
	return GetDB(ctx, r.db).Create(budget).Error
}

func (r *budgetRepository) Update(ctx context.Context, budget *model.Budget) error {
	return GetDB(ctx, r.db).Save(budget).Error
}

// Delete hard-deletes the row and reports how many rows went away.
func (r *budgetRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Budget{})
	return res.RowsAffected, res.Error
}

func (r *budgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Budget, error) {
	var budget model.Budget
	if err := GetDB(ctx, r.db).First(&budget, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

// FindByIDForUpdate takes a row lock for the rest of the surrounding transaction.
func (r *budgetRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Budget, error) {
	var budget model.Budget
	if err := lockForUpdate(GetDB(ctx, r.db)).First(&budget, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepository) ListActive(ctx context.Context, filter BudgetFilter) ([]model.Budget, error) {
	var budgets []model.Budget

	db := GetDB(ctx, r.db).Where("is_active = ?", true)
	if filter.FiscalYear != "" {
		db = db.Where("fiscal_year = ?", filter.FiscalYear)
	}
	if filter.DepartmentName != "" {
		db = db.Where("department_name = ?", filter.DepartmentName)
	}
	if filter.BudgetType != "" {
		db = db.Where("budget_type = ?", filter.BudgetType)
	}

	if err := db.Order("fiscal_year desc").Order("department_name asc").Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

func (r *budgetRepository) CountRequests(ctx context.Context, budgetID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.BudgetRequest{}).Where("budget_id = ?", budgetID).Count(&count).Error
	return count, err
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects that support row locks.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
