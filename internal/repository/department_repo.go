package repository

import (
	"context"

	"procurement/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	// CreateIfAbsent inserts unless a row with the same name or code exists.
	// It reports whether a row was inserted and never aborts the surrounding
	// transaction on a duplicate.
	CreateIfAbsent(ctx context.Context, dept *model.Department) (bool, error)
	FindByName(ctx context.Context, name string) (*model.Department, error)
	FindByCode(ctx context.Context, code string) (*model.Department, error)
	ListActive(ctx context.Context) ([]model.Department, error)
}

type departmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dept *model.Department) error {
	return GetDB(ctx, r.db).Create(dept).Error
}

func (r *departmentRepository) CreateIfAbsent(ctx context.Context, dept *model.Department) (bool, error) {
	res := GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(dept)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *departmentRepository) FindByCode(ctx context.Context, code string) (*model.Department, error) {
	var dept model.Department
	if err := GetDB(ctx, r.db).Where("code = ?", code).First(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) FindByName(ctx context.Context, name string) (*model.Department, error) {
	var dept model.Department
	if err := GetDB(ctx, r.db).Where("name = ?", name).First(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) ListActive(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	if err := GetDB(ctx, r.db).Where("is_active = ?", true).Order("name asc").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}
