package repository

import (
	"context"

	"procurement/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RevisionRepository is append-only; revisions are never updated or deleted.
type RevisionRepository interface {
	Create(ctx context.Context, rev *model.BudgetRevision) error
	List(ctx context.Context, requestID *uuid.UUID, page, limit int) ([]model.BudgetRevision, int64, error)
}

type revisionRepository struct {
	db *gorm.DB
}

func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) Create(ctx context.Context, rev *model.BudgetRevision) error {
	return GetDB(ctx, r.db).Create(rev).Error
}

func (r *revisionRepository) List(ctx context.Context, requestID *uuid.UUID, page, limit int) ([]model.BudgetRevision, int64, error) {
	var revisions []model.BudgetRevision
	var total int64

	db := GetDB(ctx, r.db).Model(&model.BudgetRevision{})
	if requestID != nil {
		db = db.Where("request_id = ?", *requestID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&revisions).Error; err != nil {
		return nil, 0, err
	}

	return revisions, total, nil
}
