package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Department is a directory entry budgets and requests are filed under.
type Department struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Code        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"code"`
	Description *string   `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Code == "" {
		d.Code = DepartmentCode(d.Name)
	}
	return nil
}

// DepartmentCode is the unique directory key for a department name. Names
// differing only in case or punctuation share a code.
func DepartmentCode(name string) string {
	if code := slug.Make(name); code != "" {
		return code
	}
	return strings.ToLower(strings.TrimSpace(name))
}
