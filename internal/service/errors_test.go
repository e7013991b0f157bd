package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestErrorTaxonomy_Unwraps(t *testing.T) {
	nf := fmt.Errorf("failed to submit request: %w", &NotFoundError{Entity: "budget", ID: "42"})
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsConflict(nf))
	assert.Equal(t, "failed to submit request: budget not found: 42", nf.Error())

	assert.True(t, IsConflict(&ConflictError{Reason: "approved"}))
	assert.True(t, IsValidation(&ValidationError{Field: "x", Reason: "is required"}))
	assert.Equal(t, "x: is required", (&ValidationError{Field: "x", Reason: "is required"}).Error())
}

func TestNotFoundOr_TranslatesGormMiss(t *testing.T) {
	assert.True(t, IsNotFound(notFoundOr(gorm.ErrRecordNotFound, "request", "1")))

	other := fmt.Errorf("boom")
	assert.Equal(t, other, notFoundOr(other, "request", "1"))
}

func TestValidationFrom_UsesJSONFieldNames(t *testing.T) {
	err := validationFrom(validate.Struct(CreateBudgetDTO{FiscalYear: "2025", BudgetType: "CAPEX", BudgetName: "x"}))

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "department_name", vErr.Field)
	assert.Equal(t, "is required", vErr.Reason)
}
