package service

import (
	"context"
	"testing"

	"procurement/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBudget_InitialBalances(t *testing.T) {
	f := newFixture(t)

	b := f.createBudget(t, "1000", "IDR")

	assertAmount(t, "1000", b.RemainingAmount)
	assertAmount(t, "0", b.UsedAmount)
	assertAmount(t, "1000", b.TotalAmountIDR)
	assertAmount(t, "1000", b.RemainingAmountIDR)
	assert.True(t, b.IsActive)
	assertBalanced(t, f.reloadBudget(t, b.ID))
	assert.Contains(t, f.events.Events(), EventBudgetCreated)
}

func TestCreateBudget_ForeignCurrencyConvertsAtCreation(t *testing.T) {
	f := newFixture(t)

	b := f.createBudget(t, "100", "usd")

	assert.Equal(t, "USD", b.Currency)
	assertAmount(t, "15750", b.ExchangeRate)
	assertAmount(t, "1575000", b.TotalAmountIDR)
	assertAmount(t, "1575000", b.RemainingAmountIDR)
}

func TestCreateBudget_EnsuresDepartment(t *testing.T) {
	// GIVEN: an empty department directory
	// WHEN: two budgets are created for the same new department
	// THEN: exactly one directory entry exists
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.budgets.CreateBudget(ctx, CreateBudgetDTO{
			FiscalYear:     "2025",
			DepartmentName: "  Yard ",
			BudgetType:     model.BudgetTypeCapex,
			BudgetName:     "Cranes",
			TotalAmount:    amount("500"),
		})
		require.NoError(t, err)
	}

	depts, err := f.departments.ListDepartments(ctx)
	require.NoError(t, err)
	require.Len(t, depts, 1)
	assert.Equal(t, "Yard", depts[0].Name)
	assert.Equal(t, "yard", depts[0].Code)
}

func TestCreateBudget_MissingDepartmentIsValidationError(t *testing.T) {
	f := newFixture(t)

	_, err := f.budgets.CreateBudget(context.Background(), CreateBudgetDTO{
		FiscalYear:  "2025",
		BudgetType:  model.BudgetTypeOpex,
		BudgetName:  "Stationery",
		TotalAmount: amount("10"),
	})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "department_name", vErr.Field)
	assert.Contains(t, err.Error(), "failed to create budget")

	var count int64
	f.db.Model(&model.Budget{}).Count(&count)
	assert.Zero(t, count, "nothing persisted")
}

func TestCreateBudget_RejectsNonPositiveTotal(t *testing.T) {
	f := newFixture(t)

	_, err := f.budgets.CreateBudget(context.Background(), CreateBudgetDTO{
		FiscalYear:     "2025",
		DepartmentName: "IT",
		BudgetType:     model.BudgetTypeOpex,
		BudgetName:     "Licenses",
		TotalAmount:    decimal.Zero,
	})

	assert.True(t, IsValidation(err))
}

func TestUpdateBudget_TotalChangeKeepsUsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBudget(t, "1000", "IDR")
	r := f.createRequest(t, b.ID, "400")
	_, err := f.requests.SubmitRequest(ctx, r.ID.String())
	require.NoError(t, err)

	newTotal := amount("1500")
	updated, err := f.budgets.UpdateBudget(ctx, b.ID.String(), UpdateBudgetDTO{TotalAmount: &newTotal})
	require.NoError(t, err)

	assertAmount(t, "1500", updated.TotalAmount)
	assertAmount(t, "400", updated.UsedAmount)
	assertAmount(t, "1100", updated.RemainingAmount)
	assertAmount(t, "1500", updated.TotalAmountIDR)
	assertAmount(t, "1100", updated.RemainingAmountIDR)
	assertBalanced(t, f.reloadBudget(t, b.ID))
}

func TestUpdateBudget_CurrencyChangeDoesNotRetroConvert(t *testing.T) {
	// GIVEN: an IDR budget with IDR mirrors equal to native amounts
	// WHEN: its currency is switched to USD
	// THEN: the exchange rate is refreshed but stored mirrors stay as they were
	f := newFixture(t)
	b := f.createBudget(t, "1000", "IDR")

	usd := "USD"
	updated, err := f.budgets.UpdateBudget(context.Background(), b.ID.String(), UpdateBudgetDTO{Currency: &usd})
	require.NoError(t, err)

	assert.Equal(t, "USD", updated.Currency)
	assertAmount(t, "15750", updated.ExchangeRate)
	assertAmount(t, "1000", updated.TotalAmountIDR)
	assertAmount(t, "1000", updated.RemainingAmountIDR)
}

func TestUpdateBudget_SelectivePatch(t *testing.T) {
	f := newFixture(t)
	b := f.createBudget(t, "1000", "IDR")

	name := "Renamed"
	updated, err := f.budgets.UpdateBudget(context.Background(), b.ID.String(), UpdateBudgetDTO{BudgetName: &name})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.BudgetName)
	assert.Equal(t, b.FiscalYear, updated.FiscalYear)
	assertAmount(t, "1000", updated.TotalAmount)
}

func TestUpdateBudget_NotFound(t *testing.T) {
	f := newFixture(t)
	name := "x"

	_, err := f.budgets.UpdateBudget(context.Background(), uuid.NewString(), UpdateBudgetDTO{BudgetName: &name})

	assert.True(t, IsNotFound(err))
}

func TestDeleteBudget_HardDeleteWhenUnreferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBudget(t, "1000", "IDR")

	res, err := f.budgets.DeleteBudget(ctx, b.ID.String())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.SoftDeleted)

	_, err = f.budgets.GetBudget(ctx, b.ID.String())
	assert.True(t, IsNotFound(err))

	_, err = f.budgets.DeleteBudget(ctx, b.ID.String())
	assert.True(t, IsNotFound(err), "second delete reports not found")
}

func TestDeleteBudget_SoftDeleteWhenReferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBudget(t, "1000", "IDR")
	f.createRequest(t, b.ID, "10")

	res, err := f.budgets.DeleteBudget(ctx, b.ID.String())
	require.NoError(t, err)
	assert.True(t, res.SoftDeleted)

	stored := f.reloadBudget(t, b.ID)
	assert.False(t, stored.IsActive)

	list, err := f.budgets.ListBudgets(ctx, BudgetFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "inactive budgets are not listed")
}

func TestListBudgets_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createBudget(t, "1000", "IDR")
	_, err := f.budgets.CreateBudget(ctx, CreateBudgetDTO{
		FiscalYear:     "2026",
		DepartmentName: "Finance",
		BudgetType:     model.BudgetTypeCapex,
		BudgetName:     "Servers",
		TotalAmount:    amount("10"),
	})
	require.NoError(t, err)

	all, err := f.budgets.ListBudgets(ctx, BudgetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2026", all[0].FiscalYear, "newest fiscal year first")

	capex, err := f.budgets.ListBudgets(ctx, BudgetFilter{BudgetType: model.BudgetTypeCapex})
	require.NoError(t, err)
	require.Len(t, capex, 1)
	assert.Equal(t, "Finance", capex[0].DepartmentName)
}
