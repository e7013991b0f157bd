package repository_test

import (
	"context"
	"testing"

	"procurement/internal/database"
	"procurement/internal/model"
	"procurement/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteConnection("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedBudget(t *testing.T, db *gorm.DB) *model.Budget {
	t.Helper()
	b := &model.Budget{
		FiscalYear:      "2025",
		DepartmentName:  "IT",
		BudgetType:      model.BudgetTypeOpex,
		BudgetName:      "Laptops",
		Currency:        model.CurrencyIDR,
		ExchangeRate:    decimal.NewFromInt(1),
		TotalAmount:     decimal.NewFromInt(100),
		RemainingAmount: decimal.NewFromInt(100),
		IsActive:        true,
	}
	require.NoError(t, repository.NewBudgetRepository(db).Create(context.Background(), b))
	return b
}

func seedRequest(t *testing.T, db *gorm.DB, budgetID uuid.UUID, no string) *model.BudgetRequest {
	t.Helper()
	r := &model.BudgetRequest{
		RequestNo:      no,
		RequesterName:  "Rina",
		Department:     "IT",
		RequestType:    model.RequestTypeItem,
		Quantity:       1,
		Currency:       model.CurrencyIDR,
		EstimatedTotal: decimal.NewFromInt(1),
		BudgetID:       budgetID,
		Status:         model.RequestStatusDraft,
	}
	require.NoError(t, repository.NewRequestRepository(db).Create(context.Background(), r))
	return r
}

func TestLastRequestNo_NumericOrderingPastThreeDigits(t *testing.T) {
	db := newTestDB(t)
	b := seedBudget(t, db)
	repo := repository.NewRequestRepository(db)
	ctx := context.Background()

	last, err := repo.LastRequestNo(ctx, "REQ/2025/01/")
	require.NoError(t, err)
	assert.Empty(t, last)

	seedRequest(t, db, b.ID, "REQ/2025/01/999")
	seedRequest(t, db, b.ID, "REQ/2025/01/1000")
	seedRequest(t, db, b.ID, "REQ/2025/02/001")

	last, err = repo.LastRequestNo(ctx, "REQ/2025/01/")
	require.NoError(t, err)
	assert.Equal(t, "REQ/2025/01/1000", last)
}

func TestRequestDelete_ReportsRowsAffected(t *testing.T) {
	db := newTestDB(t)
	b := seedBudget(t, db)
	r := seedRequest(t, db, b.ID, "REQ/2025/01/001")
	repo := repository.NewRequestRepository(db)
	ctx := context.Background()

	n, err := repo.Delete(ctx, r.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.Delete(ctx, r.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	b := seedBudget(t, db)
	tm := repository.NewTransactionManager(db)
	budgets := repository.NewBudgetRepository(db)
	ctx := context.Background()

	err := tm.RunInTx(ctx, func(txCtx context.Context) error {
		locked, err := budgets.FindByIDForUpdate(txCtx, b.ID)
		require.NoError(t, err)
		locked.RemainingAmount = decimal.Zero
		require.NoError(t, budgets.Update(txCtx, locked))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	stored, err := budgets.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemainingAmount.Equal(decimal.NewFromInt(100)))

	count, err := budgets.CountRequests(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRunInTx_NestedJoinsOuterTransaction(t *testing.T) {
	// GIVEN: an outer transaction that already wrote a budget
	// WHEN: a nested call fails
	// THEN: only the nested work is undone
	db := newTestDB(t)
	tm := repository.NewTransactionManager(db)
	budgets := repository.NewBudgetRepository(db)
	ctx := context.Background()

	var kept, dropped *model.Budget
	err := tm.RunInTx(ctx, func(txCtx context.Context) error {
		_, ok := repository.InTx(txCtx)
		require.True(t, ok)

		kept = &model.Budget{FiscalYear: "2025", DepartmentName: "IT", BudgetType: model.BudgetTypeOpex, BudgetName: "kept", Currency: "IDR", IsActive: true}
		require.NoError(t, budgets.Create(txCtx, kept))

		nestedErr := tm.RunInTx(txCtx, func(innerCtx context.Context) error {
			dropped = &model.Budget{FiscalYear: "2025", DepartmentName: "IT", BudgetType: model.BudgetTypeOpex, BudgetName: "dropped", Currency: "IDR", IsActive: true}
			require.NoError(t, budgets.Create(innerCtx, dropped))
			return assert.AnError
		})
		assert.ErrorIs(t, nestedErr, assert.AnError)
		return nil
	})
	require.NoError(t, err)

	_, err = budgets.FindByID(ctx, kept.ID)
	assert.NoError(t, err)
	_, err = budgets.FindByID(ctx, dropped.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindByIDForUpdate_LocksRowsOnPostgres(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=procurement dbname=procurement sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	var statements []string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	}))

	ctx := context.Background()
	_, err = repository.NewRequestRepository(db).FindByIDForUpdate(ctx, uuid.New())
	require.NoError(t, err)
	_, err = repository.NewBudgetRepository(db).FindByIDForUpdate(ctx, uuid.New())
	require.NoError(t, err)

	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], "budget_requests")
	assert.Contains(t, statements[0], "FOR UPDATE")
	assert.Contains(t, statements[1], "FOR UPDATE")
}

func TestCreateIfAbsent_SkipsDuplicateNameOrCode(t *testing.T) {
	// GIVEN: a department "IT" created inside a transaction
	// WHEN: "IT" and "It" are inserted again in the same transaction
	// THEN: both are skipped and the transaction still commits
	db := newTestDB(t)
	tm := repository.NewTransactionManager(db)
	depts := repository.NewDepartmentRepository(db)
	ctx := context.Background()

	err := tm.RunInTx(ctx, func(txCtx context.Context) error {
		created, err := depts.CreateIfAbsent(txCtx, &model.Department{Name: "IT", IsActive: true})
		require.NoError(t, err)
		assert.True(t, created)

		for _, name := range []string{"IT", "It"} {
			created, err = depts.CreateIfAbsent(txCtx, &model.Department{Name: name, IsActive: true})
			require.NoError(t, err)
			assert.False(t, created, name)
		}

		created, err = depts.CreateIfAbsent(txCtx, &model.Department{Name: "HSE", IsActive: true})
		require.NoError(t, err)
		assert.True(t, created)
		return nil
	})
	require.NoError(t, err)

	found, err := depts.FindByCode(ctx, "it")
	require.NoError(t, err)
	assert.Equal(t, "IT", found.Name)

	all, err := depts.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
