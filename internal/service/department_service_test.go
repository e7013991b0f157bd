package service

import (
	"context"
	"testing"

	"procurement/internal/model"
	"procurement/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateDepartment_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.departments.CreateDepartment(ctx, CreateDepartmentDTO{Name: "QA & QC"})
	require.NoError(t, err)
	assert.Equal(t, "qa-and-qc", d.Code)

	_, err = f.departments.CreateDepartment(ctx, CreateDepartmentDTO{Name: "QA & QC"})
	assert.True(t, IsConflict(err))

	_, err = f.departments.CreateDepartment(ctx, CreateDepartmentDTO{Name: "  "})
	assert.True(t, IsValidation(err))
}

func TestSeedDepartments_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.departments.CreateDepartment(ctx, CreateDepartmentDTO{Name: "Finance"})
	require.NoError(t, err)

	first, err := f.departments.SeedDepartments(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultDepartments)-1, first.Created)
	assert.Equal(t, 1, first.Skipped)

	second, err := f.departments.SeedDepartments(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Created)

	depts, err := f.departments.ListDepartments(ctx)
	require.NoError(t, err)
	assert.Len(t, depts, len(DefaultDepartments))
}

func TestCreateBudget_DepartmentVariantsShareEntry(t *testing.T) {
	// GIVEN: budgets filed under "IT" and "PT Rajawali"
	// WHEN: later budgets spell them "It" and "PT. Rajawali"
	// THEN: they succeed and reuse the existing directory entries
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"IT", "It", " it ", "PT Rajawali", "PT. Rajawali", "pt rajawali"} {
		_, err := f.budgets.CreateBudget(ctx, CreateBudgetDTO{
			FiscalYear:     "2025",
			DepartmentName: name,
			BudgetType:     model.BudgetTypeOpex,
			BudgetName:     "Budget " + name,
			TotalAmount:    amount("100"),
		})
		require.NoError(t, err, name)
	}

	depts, err := f.departments.ListDepartments(ctx)
	require.NoError(t, err)
	require.Len(t, depts, 2)
	assert.Equal(t, "IT", depts[0].Name)
	assert.Equal(t, "PT Rajawali", depts[1].Name)
}

// missingDepartments hides existing rows from the first lookup, as if a
// concurrent transaction inserted the department after it ran.
type missingDepartments struct {
	repository.DepartmentRepository
	misses int
}

func (r *missingDepartments) FindByName(ctx context.Context, name string) (*model.Department, error) {
	if r.misses > 0 {
		r.misses--
		return nil, gorm.ErrRecordNotFound
	}
	return r.DepartmentRepository.FindByName(ctx, name)
}

func (r *missingDepartments) FindByCode(ctx context.Context, code string) (*model.Department, error) {
	if r.misses > 0 {
		r.misses--
		return nil, gorm.ErrRecordNotFound
	}
	return r.DepartmentRepository.FindByCode(ctx, code)
}

func TestEnsureDepartment_LostInsertRaceReusesRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing, err := f.departments.CreateDepartment(ctx, CreateDepartmentDTO{Name: "Warehouse"})
	require.NoError(t, err)

	repo := &missingDepartments{DepartmentRepository: repository.NewDepartmentRepository(f.db), misses: 2}
	svc := NewDepartmentService(f.ledger.Tx, repo, f.ledger.Audit, "tester")

	var got *model.Department
	var created bool
	err = f.ledger.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		var ensureErr error
		got, created, ensureErr = svc.EnsureDepartment(txCtx, "Warehouse")
		return ensureErr
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, got.ID)

	depts, err := f.departments.ListDepartments(ctx)
	require.NoError(t, err)
	assert.Len(t, depts, 1)
}
