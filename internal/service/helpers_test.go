package service

import (
	"context"
	"sync"
	"testing"

	"procurement/internal/currency"
	"procurement/internal/database"
	"procurement/internal/model"
	"procurement/internal/repository"

	"github.com/bxcodec/faker/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fixture struct {
	db          *gorm.DB
	ledger      Ledger
	events      *recordingPublisher
	budgets     BudgetService
	requests    RequestService
	revisions   RevisionService
	departments DepartmentService
	audit       AuditService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteConnection("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	return newFixtureWith(t, db, Ledger{
		Tx:        repository.NewTransactionManager(db),
		Budgets:   repository.NewBudgetRepository(db),
		Requests:  repository.NewRequestRepository(db),
		Revisions: repository.NewRevisionRepository(db),
		Audit:     repository.NewAuditRepository(db),
		Rates:     currency.NewStaticRates(),
		Locker:    NewBudgetLocker(),
		Actor:     "tester",
	})
}

func newFixtureWith(t *testing.T, db *gorm.DB, ledger Ledger) *fixture {
	t.Helper()
	events := &recordingPublisher{}
	ledger.Events = events
	departments := NewDepartmentService(ledger.Tx, repository.NewDepartmentRepository(db), ledger.Audit, ledger.Actor)

	return &fixture{
		db:          db,
		ledger:      ledger,
		events:      events,
		budgets:     NewBudgetService(ledger, departments),
		requests:    NewRequestService(ledger),
		revisions:   NewRevisionService(ledger),
		departments: departments,
		audit:       NewAuditService(ledger.Audit),
	}
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, amount(want).Equal(got), "want %s, got %s", want, got.String())
}

func (f *fixture) createBudget(t *testing.T, total, code string) *model.Budget {
	t.Helper()
	b, err := f.budgets.CreateBudget(context.Background(), CreateBudgetDTO{
		FiscalYear:     "2025",
		DepartmentName: "Procurement",
		BudgetType:     model.BudgetTypeOpex,
		BudgetName:     faker.Word() + " budget",
		Currency:       code,
		TotalAmount:    amount(total),
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) createRequest(t *testing.T, budgetID uuid.UUID, estimated string) *model.BudgetRequest {
	t.Helper()
	total := amount(estimated)
	r, err := f.requests.CreateRequest(context.Background(), CreateRequestDTO{
		RequesterName: faker.Name(),
		Department:    "Procurement",
		RequestType:   model.RequestTypeItem,
		ItemName:      faker.Word(),
		Quantity:      1,
		UnitPrice:     total,
		BudgetID:      budgetID.String(),
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) reloadBudget(t *testing.T, id uuid.UUID) *model.Budget {
	t.Helper()
	b, err := f.ledger.Budgets.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (f *fixture) reloadRequest(t *testing.T, id uuid.UUID) *model.BudgetRequest {
	t.Helper()
	r, err := f.ledger.Requests.FindByID(context.Background(), id)
	require.NoError(t, err)
	return r
}

func assertBalanced(t *testing.T, b *model.Budget) {
	t.Helper()
	assert.True(t, b.Balanced(amount("0.01")), "remaining %s + used %s != total %s", b.RemainingAmount, b.UsedAmount, b.TotalAmount)
}
