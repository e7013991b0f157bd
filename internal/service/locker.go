package service

import (
	"sync"

	"github.com/google/uuid"
)

// BudgetLocker serializes ledger mutations per budget id inside one process.
// Row locks cover the multi-instance case; this covers drivers without them.
type BudgetLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*budgetLock
}

type budgetLock struct {
	mu   sync.Mutex
	refs int
}

func NewBudgetLocker() *BudgetLocker {
	return &BudgetLocker{locks: make(map[uuid.UUID]*budgetLock)}
}

// Lock blocks until the budget is free and returns the matching unlock.
func (l *BudgetLocker) Lock(budgetID uuid.UUID) func() {
	l.mu.Lock()
	bl, ok := l.locks[budgetID]
	if !ok {
		bl = &budgetLock{}
		l.locks[budgetID] = bl
	}
	bl.refs++
	l.mu.Unlock()

	bl.mu.Lock()

	return func() {
		bl.mu.Unlock()

		l.mu.Lock()
		bl.refs--
		if bl.refs == 0 {
			delete(l.locks, budgetID)
		}
		l.mu.Unlock()
	}
}

func (l *BudgetLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
