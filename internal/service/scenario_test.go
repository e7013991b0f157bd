package service

import (
	"context"
	"testing"

	"procurement/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerScenario_SubmitRejectRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Budget 1000 IDR
	b := f.createBudget(t, "1000", "IDR")
	assertAmount(t, "1000", b.RemainingAmount)
	assertAmount(t, "0", b.UsedAmount)

	// Request A 400 -> approved
	a := f.createRequest(t, b.ID, "400")
	got, err := f.requests.SubmitRequest(ctx, a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusBudgetApproved, got.Status)
	assertAmount(t, "400", got.ReservedAmount)
	budget := f.reloadBudget(t, b.ID)
	assertAmount(t, "600", budget.RemainingAmount)
	assertAmount(t, "400", budget.UsedAmount)

	// Request B 700 -> rejected, budget unchanged
	bReq := f.createRequest(t, b.ID, "700")
	got, err = f.requests.SubmitRequest(ctx, bReq.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusBudgetRejected, got.Status)
	budget = f.reloadBudget(t, b.ID)
	assertAmount(t, "600", budget.RemainingAmount)

	// A leaves BUDGET_APPROVED, then is deleted -> full release
	_, err = f.requests.ChooseSRMR(ctx, a.ID.String(), RouteMR)
	require.NoError(t, err)
	_, err = f.requests.DeleteRequest(ctx, a.ID.String())
	require.NoError(t, err)

	budget = f.reloadBudget(t, b.ID)
	assertAmount(t, "1000", budget.RemainingAmount)
	assertAmount(t, "0", budget.UsedAmount)
	assertAmount(t, "1000", budget.RemainingAmountIDR)
	assertAmount(t, "0", budget.UsedAmountIDR)
	assertBalanced(t, budget)

	// every mutation left an audit row
	logs, total, err := f.audit.GetAuditLogs(ctx, "", 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, len(logs), total)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Contains(t, actions, model.ActionApproveRequest)
	assert.Contains(t, actions, model.ActionRejectRequest)
	assert.Contains(t, actions, model.ActionDeleteRequest)

	byA, _, err := f.audit.GetAuditLogs(ctx, a.ID.String(), 1, 50)
	require.NoError(t, err)
	assert.Len(t, byA, 4, "create, approve, choose, delete")
}
