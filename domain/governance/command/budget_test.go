package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

func twoItemBudget() []event.BudgetItemSnapshot {
	return []event.BudgetItemSnapshot{
		{ItemID: "i1", Name: "Staffing", AllocatedAmount: money.NewFromInt(100000), FlexClass: "CRITICAL"},
		{ItemID: "i2", Name: "Travel", AllocatedAmount: money.NewFromInt(50000), FlexClass: "ASPIRATIONAL"},
	}
}

func TestCreateBudget_ComputesTotal(t *testing.T) {
	now := time.Now().UTC()
	cmd := CreateBudget{CommandID: "c1", BudgetID: "b1", Items: twoItemBudget()}
	events, err := cmd.Handle(now, newTestProjections(), policy.Default())
	require.NoError(t, err)
	payload := events[0].Payload.(event.BudgetCreatedPayload)
	assert.True(t, payload.BudgetTotal.Equal(money.NewFromInt(150000)))
}

func TestCreateBudget_RejectsEmptyItems(t *testing.T) {
	now := time.Now().UTC()
	cmd := CreateBudget{CommandID: "c1", BudgetID: "b1"}
	_, err := cmd.Handle(now, newTestProjections(), policy.Default())
	require.Error(t, err)
}

func TestCreateBudget_RejectsDuplicateItem(t *testing.T) {
	now := time.Now().UTC()
	items := []event.BudgetItemSnapshot{
		{ItemID: "i1", AllocatedAmount: money.NewFromInt(100)},
		{ItemID: "i1", AllocatedAmount: money.NewFromInt(200)},
	}
	cmd := CreateBudget{CommandID: "c1", BudgetID: "b1", Items: items}
	_, err := cmd.Handle(now, newTestProjections(), policy.Default())
	require.Error(t, err)
}

func activeBudget(p *Projections, now time.Time) {
	p.Budgets.Apply(event.Event{Type: event.TypeBudgetCreated, Payload: event.BudgetCreatedPayload{
		BudgetID: "b1", Items: twoItemBudget(), BudgetTotal: money.NewFromInt(150000), CreatedAt: now,
	}})
	p.Budgets.Apply(event.Event{Type: event.TypeBudgetActivated, Payload: event.BudgetActivatedPayload{BudgetID: "b1", ActivatedAt: now}})
}

func TestAdjustAllocation_HappyPath(t *testing.T) {
	now := time.Now().UTC()
	p := newTestProjections()
	activeBudget(p, now)

	cmd := AdjustAllocation{
		CommandID: "c1", BudgetID: "b1",
		Adjustments: []event.Adjustment{
			{ItemID: "i1", ChangeAmount: money.NewFromInt(-4000)},
			{ItemID: "i2", ChangeAmount: money.NewFromInt(4000)},
		},
	}
	events, err := cmd.Handle(now, p, policy.Default())
	require.NoError(t, err)
	assert.Equal(t, event.TypeAllocationAdjusted, events[0].Type)
}

func TestAdjustAllocation_RejectsNonZeroSum(t *testing.T) {
	now := time.Now().UTC()
	p := newTestProjections()
	activeBudget(p, now)

	cmd := AdjustAllocation{
		CommandID: "c1", BudgetID: "b1",
		Adjustments: []event.Adjustment{
			{ItemID: "i1", ChangeAmount: money.NewFromInt(-4000)},
			{ItemID: "i2", ChangeAmount: money.NewFromInt(3000)},
		},
	}
	_, err := cmd.Handle(now, p, policy.Default())
	require.Error(t, err)
}

func TestAdjustAllocation_RejectsFlexStepOverCeiling(t *testing.T) {
	now := time.Now().UTC()
	p := newTestProjections()
	activeBudget(p, now)

	cmd := AdjustAllocation{
		CommandID: "c1", BudgetID: "b1",
		Adjustments: []event.Adjustment{
			{ItemID: "i1", ChangeAmount: money.NewFromInt(-90000)},
			{ItemID: "i2", ChangeAmount: money.NewFromInt(90000)},
		},
	}
	_, err := cmd.Handle(now, p, policy.Default())
	require.Error(t, err)
}

func TestApproveExpenditure_Approved(t *testing.T) {
	now := time.Now().UTC()
	p := newTestProjections()
	activeBudget(p, now)

	cmd := ApproveExpenditure{CommandID: "c1", BudgetID: "b1", ItemID: "i1", Amount: money.NewFromInt(1000)}
	events, err := cmd.Handle(now, p, policy.Default())
	require.NoError(t, err)
	assert.Equal(t, event.TypeExpenditureApproved, events[0].Type)
}

func TestApproveExpenditure_RejectedOverAllocation(t *testing.T) {
	now := time.Now().UTC()
	p := newTestProjections()
	activeBudget(p, now)

	cmd := ApproveExpenditure{CommandID: "c1", BudgetID: "b1", ItemID: "i1", Amount: money.NewFromInt(999999)}
	events, err := cmd.Handle(now, p, policy.Default())
	require.NoError(t, err)
	assert.Equal(t, event.TypeExpenditureRejected, events[0].Type)
	payload := events[0].Payload.(event.ExpenditureRejectedPayload)
	assert.Equal(t, "allocation_floor", payload.GateName)
}

func TestApproveExpenditure_RejectedUnknownItem(t *testing.T) {
	now := time.Now().UTC()
	p := newTestProjections()
	activeBudget(p, now)

	cmd := ApproveExpenditure{CommandID: "c1", BudgetID: "b1", ItemID: "missing", Amount: money.NewFromInt(1)}
	events, err := cmd.Handle(now, p, policy.Default())
	require.NoError(t, err)
	payload := events[0].Payload.(event.ExpenditureRejectedPayload)
	assert.Equal(t, "item_exists", payload.GateName)
}

func TestCloseBudget_HappyPath(t *testing.T) {
	now := time.Now().UTC()
	p := newTestProjections()
	activeBudget(p, now)

	cmd := CloseBudget{CommandID: "c1", BudgetID: "b1"}
	events, err := cmd.Handle(now, p, policy.Default())
	require.NoError(t, err)
	assert.Equal(t, event.TypeBudgetClosed, events[0].Type)
}
