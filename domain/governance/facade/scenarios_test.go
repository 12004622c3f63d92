package facade

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/command"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/procurement"
	kernelerrors "github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/errors"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

// These tests reproduce the seed end-to-end scenarios (spec §8)
// directly against the façade, exercising the full command -> append
// -> projection path rather than a single handler in isolation.

func TestScenario_Acyclicity(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	k, _ := newKernel(t, now)

	_, err := k.CreateWorkspace(ctx, command.CreateWorkspace{CommandID: "c1", WorkspaceID: "ws-1", Name: "Commons"})
	require.NoError(t, err)

	_, err = k.DelegateDecisionRight(ctx, command.DelegateDecisionRight{
		CommandID: "c2", DelegationID: "d-ab", WorkspaceID: "ws-1",
		FromActor: "A", ToActor: "B", TTLDays: 30, Visibility: "PUBLIC",
	})
	require.NoError(t, err)
	_, err = k.DelegateDecisionRight(ctx, command.DelegateDecisionRight{
		CommandID: "c3", DelegationID: "d-bc", WorkspaceID: "ws-1",
		FromActor: "B", ToActor: "C", TTLDays: 30, Visibility: "PUBLIC",
	})
	require.NoError(t, err)

	_, err = k.DelegateDecisionRight(ctx, command.DelegateDecisionRight{
		CommandID: "c4", DelegationID: "d-ca", WorkspaceID: "ws-1",
		FromActor: "C", ToActor: "A", TTLDays: 30, Visibility: "PUBLIC",
	})
	require.Error(t, err)
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrCodeDelegationCycle))

	edges := k.Projections().Delegation.ActiveEdges(now)
	total := 0
	for _, tos := range edges {
		total += len(tos)
	}
	assert.Equal(t, 2, total, "the rejected cycle edge must not have been appended")
}

func TestScenario_ExpiryUnderVirtualClock(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	k, clk := newKernel(t, t0)

	_, err := k.CreateWorkspace(ctx, command.CreateWorkspace{CommandID: "c1", WorkspaceID: "ws-1", Name: "Commons"})
	require.NoError(t, err)
	_, err = k.DelegateDecisionRight(ctx, command.DelegateDecisionRight{
		CommandID: "c2", DelegationID: "d1", WorkspaceID: "ws-1",
		FromActor: "alice", ToActor: "bob", TTLDays: 30, Visibility: "PUBLIC",
	})
	require.NoError(t, err)

	clk.Set(t0.AddDate(0, 0, 31))
	events, err := k.Tick(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.TypeDelegationExpired, events[0].Type)

	edges := k.Projections().Delegation.ActiveEdges(clk.Now())
	assert.Empty(t, edges["alice"], "the expired edge must be absent from the active graph")
}

func TestScenario_LawCheckpointFlow(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	k, clk := newKernel(t, t0)

	_, err := k.CreateLaw(ctx, command.CreateLaw{
		CommandID: "c1", LawID: "law-1", WorkspaceID: "ws-1", Title: "Budget Rules",
		Reversibility: "REVERSIBLE", Checkpoints: []int{30, 90, 180, 365},
	})
	require.NoError(t, err)
	_, err = k.ActivateLaw(ctx, command.ActivateLaw{CommandID: "c2", LawID: "law-1"})
	require.NoError(t, err)

	clk.Set(t0.AddDate(0, 0, 31))
	events, err := k.Tick(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.TypeLawReviewTriggered, events[0].Type)

	law, ok := k.Projections().Laws.Get("law-1")
	require.True(t, ok)
	assert.Equal(t, policy.LawReview, law.Status)

	reviewedAt := clk.Now()
	events, err = k.CompleteReview(ctx, command.CompleteReview{CommandID: "c3", LawID: "law-1", Outcome: command.ReviewContinue})
	require.NoError(t, err)
	payload := events[0].Payload.(event.LawReviewCompletedPayload)
	assert.Equal(t, string(policy.LawActive), payload.NewStatus)
	require.NotNil(t, payload.NextCheckpointAt)
	assert.Equal(t, reviewedAt.AddDate(0, 0, 90), *payload.NextCheckpointAt)
}

func TestScenario_BudgetAdjustmentZeroSum(t *testing.T) {
	ctx := context.Background()
	k, _ := newKernel(t, time.Now().UTC())

	items := []event.BudgetItemSnapshot{
		{ItemID: "X", AllocatedAmount: money.NewFromInt(500000), FlexClass: "CRITICAL"},
		{ItemID: "Y", AllocatedAmount: money.NewFromInt(200000), FlexClass: "IMPORTANT"},
	}
	_, err := k.CreateBudget(ctx, command.CreateBudget{CommandID: "c1", BudgetID: "b1", Items: items})
	require.NoError(t, err)
	_, err = k.ActivateBudget(ctx, command.ActivateBudget{CommandID: "c2", BudgetID: "b1"})
	require.NoError(t, err)

	_, err = k.AdjustAllocation(ctx, command.AdjustAllocation{
		CommandID: "c3", BudgetID: "b1",
		Adjustments: []event.Adjustment{
			{ItemID: "X", ChangeAmount: money.NewFromInt(-25000)},
			{ItemID: "Y", ChangeAmount: money.NewFromInt(25000)},
		},
	})
	require.NoError(t, err, "5%% on CRITICAL / 12.5%% on IMPORTANT must be accepted")

	_, err = k.AdjustAllocation(ctx, command.AdjustAllocation{
		CommandID: "c4", BudgetID: "b1",
		Adjustments: []event.Adjustment{
			{ItemID: "X", ChangeAmount: money.NewFromInt(-30000)},
			{ItemID: "Y", ChangeAmount: money.NewFromInt(30000)},
		},
	})
	require.Error(t, err, "6%% on CRITICAL exceeds its 5%% flex ceiling")
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrCodeFlexStepSizeViolation))

	_, err = k.AdjustAllocation(ctx, command.AdjustAllocation{
		CommandID: "c5", BudgetID: "b1",
		Adjustments: []event.Adjustment{
			{ItemID: "X", ChangeAmount: money.NewFromInt(-25000)},
			{ItemID: "Y", ChangeAmount: money.NewFromInt(25001)},
		},
	})
	require.Error(t, err, "the batch does not sum to zero")
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrCodeBudgetBalanceViolation))
}

func TestScenario_IdempotentCommand(t *testing.T) {
	ctx := context.Background()
	k, _ := newKernel(t, time.Now().UTC())

	items := []event.BudgetItemSnapshot{{ItemID: "i1", AllocatedAmount: money.NewFromInt(100000), FlexClass: "CRITICAL"}}
	_, err := k.CreateBudget(ctx, command.CreateBudget{CommandID: "c1", BudgetID: "b1", Items: items})
	require.NoError(t, err)
	_, err = k.ActivateBudget(ctx, command.ActivateBudget{CommandID: "c2", BudgetID: "b1"})
	require.NoError(t, err)

	cmd := command.ApproveExpenditure{CommandID: "c3", BudgetID: "b1", ItemID: "i1", Amount: money.NewFromInt(50000)}
	first, err := k.ApproveExpenditure(ctx, cmd)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, event.TypeExpenditureApproved, first[0].Type)

	second, err := k.ApproveExpenditure(ctx, cmd)
	require.NoError(t, err)
	assert.Empty(t, second, "a replayed command_id must not append a second event")

	b, ok := k.Projections().Budgets.Get("b1")
	require.True(t, ok)
	assert.True(t, b.Items["i1"].Spent.Equal(money.NewFromInt(50000)), "spent must reflect exactly one approval")
}

func TestScenario_ConcentrationHalt(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	k, _ := newKernel(t, now)

	_, err := k.CreateWorkspace(ctx, command.CreateWorkspace{CommandID: "c0", WorkspaceID: "ws-1", Name: "Commons"})
	require.NoError(t, err)

	for i := 0; i < 2100; i++ {
		_, err := k.DelegateDecisionRight(ctx, command.DelegateDecisionRight{
			CommandID: fmt.Sprintf("c-%d", i), DelegationID: fmt.Sprintf("d-%d", i), WorkspaceID: "ws-1",
			FromActor: fmt.Sprintf("from-%d", i), ToActor: "whale", TTLDays: 30, Visibility: "PUBLIC",
		})
		if err != nil {
			assert.True(t, kernelerrors.Is(err, kernelerrors.ErrCodeConcentrationHalted))
			break
		}
	}

	events, err := k.Tick(ctx)
	require.NoError(t, err)

	var sawHalt, sawEscalation bool
	for _, ev := range events {
		switch ev.Type {
		case event.TypeDelegationConcentrationHalt:
			sawHalt = true
		case event.TypeTransparencyEscalated:
			sawEscalation = true
		}
	}
	assert.True(t, sawHalt)
	assert.True(t, sawEscalation)

	_, err = k.DelegateDecisionRight(ctx, command.DelegateDecisionRight{
		CommandID: "c-after-halt", DelegationID: "d-after-halt", WorkspaceID: "ws-1",
		FromActor: "late-delegator", ToActor: "whale", TTLDays: 30, Visibility: "PUBLIC",
	})
	require.Error(t, err, "a further delegation into the halted actor must be rejected")
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrCodeConcentrationHalted))
}

func TestScenario_ReproducibleRandomSelection(t *testing.T) {
	ctx := context.Background()
	k, _ := newKernel(t, time.Now().UTC())

	_, err := k.RegisterSupplier(ctx, command.RegisterSupplier{
		CommandID: "c1", SupplierID: "s1", Name: "Supplier One",
		MaxContractValue: money.NewFromInt(1000000), YearsInBusiness: 5, ReputationScore: 4.0,
	})
	require.NoError(t, err)
	_, err = k.RegisterSupplier(ctx, command.RegisterSupplier{
		CommandID: "c2", SupplierID: "s2", Name: "Supplier Two",
		MaxContractValue: money.NewFromInt(1000000), YearsInBusiness: 5, ReputationScore: 4.0,
	})
	require.NoError(t, err)

	_, err = k.CreateTender(ctx, command.CreateTender{
		CommandID: "c3", TenderID: "tender-42", LawID: "law-1", Title: "Paving",
		EstimatedValue: money.NewFromInt(500000), SelectionMechanism: procurement.Random,
	})
	require.NoError(t, err)
	_, err = k.OpenTender(ctx, command.OpenTender{CommandID: "c4", TenderID: "tender-42", Seed: "tender-42"})
	require.NoError(t, err)

	events, err := k.AwardTender(ctx, command.AwardTender{CommandID: "c5", TenderID: "tender-42", ContractID: "ct-1"})
	require.NoError(t, err)
	payload := events[0].Payload.(event.TenderAwardedPayload)

	sum := sha256.Sum256([]byte("tender-42"))
	h := new(big.Int).SetBytes(sum[:])
	mod := new(big.Int).Mod(h, big.NewInt(2)).Int64()
	want := "s1"
	if mod == 1 {
		want = "s2"
	}
	assert.Equal(t, want, payload.SupplierID)
}
