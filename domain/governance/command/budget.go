package command

import (
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/invariant"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
	kernelerrors "github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/errors"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

// CreateBudget creates a budget in DRAFT status from a non-empty set
// of line items whose allocations sum to budget_total (spec §4.4).
type CreateBudget struct {
	CommandID  string
	ActorID    string
	BudgetID   string
	LawID      string
	FiscalYear int
	Items      []event.BudgetItemSnapshot
}

func (c CreateBudget) Handle(now time.Time, _ *Projections, _ policy.SafetyPolicy) ([]event.Event, error) {
	if len(c.Items) == 0 {
		return nil, kernelerrors.CheckpointScheduleInvalid("budget must contain at least one item")
	}

	seen := make(map[string]bool, len(c.Items))
	total := money.Zero
	for _, it := range c.Items {
		if seen[it.ItemID] {
			return nil, kernelerrors.DuplicateItem(it.ItemID)
		}
		seen[it.ItemID] = true
		if money.IsNegative(it.AllocatedAmount) {
			return nil, kernelerrors.CheckpointScheduleInvalid("item " + it.ItemID + " has negative allocation")
		}
		total = total.Add(it.AllocatedAmount)
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeBudgetCreated, now, event.BudgetCreatedPayload{
		BudgetID:    c.BudgetID,
		LawID:       c.LawID,
		FiscalYear:  c.FiscalYear,
		Items:       c.Items,
		BudgetTotal: total,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}

// ActivateBudget moves a DRAFT budget to ACTIVE.
type ActivateBudget struct {
	CommandID string
	ActorID   string
	BudgetID  string
}

func (c ActivateBudget) Handle(now time.Time, p *Projections, _ policy.SafetyPolicy) ([]event.Event, error) {
	b, ok := p.Budgets.Get(c.BudgetID)
	if !ok {
		return nil, kernelerrors.UnknownAggregate(c.BudgetID)
	}
	if b.Active || b.Closed {
		return nil, kernelerrors.IllegalStatusTransition("budget", "DRAFT", "ACTIVE")
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeBudgetActivated, now, event.BudgetActivatedPayload{
		BudgetID:    c.BudgetID,
		ActivatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}

// AdjustAllocation redistributes allocations across a budget's items
// within a single zero-sum batch (spec §4.3, §4.4).
type AdjustAllocation struct {
	CommandID   string
	ActorID     string
	BudgetID    string
	Adjustments []event.Adjustment
}

func (c AdjustAllocation) Handle(now time.Time, p *Projections, safety policy.SafetyPolicy) ([]event.Event, error) {
	b, ok := p.Budgets.Get(c.BudgetID)
	if !ok {
		return nil, kernelerrors.UnknownAggregate(c.BudgetID)
	}
	if !b.Active || b.Closed {
		return nil, kernelerrors.IllegalStatusTransition("budget", "ACTIVE", "INACTIVE")
	}

	changes := make([]money.Amount, 0, len(c.Adjustments))
	for _, adj := range c.Adjustments {
		changes = append(changes, adj.ChangeAmount)
	}
	if err := invariant.ZeroSumBatch(c.BudgetID, changes, safety.BudgetBalanceMode); err != nil {
		return nil, err
	}

	for _, adj := range c.Adjustments {
		item, ok := b.Items[adj.ItemID]
		if !ok {
			return nil, kernelerrors.UnknownAggregate(adj.ItemID)
		}
		class := policy.FlexClass(item.FlexClass)
		if err := invariant.FlexStepSize(adj.ItemID, adj.ChangeAmount, item.AllocatedAmount, class, safety); err != nil {
			return nil, err
		}
		newAllocated := item.AllocatedAmount.Add(adj.ChangeAmount)
		if err := invariant.AllocationFloor(adj.ItemID, newAllocated, item.Spent); err != nil {
			return nil, err
		}
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeAllocationAdjusted, now, event.AllocationAdjustedPayload{
		BudgetID:    c.BudgetID,
		Adjustments: c.Adjustments,
		AdjustedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}

// ApproveExpenditure records a spend against a budget item. A
// violation of the allocation gate yields ExpenditureRejected rather
// than an error, per spec §4.4: this is a normal outcome, not a
// handler failure.
type ApproveExpenditure struct {
	CommandID string
	ActorID   string
	BudgetID  string
	ItemID    string
	Amount    money.Amount
}

func (c ApproveExpenditure) Handle(now time.Time, p *Projections, _ policy.SafetyPolicy) ([]event.Event, error) {
	b, ok := p.Budgets.Get(c.BudgetID)
	if !ok {
		return nil, kernelerrors.UnknownAggregate(c.BudgetID)
	}
	if !b.Active || b.Closed {
		return nil, kernelerrors.IllegalStatusTransition("budget", "ACTIVE", "INACTIVE")
	}

	item, ok := b.Items[c.ItemID]
	if !ok {
		gateEv, err := newEvent(c.CommandID, c.ActorID, event.TypeExpenditureRejected, now, event.ExpenditureRejectedPayload{
			BudgetID: c.BudgetID, ItemID: c.ItemID, Amount: c.Amount, GateName: "item_exists", RejectedAt: now,
		})
		if err != nil {
			return nil, err
		}
		return []event.Event{gateEv}, nil
	}

	remaining := item.AllocatedAmount.Sub(item.Spent)
	if c.Amount.GreaterThan(remaining) {
		ev, err := newEvent(c.CommandID, c.ActorID, event.TypeExpenditureRejected, now, event.ExpenditureRejectedPayload{
			BudgetID: c.BudgetID, ItemID: c.ItemID, Amount: c.Amount, GateName: "allocation_floor", RejectedAt: now,
		})
		if err != nil {
			return nil, err
		}
		return []event.Event{ev}, nil
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeExpenditureApproved, now, event.ExpenditureApprovedPayload{
		BudgetID: c.BudgetID, ItemID: c.ItemID, Amount: c.Amount, ApprovedAt: now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}

// CloseBudget moves an ACTIVE budget to CLOSED.
type CloseBudget struct {
	CommandID string
	ActorID   string
	BudgetID  string
}

func (c CloseBudget) Handle(now time.Time, p *Projections, _ policy.SafetyPolicy) ([]event.Event, error) {
	b, ok := p.Budgets.Get(c.BudgetID)
	if !ok {
		return nil, kernelerrors.UnknownAggregate(c.BudgetID)
	}
	if !b.Active || b.Closed {
		return nil, kernelerrors.IllegalStatusTransition("budget", "ACTIVE", "INACTIVE")
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeBudgetClosed, now, event.BudgetClosedPayload{
		BudgetID: c.BudgetID,
		ClosedAt: now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}
