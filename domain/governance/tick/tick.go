// Package tick implements the kernel's reflex trigger engine (spec
// §4.6): a single deterministic function that scans projections for
// concentration, time, and balance breaches and emits reflex events in
// a fixed rule order so that replay is bit-stable.
package tick

import (
	"sort"
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/command"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/ids"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/stats"
)

// Batch is a set of events destined for one stream; the façade looks
// up that stream's current version and appends them under it.
type Batch struct {
	StreamID   string
	StreamType event.StreamType
	Events     []event.Event
}

func newReflexEvent(at time.Time, typ event.Type, payload any) (event.Event, error) {
	id, err := ids.NewEventID(at)
	if err != nil {
		return event.Event{}, err
	}
	return event.Event{EventID: id, Type: typ, OccurredAt: at, Payload: payload}, nil
}

// Run evaluates every reflex rule, in spec order, against the given
// projections and returns the per-stream batches to append. Run itself
// performs no I/O and never mutates the projections it reads; the
// façade is responsible for applying the returned events afterward.
func Run(now time.Time, safety policy.SafetyPolicy, p *command.Projections) ([]Batch, error) {
	var batches []Batch

	expiryBatches, err := ruleDelegationExpiry(now, p)
	if err != nil {
		return nil, err
	}
	batches = append(batches, expiryBatches...)

	checkpointBatches, err := ruleLawCheckpointOverrun(now, p)
	if err != nil {
		return nil, err
	}
	batches = append(batches, checkpointBatches...)

	concentrationBatches, err := ruleDelegationConcentration(now, safety, p)
	if err != nil {
		return nil, err
	}
	batches = append(batches, concentrationBatches...)

	balanceBatches, err := ruleBudgetBalanceAudit(now, p)
	if err != nil {
		return nil, err
	}
	batches = append(batches, balanceBatches...)

	overspendBatches, err := ruleOverspendAudit(now, p)
	if err != nil {
		return nil, err
	}
	batches = append(batches, overspendBatches...)

	supplierBatches, err := ruleSupplierConcentration(now, safety, p)
	if err != nil {
		return nil, err
	}
	batches = append(batches, supplierBatches...)

	for i := range batches {
		for j := range batches[i].Events {
			batches[i].Events[j].StreamID = batches[i].StreamID
			batches[i].Events[j].StreamType = batches[i].StreamType
		}
	}

	return batches, nil
}

// rule 1: delegation expiry.
func ruleDelegationExpiry(now time.Time, p *command.Projections) ([]Batch, error) {
	ids := p.Delegation.ActiveExpiredBefore(now)
	sort.Strings(ids)

	var batches []Batch
	for _, delegationID := range ids {
		ev, err := newReflexEvent(now, event.TypeDelegationExpired, event.DelegationExpiredPayload{
			DelegationID: delegationID,
			ExpiredAt:    now,
		})
		if err != nil {
			return nil, err
		}
		batches = append(batches, Batch{StreamID: delegationID, StreamType: event.StreamDelegation, Events: []event.Event{ev}})
	}
	return batches, nil
}

// rule 2: law checkpoint overrun.
func ruleLawCheckpointOverrun(now time.Time, p *command.Projections) ([]Batch, error) {
	lawIDs := p.Laws.OverdueCheckpoints(now)
	sort.Strings(lawIDs)

	var batches []Batch
	for _, lawID := range lawIDs {
		law, ok := p.Laws.Get(lawID)
		if !ok {
			continue
		}
		ev, err := newReflexEvent(now, event.TypeLawReviewTriggered, event.LawReviewTriggeredPayload{
			LawID:           lawID,
			CheckpointIndex: law.CheckpointIndex,
			TriggeredAt:     now,
		})
		if err != nil {
			return nil, err
		}
		batches = append(batches, Batch{StreamID: lawID, StreamType: event.StreamLaw, Events: []event.Event{ev}})
	}
	return batches, nil
}

// rule 3: delegation concentration.
func ruleDelegationConcentration(now time.Time, safety policy.SafetyPolicy, p *command.Projections) ([]Batch, error) {
	inDegrees := p.Delegation.InDegrees(now)
	values := make([]float64, 0, len(inDegrees))
	maxInDegree := 0
	maxActorID := ""
	for actorID, degree := range inDegrees {
		values = append(values, float64(degree))
		if degree > maxInDegree || (degree == maxInDegree && (maxActorID == "" || actorID < maxActorID)) {
			maxInDegree = degree
			maxActorID = actorID
		}
	}
	gini := stats.Gini(values)
	streamID := policy.StreamID(policy.StreamDelegationGini)

	var batches []Batch
	switch {
	case gini >= safety.DelegationGiniHalt || maxInDegree >= safety.DelegationInDegreeHalt:
		if p.Delegation.UnchangedSince(streamID, gini, maxInDegree, maxActorID) {
			return nil, nil
		}
		haltEv, err := newReflexEvent(now, event.TypeDelegationConcentrationHalt, event.DelegationConcentrationHaltPayload{
			Gini: gini, MaxInDegree: maxInDegree, MaxActorID: maxActorID, ObservedAt: now,
		})
		if err != nil {
			return nil, err
		}
		escalateEv, err := newReflexEvent(now, event.TypeTransparencyEscalated, event.TransparencyEscalatedPayload{
			Reason: "delegation concentration halt threshold breached", ObservedAt: now,
		})
		if err != nil {
			return nil, err
		}
		batches = append(batches, Batch{StreamID: streamID, StreamType: event.StreamSystem, Events: []event.Event{haltEv}})
		batches = append(batches, Batch{StreamID: policy.StreamID(policy.StreamTick), StreamType: event.StreamSystem, Events: []event.Event{escalateEv}})
	case gini >= safety.DelegationGiniWarn || maxInDegree >= safety.DelegationInDegreeWarn:
		if p.Delegation.UnchangedSince(streamID, gini, maxInDegree, maxActorID) {
			return nil, nil
		}
		warnEv, err := newReflexEvent(now, event.TypeDelegationConcentrationWarning, event.DelegationConcentrationWarningPayload{
			Gini: gini, MaxInDegree: maxInDegree, MaxActorID: maxActorID, ObservedAt: now,
		})
		if err != nil {
			return nil, err
		}
		batches = append(batches, Batch{StreamID: streamID, StreamType: event.StreamSystem, Events: []event.Event{warnEv}})
	}
	return batches, nil
}

// rule 4: budget balance audit.
func ruleBudgetBalanceAudit(now time.Time, p *command.Projections) ([]Batch, error) {
	budgetIDs := p.Budgets.ActiveBudgetIDs()
	sort.Strings(budgetIDs)

	var batches []Batch
	for _, budgetID := range budgetIDs {
		if p.Budgets.AlreadyFlaggedBalance(budgetID) {
			continue
		}
		b, ok := p.Budgets.Get(budgetID)
		if !ok {
			continue
		}
		allocated := b.Allocated()
		if allocated.Equal(b.BudgetTotal) {
			continue
		}
		ev, err := newReflexEvent(now, event.TypeBudgetBalanceViolationDetected, event.BudgetBalanceViolationDetectedPayload{
			BudgetID: budgetID, Expected: b.BudgetTotal, Actual: allocated, ObservedAt: now,
		})
		if err != nil {
			return nil, err
		}
		batches = append(batches, Batch{StreamID: budgetID, StreamType: event.StreamBudget, Events: []event.Event{ev}})
	}
	return batches, nil
}

// rule 5: overspend audit.
func ruleOverspendAudit(now time.Time, p *command.Projections) ([]Batch, error) {
	budgetIDs := p.Budgets.ActiveBudgetIDs()
	sort.Strings(budgetIDs)

	var batches []Batch
	for _, budgetID := range budgetIDs {
		b, ok := p.Budgets.Get(budgetID)
		if !ok {
			continue
		}
		itemIDs := make([]string, 0, len(b.Items))
		for itemID := range b.Items {
			itemIDs = append(itemIDs, itemID)
		}
		sort.Strings(itemIDs)

		for _, itemID := range itemIDs {
			item := b.Items[itemID]
			if !item.Spent.GreaterThan(item.AllocatedAmount) {
				continue
			}
			if p.Budgets.AlreadyFlaggedOverspend(itemID) {
				continue
			}
			ev, err := newReflexEvent(now, event.TypeBudgetOverspendDetected, event.BudgetOverspendDetectedPayload{
				BudgetID: budgetID, ItemID: itemID, Allocated: item.AllocatedAmount, Spent: item.Spent, ObservedAt: now,
			})
			if err != nil {
				return nil, err
			}
			batches = append(batches, Batch{StreamID: budgetID, StreamType: event.StreamBudget, Events: []event.Event{ev}})
		}
	}
	return batches, nil
}

// rule 6: supplier concentration.
func ruleSupplierConcentration(now time.Time, safety policy.SafetyPolicy, p *command.Projections) ([]Batch, error) {
	totals := p.Suppliers.AwardedTotals()
	values := make([]float64, 0, len(totals))
	for _, amount := range totals {
		f, _ := amount.Float64()
		values = append(values, f)
	}
	gini := stats.Gini(values)
	streamID := policy.StreamID(policy.StreamSupplierGini)

	if p.Suppliers.UnchangedSince(gini) {
		return nil, nil
	}

	var batches []Batch
	switch {
	case gini >= safety.SupplierGiniHalt:
		ev, err := newReflexEvent(now, event.TypeSupplierConcentrationHalt, event.SupplierConcentrationHaltPayload{Gini: gini, ObservedAt: now})
		if err != nil {
			return nil, err
		}
		batches = append(batches, Batch{StreamID: streamID, StreamType: event.StreamSystem, Events: []event.Event{ev}})
	case gini >= safety.SupplierGiniWarn:
		ev, err := newReflexEvent(now, event.TypeSupplierConcentrationWarning, event.SupplierConcentrationWarningPayload{Gini: gini, ObservedAt: now})
		if err != nil {
			return nil, err
		}
		batches = append(batches, Batch{StreamID: streamID, StreamType: event.StreamSystem, Events: []event.Event{ev}})
	}
	return batches, nil
}
