package projection

import (
	"sync"
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

// BudgetItem is a projected line item within a budget.
type BudgetItem struct {
	ItemID          string
	Name            string
	AllocatedAmount money.Amount
	Spent           money.Amount
	FlexClass       string
	Category        string
}

// Budget is a projected view of a budget aggregate.
type Budget struct {
	BudgetID    string
	LawID       string
	FiscalYear  int
	Items       map[string]*BudgetItem
	BudgetTotal money.Amount
	Active      bool
	Closed      bool
	CreatedAt   time.Time
	ActivatedAt time.Time
	ClosedAt    time.Time
}

// Allocated returns the sum of every item's allocated amount.
func (b Budget) Allocated() money.Amount {
	total := money.Zero
	for _, it := range b.Items {
		total = total.Add(it.AllocatedAmount)
	}
	return total
}

// BudgetRegistry indexes budgets by id.
type BudgetRegistry struct {
	mu               sync.RWMutex
	budgets          map[string]*Budget
	flaggedBalance   map[string]bool
	flaggedOverspend map[string]bool
}

// NewBudgetRegistry creates an empty registry.
func NewBudgetRegistry() *BudgetRegistry {
	return &BudgetRegistry{
		budgets:          make(map[string]*Budget),
		flaggedBalance:   make(map[string]bool),
		flaggedOverspend: make(map[string]bool),
	}
}

// Apply folds a single event into the registry.
func (r *BudgetRegistry) Apply(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type {
	case event.TypeBudgetCreated:
		p := ev.Payload.(event.BudgetCreatedPayload)
		items := make(map[string]*BudgetItem, len(p.Items))
		for _, snap := range p.Items {
			items[snap.ItemID] = &BudgetItem{
				ItemID:          snap.ItemID,
				Name:            snap.Name,
				AllocatedAmount: snap.AllocatedAmount,
				Spent:           money.Zero,
				FlexClass:       snap.FlexClass,
				Category:        snap.Category,
			}
		}
		r.budgets[p.BudgetID] = &Budget{
			BudgetID:    p.BudgetID,
			LawID:       p.LawID,
			FiscalYear:  p.FiscalYear,
			Items:       items,
			BudgetTotal: p.BudgetTotal,
			CreatedAt:   p.CreatedAt,
		}
	case event.TypeBudgetActivated:
		p := ev.Payload.(event.BudgetActivatedPayload)
		if b, ok := r.budgets[p.BudgetID]; ok {
			b.Active = true
			b.ActivatedAt = p.ActivatedAt
		}
	case event.TypeAllocationAdjusted:
		p := ev.Payload.(event.AllocationAdjustedPayload)
		if b, ok := r.budgets[p.BudgetID]; ok {
			for _, adj := range p.Adjustments {
				if it, ok := b.Items[adj.ItemID]; ok {
					it.AllocatedAmount = it.AllocatedAmount.Add(adj.ChangeAmount)
				}
				delete(r.flaggedOverspend, adj.ItemID)
			}
		}
		delete(r.flaggedBalance, p.BudgetID)
	case event.TypeExpenditureApproved:
		p := ev.Payload.(event.ExpenditureApprovedPayload)
		if b, ok := r.budgets[p.BudgetID]; ok {
			if it, ok := b.Items[p.ItemID]; ok {
				it.Spent = it.Spent.Add(p.Amount)
			}
		}
		delete(r.flaggedOverspend, p.ItemID)
	case event.TypeBudgetClosed:
		p := ev.Payload.(event.BudgetClosedPayload)
		if b, ok := r.budgets[p.BudgetID]; ok {
			b.Closed = true
			b.ClosedAt = p.ClosedAt
		}
	case event.TypeBudgetBalanceViolationDetected:
		p := ev.Payload.(event.BudgetBalanceViolationDetectedPayload)
		r.flaggedBalance[p.BudgetID] = true
	case event.TypeBudgetOverspendDetected:
		p := ev.Payload.(event.BudgetOverspendDetectedPayload)
		r.flaggedOverspend[p.ItemID] = true
	}
}

// AlreadyFlaggedBalance reports whether a balance violation was
// already recorded for this budget since its last adjustment, letting
// the tick engine skip a redundant reflex event (spec §4.6
// idempotency requirement).
func (r *BudgetRegistry) AlreadyFlaggedBalance(budgetID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flaggedBalance[budgetID]
}

// AlreadyFlaggedOverspend reports whether an overspend was already
// recorded for this item since its last adjustment or expenditure.
func (r *BudgetRegistry) AlreadyFlaggedOverspend(itemID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flaggedOverspend[itemID]
}

// Get returns a copy of a budget by id, with a fresh items map holding
// copies of every item so callers cannot mutate projection state.
func (r *BudgetRegistry) Get(budgetID string) (Budget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.budgets[budgetID]
	if !ok {
		return Budget{}, false
	}
	cp := *b
	cp.Items = make(map[string]*BudgetItem, len(b.Items))
	for id, it := range b.Items {
		itCopy := *it
		cp.Items[id] = &itCopy
	}
	return cp, true
}

// ActiveBudgetIDs returns the ids of every budget currently ACTIVE and
// not closed: the tick engine's balance/overspend audit scope (spec
// §4.6 rules 3-4).
func (r *BudgetRegistry) ActiveBudgetIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, b := range r.budgets {
		if b.Active && !b.Closed {
			ids = append(ids, id)
		}
	}
	return ids
}
