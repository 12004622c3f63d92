package projection

import (
	"sync"
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

// Expenditure is a single recorded spend or rejected spend attempt,
// kept in append order for the audit trail (spec §2: "every
// expenditure... is auditable").
type Expenditure struct {
	BudgetID  string
	ItemID    string
	Amount    money.Amount
	Approved  bool
	GateName  string
	RecordedAt time.Time
}

// AuditTrail accumulates every expenditure decision across every
// budget, in the order they were appended to the log.
type AuditTrail struct {
	mu      sync.RWMutex
	entries []Expenditure
}

// NewAuditTrail creates an empty trail.
func NewAuditTrail() *AuditTrail {
	return &AuditTrail{}
}

// Apply folds a single event into the trail.
func (t *AuditTrail) Apply(ev event.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Type {
	case event.TypeExpenditureApproved:
		p := ev.Payload.(event.ExpenditureApprovedPayload)
		t.entries = append(t.entries, Expenditure{
			BudgetID:   p.BudgetID,
			ItemID:     p.ItemID,
			Amount:     p.Amount,
			Approved:   true,
			RecordedAt: p.ApprovedAt,
		})
	case event.TypeExpenditureRejected:
		p := ev.Payload.(event.ExpenditureRejectedPayload)
		t.entries = append(t.entries, Expenditure{
			BudgetID:   p.BudgetID,
			ItemID:     p.ItemID,
			Amount:     p.Amount,
			Approved:   false,
			GateName:   p.GateName,
			RecordedAt: p.RejectedAt,
		})
	}
}

// ForBudget returns every recorded expenditure for a budget, in
// append order.
func (t *AuditTrail) ForBudget(budgetID string) []Expenditure {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Expenditure
	for _, e := range t.entries {
		if e.BudgetID == budgetID {
			out = append(out, e)
		}
	}
	return out
}

// SpentByItem sums the approved amounts for a budget's items, keyed
// by item id. This is a cross-check against the BudgetRegistry's
// incrementally maintained spent totals (spec §9: projections must
// agree after a full replay).
func (t *AuditTrail) SpentByItem(budgetID string) map[string]money.Amount {
	t.mu.RLock()
	defer t.mu.RUnlock()

	totals := make(map[string]money.Amount)
	for _, e := range t.entries {
		if e.BudgetID == budgetID && e.Approved {
			totals[e.ItemID] = totals[e.ItemID].Add(e.Amount)
		}
	}
	return totals
}
