package projection

import (
	"sync"
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

// Supplier is a projected view of a registered supplier.
type Supplier struct {
	SupplierID       string
	Name             string
	Type             string
	MaxContractValue money.Amount
	Certifications   []string
	YearsInBusiness  int
	ReputationScore  float64
	RegisteredAt     time.Time
	TotalAwarded     money.Amount
	ContractCount    int
}

// SupplierRegistry indexes suppliers by id and tracks cumulative
// award totals for concentration metrics and ROTATION selection
// (spec §4.7).
type SupplierRegistry struct {
	mu         sync.RWMutex
	suppliers  map[string]*Supplier
	lastGini   float64
	lastGiniOK bool
}

// NewSupplierRegistry creates an empty registry.
func NewSupplierRegistry() *SupplierRegistry {
	return &SupplierRegistry{suppliers: make(map[string]*Supplier)}
}

// Apply folds a single event into the registry.
func (r *SupplierRegistry) Apply(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type {
	case event.TypeSupplierRegistered:
		p := ev.Payload.(event.SupplierRegisteredPayload)
		r.suppliers[p.SupplierID] = &Supplier{
			SupplierID:       p.SupplierID,
			Name:             p.Name,
			Type:             p.Type,
			MaxContractValue: p.MaxContractValue,
			Certifications:   p.Certifications,
			YearsInBusiness:  p.YearsInBusiness,
			ReputationScore:  p.ReputationScore,
			RegisteredAt:     p.RegisteredAt,
			TotalAwarded:     money.Zero,
		}
	case event.TypeTenderAwarded:
		p := ev.Payload.(event.TenderAwardedPayload)
		if s, ok := r.suppliers[p.SupplierID]; ok {
			s.TotalAwarded = s.TotalAwarded.Add(p.Value)
			s.ContractCount++
		}
	case event.TypeSupplierConcentrationWarning:
		p := ev.Payload.(event.SupplierConcentrationWarningPayload)
		r.lastGini, r.lastGiniOK = p.Gini, true
	case event.TypeSupplierConcentrationHalt:
		p := ev.Payload.(event.SupplierConcentrationHaltPayload)
		r.lastGini, r.lastGiniOK = p.Gini, true
	}
}

// UnchangedSince reports whether a newly computed supplier
// concentration Gini matches the last one recorded, letting the tick
// engine skip a redundant reflex event.
func (r *SupplierRegistry) UnchangedSince(gini float64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastGiniOK && r.lastGini == gini
}

// Get returns a copy of a supplier by id.
func (r *SupplierRegistry) Get(supplierID string) (Supplier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.suppliers[supplierID]
	if !ok {
		return Supplier{}, false
	}
	return *s, true
}

// All returns every registered supplier, unordered.
func (r *SupplierRegistry) All() []Supplier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, *s)
	}
	return out
}

// AwardedTotals returns the cumulative awarded value per supplier id,
// the distribution the supplier-concentration Gini rule measures
// (spec §4.6 rule 6).
func (r *SupplierRegistry) AwardedTotals() map[string]money.Amount {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := make(map[string]money.Amount, len(r.suppliers))
	for id, s := range r.suppliers {
		totals[id] = s.TotalAwarded
	}
	return totals
}
