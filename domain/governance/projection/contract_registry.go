package projection

import (
	"sync"
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

// Contract is a projected view of an awarded procurement contract.
// The kernel never models contract fulfillment or payment milestones
// (spec Non-goals): this is a record of the award decision only.
type Contract struct {
	ContractID string
	TenderID   string
	SupplierID string
	Value      money.Amount
	AwardedAt  time.Time
}

// ContractRegistry indexes contracts by id.
type ContractRegistry struct {
	mu        sync.RWMutex
	contracts map[string]*Contract
}

// NewContractRegistry creates an empty registry.
func NewContractRegistry() *ContractRegistry {
	return &ContractRegistry{contracts: make(map[string]*Contract)}
}

// Apply folds a single event into the registry.
func (r *ContractRegistry) Apply(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ev.Type != event.TypeTenderAwarded {
		return
	}
	p := ev.Payload.(event.TenderAwardedPayload)
	r.contracts[p.ContractID] = &Contract{
		ContractID: p.ContractID,
		TenderID:   p.TenderID,
		SupplierID: p.SupplierID,
		Value:      p.Value,
		AwardedAt:  p.AwardedAt,
	}
}

// Get returns a copy of a contract by id.
func (r *ContractRegistry) Get(contractID string) (Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[contractID]
	if !ok {
		return Contract{}, false
	}
	return *c, true
}

// BySupplier returns every contract awarded to a supplier.
func (r *ContractRegistry) BySupplier(supplierID string) []Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Contract
	for _, c := range r.contracts {
		if c.SupplierID == supplierID {
			out = append(out, *c)
		}
	}
	return out
}
