package projection

import (
	"sync"
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

// TenderStatus tracks a tender's procurement lifecycle.
type TenderStatus string

const (
	TenderCreated TenderStatus = "CREATED"
	TenderOpen    TenderStatus = "OPEN"
	TenderAwarded TenderStatus = "AWARDED"
	TenderClosed  TenderStatus = "CLOSED"
)

// Tender is a projected view of a procurement tender.
type Tender struct {
	TenderID             string
	LawID                string
	Title                string
	EstimatedValue       money.Amount
	RequiredCapabilities []string
	MinYearsExperience   *int
	MinReputation        *float64
	SelectionMechanism   string
	Status               TenderStatus
	Seed                 string
	AwardedSupplierID    string
	AwardedContractID    string
	FeasibleSet          []string
	CreatedAt            time.Time
	OpenedAt             time.Time
	ClosedAt             time.Time
}

// TenderRegistry indexes tenders by id.
type TenderRegistry struct {
	mu      sync.RWMutex
	tenders map[string]*Tender
}

// NewTenderRegistry creates an empty registry.
func NewTenderRegistry() *TenderRegistry {
	return &TenderRegistry{tenders: make(map[string]*Tender)}
}

// Apply folds a single event into the registry.
func (r *TenderRegistry) Apply(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type {
	case event.TypeTenderCreated:
		p := ev.Payload.(event.TenderCreatedPayload)
		r.tenders[p.TenderID] = &Tender{
			TenderID:             p.TenderID,
			LawID:                p.LawID,
			Title:                p.Title,
			EstimatedValue:       p.EstimatedValue,
			RequiredCapabilities: p.RequiredCapabilities,
			MinYearsExperience:   p.MinYearsExperience,
			MinReputation:        p.MinReputation,
			SelectionMechanism:   p.SelectionMechanism,
			Status:               TenderCreated,
			CreatedAt:            p.CreatedAt,
		}
	case event.TypeTenderOpened:
		p := ev.Payload.(event.TenderOpenedPayload)
		if t, ok := r.tenders[p.TenderID]; ok {
			t.Status = TenderOpen
			t.Seed = p.Seed
			t.OpenedAt = p.OpenedAt
		}
	case event.TypeTenderAwarded:
		p := ev.Payload.(event.TenderAwardedPayload)
		if t, ok := r.tenders[p.TenderID]; ok {
			t.Status = TenderAwarded
			t.AwardedSupplierID = p.SupplierID
			t.AwardedContractID = p.ContractID
			t.FeasibleSet = p.FeasibleSet
		}
	case event.TypeTenderClosed:
		p := ev.Payload.(event.TenderClosedPayload)
		if t, ok := r.tenders[p.TenderID]; ok {
			t.Status = TenderClosed
			t.ClosedAt = p.ClosedAt
		}
	}
}

// Get returns a copy of a tender by id.
func (r *TenderRegistry) Get(tenderID string) (Tender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenders[tenderID]
	if !ok {
		return Tender{}, false
	}
	return *t, true
}
