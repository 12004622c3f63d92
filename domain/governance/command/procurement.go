package command

import (
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/procurement"
	kernelerrors "github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/errors"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

// RegisterSupplier onboards a new supplier, available to future tenders.
type RegisterSupplier struct {
	CommandID        string
	ActorID          string
	SupplierID       string
	Name             string
	Type             string
	MaxContractValue money.Amount
	Certifications   []string
	YearsInBusiness  int
	ReputationScore  float64
}

func (c RegisterSupplier) Handle(now time.Time, _ *Projections, _ policy.SafetyPolicy) ([]event.Event, error) {
	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeSupplierRegistered, now, event.SupplierRegisteredPayload{
		SupplierID:       c.SupplierID,
		Name:             c.Name,
		Type:             c.Type,
		MaxContractValue: c.MaxContractValue,
		Certifications:   c.Certifications,
		YearsInBusiness:  c.YearsInBusiness,
		ReputationScore:  c.ReputationScore,
		RegisteredAt:     now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}

// CreateTender opens a new procurement tender scoped to a law.
type CreateTender struct {
	CommandID            string
	ActorID              string
	TenderID             string
	LawID                string
	Title                string
	EstimatedValue       money.Amount
	RequiredCapabilities []string
	MinYearsExperience   *int
	MinReputation        *float64
	SelectionMechanism   procurement.Mechanism
}

func (c CreateTender) Handle(now time.Time, _ *Projections, _ policy.SafetyPolicy) ([]event.Event, error) {
	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeTenderCreated, now, event.TenderCreatedPayload{
		TenderID:             c.TenderID,
		LawID:                c.LawID,
		Title:                c.Title,
		EstimatedValue:       c.EstimatedValue,
		RequiredCapabilities: c.RequiredCapabilities,
		MinYearsExperience:   c.MinYearsExperience,
		MinReputation:        c.MinReputation,
		SelectionMechanism:   string(c.SelectionMechanism),
		CreatedAt:            now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}

// OpenTender opens a tender for award, fixing the caller-supplied seed
// that RANDOM/HYBRID selection will hash (spec §4.7).
type OpenTender struct {
	CommandID string
	ActorID   string
	TenderID  string
	Seed      string
}

func (c OpenTender) Handle(now time.Time, p *Projections, _ policy.SafetyPolicy) ([]event.Event, error) {
	t, ok := p.Tenders.Get(c.TenderID)
	if !ok {
		return nil, kernelerrors.UnknownAggregate(c.TenderID)
	}
	if t.Status != "CREATED" {
		return nil, kernelerrors.IllegalStatusTransition("tender", string(t.Status), "CREATED")
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeTenderOpened, now, event.TenderOpenedPayload{
		TenderID: c.TenderID,
		Seed:     c.Seed,
		OpenedAt: now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}

// AwardTender runs the feasibility pipeline and the tender's selection
// mechanism over the supplier registry and awards a contract.
type AwardTender struct {
	CommandID  string
	ActorID    string
	TenderID   string
	ContractID string
}

func (c AwardTender) Handle(now time.Time, p *Projections, _ policy.SafetyPolicy) ([]event.Event, error) {
	t, ok := p.Tenders.Get(c.TenderID)
	if !ok {
		return nil, kernelerrors.UnknownAggregate(c.TenderID)
	}
	if t.Status != "OPEN" {
		return nil, kernelerrors.IllegalStatusTransition("tender", string(t.Status), "OPEN")
	}

	req := procurement.Requirements{
		EstimatedValue:       t.EstimatedValue,
		RequiredCapabilities: t.RequiredCapabilities,
		MinYearsExperience:   t.MinYearsExperience,
		MinReputation:        t.MinReputation,
	}
	feasible := procurement.FeasibleSet(p.Suppliers.All(), req)

	supplierID, err := procurement.Select(procurement.Mechanism(t.SelectionMechanism), c.TenderID, feasible, t.Seed)
	if err != nil {
		return nil, err
	}

	feasibleIDs := make([]string, len(feasible))
	for i, s := range feasible {
		feasibleIDs[i] = s.SupplierID
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeTenderAwarded, now, event.TenderAwardedPayload{
		TenderID:    c.TenderID,
		SupplierID:  supplierID,
		ContractID:  c.ContractID,
		Value:       t.EstimatedValue,
		FeasibleSet: feasibleIDs,
		Seed:        t.Seed,
		AwardedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}

// CloseTender closes a tender after award (or without one).
type CloseTender struct {
	CommandID string
	ActorID   string
	TenderID  string
}

func (c CloseTender) Handle(now time.Time, p *Projections, _ policy.SafetyPolicy) ([]event.Event, error) {
	if _, ok := p.Tenders.Get(c.TenderID); !ok {
		return nil, kernelerrors.UnknownAggregate(c.TenderID)
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeTenderClosed, now, event.TenderClosedPayload{
		TenderID: c.TenderID,
		ClosedAt: now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}
