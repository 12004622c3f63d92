package command

import (
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/invariant"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
	kernelerrors "github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/errors"
)

// DelegateDecisionRight creates a time-bound delegation of decision
// right from one actor to another within a workspace.
type DelegateDecisionRight struct {
	CommandID    string
	ActorID      string
	DelegationID string
	WorkspaceID  string
	FromActor    string
	ToActor      string
	TTLDays      int
	Visibility   string
}

// Handle validates the TTL bound, acyclicity, workspace existence and
// activity, from≠to, and the current concentration-halt state before
// emitting DecisionRightDelegated (spec §4.4, §4.6 halt semantics).
func (c DelegateDecisionRight) Handle(now time.Time, p *Projections, safety policy.SafetyPolicy) ([]event.Event, error) {
	if c.FromActor == c.ToActor {
		return nil, kernelerrors.DelegationCycleDetected(c.FromActor, c.ToActor)
	}

	ws, ok := p.Workspaces.Get(c.WorkspaceID)
	if !ok {
		return nil, kernelerrors.UnknownAggregate(c.WorkspaceID)
	}
	if ws.Archived() {
		return nil, kernelerrors.IllegalStatusTransition("workspace", "ACTIVE", "ARCHIVED")
	}

	if err := invariant.TTLBound(c.TTLDays, safety); err != nil {
		return nil, err
	}

	edges := p.Delegation.ActiveEdges(now)
	if err := invariant.CheckAcyclic(edges, c.FromActor, c.ToActor); err != nil {
		return nil, err
	}

	inDegree := p.Delegation.InDegrees(now)[c.ToActor]
	if inDegree >= safety.DelegationInDegreeHalt {
		return nil, kernelerrors.ConcentrationHalted(c.ToActor)
	}
	if p.Delegation.IsHalted(policy.StreamID(policy.StreamDelegationGini), c.ToActor, inDegree, safety.DelegationInDegreeHalt) {
		return nil, kernelerrors.ConcentrationHalted(c.ToActor)
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeDecisionRightDelegated, now, event.DecisionRightDelegatedPayload{
		DelegationID: c.DelegationID,
		WorkspaceID:  c.WorkspaceID,
		FromActor:    c.FromActor,
		ToActor:      c.ToActor,
		TTLDays:      c.TTLDays,
		CreatedAt:    now,
		ExpiresAt:    now.AddDate(0, 0, c.TTLDays),
		Visibility:   c.Visibility,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}

// RevokeDelegation revokes an existing, currently active delegation.
type RevokeDelegation struct {
	CommandID    string
	ActorID      string
	DelegationID string
}

func (c RevokeDelegation) Handle(now time.Time, p *Projections, _ policy.SafetyPolicy) ([]event.Event, error) {
	d, ok := p.Delegation.Get(c.DelegationID)
	if !ok {
		return nil, kernelerrors.UnknownAggregate(c.DelegationID)
	}
	if !d.Active(now) {
		return nil, kernelerrors.IllegalStatusTransition("delegation", "ACTIVE", "INACTIVE")
	}

	ev, err := newEvent(c.CommandID, c.ActorID, event.TypeDelegationRevoked, now, event.DelegationRevokedPayload{
		DelegationID: c.DelegationID,
		RevokedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{ev}, nil
}
