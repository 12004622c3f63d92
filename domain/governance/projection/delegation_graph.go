// Package projection holds the kernel's read-side projections (spec
// §5): replayable folds over the event log that command handlers and
// the tick engine query, never the event log itself.
package projection

import (
	"sync"
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
)

// Delegation is a projected view of a DecisionRightDelegated aggregate.
type Delegation struct {
	DelegationID string
	WorkspaceID  string
	FromActor    string
	ToActor      string
	TTLDays      int
	CreatedAt    time.Time
	ExpiresAt    time.Time
	Visibility   string
	RevokedAt    *time.Time
	ExpiredAt    *time.Time
}

// Active reports whether the delegation is neither revoked nor
// expired and has not yet passed its expiry instant (spec §2).
func (d Delegation) Active(now time.Time) bool {
	return d.RevokedAt == nil && d.ExpiredAt == nil && !now.After(d.ExpiresAt)
}

// DelegationGraph indexes delegations by id and maintains the active
// decision-right adjacency used for acyclicity checks and
// concentration metrics (spec §5).
type DelegationGraph struct {
	mu          sync.RWMutex
	delegations map[string]*Delegation
	// lastHalt records the most recent DelegationConcentrationHalt
	// observation, per synthetic stream, so handlers can refuse new
	// concentrating delegations (spec §4.6 halt semantics).
	lastHalt map[string]haltState
	// lastObservation records the most recent concentration reading
	// (warn or halt), per synthetic stream, so the tick engine can
	// skip re-emitting a reflex event when nothing has changed since
	// the last tick (spec §4.6: "idempotent within a given now and
	// projection state").
	lastObservation map[string]haltState
}

type haltState struct {
	gini        float64
	maxInDegree int
	maxActorID  string
	observedAt  time.Time
}

// NewDelegationGraph creates an empty graph.
func NewDelegationGraph() *DelegationGraph {
	return &DelegationGraph{
		delegations:     make(map[string]*Delegation),
		lastHalt:        make(map[string]haltState),
		lastObservation: make(map[string]haltState),
	}
}

// Apply folds a single event into the graph. Unrecognized event types
// are ignored: this projection only cares about delegation-stream and
// reflex events.
func (g *DelegationGraph) Apply(ev event.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch ev.Type {
	case event.TypeDecisionRightDelegated:
		p := ev.Payload.(event.DecisionRightDelegatedPayload)
		g.delegations[p.DelegationID] = &Delegation{
			DelegationID: p.DelegationID,
			WorkspaceID:  p.WorkspaceID,
			FromActor:    p.FromActor,
			ToActor:      p.ToActor,
			TTLDays:      p.TTLDays,
			CreatedAt:    p.CreatedAt,
			ExpiresAt:    p.ExpiresAt,
			Visibility:   p.Visibility,
		}
	case event.TypeDelegationRevoked:
		p := ev.Payload.(event.DelegationRevokedPayload)
		if d, ok := g.delegations[p.DelegationID]; ok {
			revokedAt := p.RevokedAt
			d.RevokedAt = &revokedAt
		}
	case event.TypeDelegationExpired:
		p := ev.Payload.(event.DelegationExpiredPayload)
		if d, ok := g.delegations[p.DelegationID]; ok {
			expiredAt := p.ExpiredAt
			d.ExpiredAt = &expiredAt
		}
	case event.TypeDelegationConcentrationHalt:
		p := ev.Payload.(event.DelegationConcentrationHaltPayload)
		state := haltState{gini: p.Gini, maxInDegree: p.MaxInDegree, maxActorID: p.MaxActorID, observedAt: p.ObservedAt}
		g.lastHalt[ev.StreamID] = state
		g.lastObservation[ev.StreamID] = state
	case event.TypeDelegationConcentrationWarning:
		p := ev.Payload.(event.DelegationConcentrationWarningPayload)
		g.lastObservation[ev.StreamID] = haltState{gini: p.Gini, maxInDegree: p.MaxInDegree, maxActorID: p.MaxActorID, observedAt: p.ObservedAt}
	}
}

// Get returns a copy of a delegation by id.
func (g *DelegationGraph) Get(delegationID string) (Delegation, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, ok := g.delegations[delegationID]
	if !ok {
		return Delegation{}, false
	}
	return *d, true
}

// ActiveEdges returns the adjacency of active delegations as of now:
// actor -> actors it has delegated decision-right to.
func (g *DelegationGraph) ActiveEdges(now time.Time) map[string][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := make(map[string][]string)
	for _, d := range g.delegations {
		if d.Active(now) {
			edges[d.FromActor] = append(edges[d.FromActor], d.ToActor)
		}
	}
	return edges
}

// InDegrees returns, for every actor that is the target of at least
// one active delegation, how many active delegations target it.
func (g *DelegationGraph) InDegrees(now time.Time) map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	degrees := make(map[string]int)
	for _, d := range g.delegations {
		if d.Active(now) {
			degrees[d.ToActor]++
		}
	}
	return degrees
}

// ActiveExpiredBefore returns the ids of delegations that are still
// logically active (not revoked, not yet marked expired) but whose
// expires_at has already passed as of now: the tick engine's expiry
// rule candidate set (spec §4.6 rule 1).
func (g *DelegationGraph) ActiveExpiredBefore(now time.Time) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ids []string
	for id, d := range g.delegations {
		if d.RevokedAt == nil && d.ExpiredAt == nil && now.After(d.ExpiresAt) {
			ids = append(ids, id)
		}
	}
	return ids
}

// UnchangedSince reports whether a newly computed concentration
// reading is identical to the last one recorded for the given
// synthetic stream, letting the tick engine skip a redundant reflex
// event (spec §4.6 idempotency requirement).
func (g *DelegationGraph) UnchangedSince(streamID string, gini float64, maxInDegree int, maxActorID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	last, ok := g.lastObservation[streamID]
	if !ok {
		return false
	}
	return last.gini == gini && last.maxInDegree == maxInDegree && last.maxActorID == maxActorID
}

// IsHalted reports whether the most recent concentration halt for the
// given synthetic stream would still block a new delegation targeting
// toActor: the halt must have been raised against toActor and the
// caller-supplied currentInDegree must be at or above inDegreeHalt.
func (g *DelegationGraph) IsHalted(streamID, toActor string, currentInDegree, inDegreeHalt int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	halt, ok := g.lastHalt[streamID]
	if !ok {
		return false
	}
	return halt.maxActorID == toActor && currentInDegree >= inDegreeHalt
}
