// Package command implements the kernel's command handlers (spec
// §4.4): one deterministic pure function per command, each of type
// (command, command_id, actor_id, projections, now, policy) →
// events[] | error. Handlers never perform I/O and never read the
// clock or RNG beyond what is passed in; the façade is solely
// responsible for loading stream state and appending the result.
package command

import (
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/projection"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/ids"
)

// Projections bundles the read models a command handler may consult.
// The façade keeps all of them mutually consistent (spec §4.8); a
// given handler only reads the fields relevant to its aggregate.
type Projections struct {
	Workspaces *projection.WorkspaceRegistry
	Delegation *projection.DelegationGraph
	Laws       *projection.LawRegistry
	Budgets    *projection.BudgetRegistry
	Suppliers  *projection.SupplierRegistry
	Tenders    *projection.TenderRegistry
	Contracts  *projection.ContractRegistry
}

func newEvent(commandID, actorID string, typ event.Type, now time.Time, payload any) (event.Event, error) {
	id, err := ids.NewEventID(now)
	if err != nil {
		return event.Event{}, err
	}
	return event.Event{
		EventID:    id,
		CommandID:  commandID,
		Type:       typ,
		OccurredAt: now,
		ActorID:    actorID,
		Payload:    payload,
	}, nil
}
