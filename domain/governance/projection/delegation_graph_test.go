package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/ids"
)

func newTestEventID(t *testing.T) ids.EventID {
	id, err := ids.NewEventID(time.Now().UTC())
	require.NoError(t, err)
	return id
}

func delegatedEvent(t *testing.T, id, from, to string, createdAt, expiresAt time.Time) event.Event {
	return event.Event{
		EventID:    newTestEventID(t),
		StreamID:   id,
		StreamType: event.StreamDelegation,
		Type:       event.TypeDecisionRightDelegated,
		OccurredAt: createdAt,
		Payload: event.DecisionRightDelegatedPayload{
			DelegationID: id,
			WorkspaceID:  "ws-1",
			FromActor:    from,
			ToActor:      to,
			TTLDays:      30,
			CreatedAt:    createdAt,
			ExpiresAt:    expiresAt,
			Visibility:   "PUBLIC",
		},
	}
}

func TestDelegationGraph_ApplyAndGet(t *testing.T) {
	g := NewDelegationGraph()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g.Apply(delegatedEvent(t, "d1", "alice", "bob", now, now.AddDate(0, 0, 30)))

	d, ok := g.Get("d1")
	require.True(t, ok)
	assert.Equal(t, "alice", d.FromActor)
	assert.Equal(t, "bob", d.ToActor)
	assert.True(t, d.Active(now.AddDate(0, 0, 1)))
	assert.False(t, d.Active(now.AddDate(0, 0, 31)))
}

func TestDelegationGraph_RevokeAndExpire(t *testing.T) {
	g := NewDelegationGraph()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g.Apply(delegatedEvent(t, "d1", "alice", "bob", now, now.AddDate(0, 0, 30)))

	g.Apply(event.Event{
		EventID: newTestEventID(t), Type: event.TypeDelegationRevoked,
		Payload: event.DelegationRevokedPayload{DelegationID: "d1", RevokedAt: now.AddDate(0, 0, 5)},
	})
	d, ok := g.Get("d1")
	require.True(t, ok)
	assert.NotNil(t, d.RevokedAt)
	assert.False(t, d.Active(now.AddDate(0, 0, 10)))
}

func TestDelegationGraph_ActiveEdgesAndInDegrees(t *testing.T) {
	g := NewDelegationGraph()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g.Apply(delegatedEvent(t, "d1", "alice", "carol", now, now.AddDate(0, 0, 30)))
	g.Apply(delegatedEvent(t, "d2", "bob", "carol", now, now.AddDate(0, 0, 30)))

	edges := g.ActiveEdges(now)
	assert.ElementsMatch(t, []string{"carol"}, edges["alice"])
	degrees := g.InDegrees(now)
	assert.Equal(t, 2, degrees["carol"])
}

func TestDelegationGraph_ActiveExpiredBefore(t *testing.T) {
	g := NewDelegationGraph()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g.Apply(delegatedEvent(t, "d1", "alice", "bob", now, now.AddDate(0, 0, -1)))
	g.Apply(delegatedEvent(t, "d2", "alice", "carol", now, now.AddDate(0, 0, 30)))

	expired := g.ActiveExpiredBefore(now)
	assert.Equal(t, []string{"d1"}, expired)
}

func TestDelegationGraph_IsHalted(t *testing.T) {
	g := NewDelegationGraph()
	g.Apply(event.Event{
		EventID: newTestEventID(t), StreamID: "system:delegation_gini",
		Type: event.TypeDelegationConcentrationHalt,
		Payload: event.DelegationConcentrationHaltPayload{
			Gini: 0.9, MaxInDegree: 2100, MaxActorID: "bob", ObservedAt: time.Now(),
		},
	})

	assert.True(t, g.IsHalted("system:delegation_gini", "bob", 2100, 1000))
	assert.False(t, g.IsHalted("system:delegation_gini", "carol", 2100, 1000))
	assert.False(t, g.IsHalted("system:other", "bob", 2100, 1000))
}
