package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

func TestTenderRegistry_FullLifecycle(t *testing.T) {
	r := NewTenderRegistry()
	now := time.Now().UTC()

	r.Apply(event.Event{
		EventID: newTestEventID(t), Type: event.TypeTenderCreated,
		Payload: event.TenderCreatedPayload{
			TenderID: "t1", LawID: "law-1", Title: "Road Maintenance",
			EstimatedValue: money.NewFromInt(200000), SelectionMechanism: "ROTATION", CreatedAt: now,
		},
	})
	tn, ok := r.Get("t1")
	require.True(t, ok)
	assert.Equal(t, TenderCreated, tn.Status)

	r.Apply(event.Event{
		EventID: newTestEventID(t), Type: event.TypeTenderOpened,
		Payload: event.TenderOpenedPayload{TenderID: "t1", Seed: "tender-42", OpenedAt: now},
	})
	tn, _ = r.Get("t1")
	assert.Equal(t, TenderOpen, tn.Status)
	assert.Equal(t, "tender-42", tn.Seed)

	r.Apply(event.Event{
		EventID: newTestEventID(t), Type: event.TypeTenderAwarded,
		Payload: event.TenderAwardedPayload{
			TenderID: "t1", SupplierID: "s1", ContractID: "c1", Value: money.NewFromInt(200000),
			FeasibleSet: []string{"s1", "s2"}, AwardedAt: now,
		},
	})
	tn, _ = r.Get("t1")
	assert.Equal(t, TenderAwarded, tn.Status)
	assert.Equal(t, "s1", tn.AwardedSupplierID)
	assert.ElementsMatch(t, []string{"s1", "s2"}, tn.FeasibleSet)

	r.Apply(event.Event{
		EventID: newTestEventID(t), Type: event.TypeTenderClosed,
		Payload: event.TenderClosedPayload{TenderID: "t1", ClosedAt: now},
	})
	tn, _ = r.Get("t1")
	assert.Equal(t, TenderClosed, tn.Status)
}

func TestContractRegistry_AwardCreatesContract(t *testing.T) {
	r := NewContractRegistry()
	now := time.Now().UTC()
	r.Apply(event.Event{
		EventID: newTestEventID(t), Type: event.TypeTenderAwarded,
		Payload: event.TenderAwardedPayload{TenderID: "t1", SupplierID: "s1", ContractID: "c1", Value: money.NewFromInt(1000), AwardedAt: now},
	})

	c, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "s1", c.SupplierID)
	assert.Len(t, r.BySupplier("s1"), 1)
	assert.Empty(t, r.BySupplier("s2"))
}
