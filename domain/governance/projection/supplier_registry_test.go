package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/event"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

func TestSupplierRegistry_RegisterAndAward(t *testing.T) {
	r := NewSupplierRegistry()
	now := time.Now().UTC()

	r.Apply(event.Event{
		EventID: newTestEventID(t), Type: event.TypeSupplierRegistered,
		Payload: event.SupplierRegisteredPayload{
			SupplierID: "s1", Name: "Acme Corp", Type: "LLC",
			MaxContractValue: money.NewFromInt(1000000), YearsInBusiness: 5, ReputationScore: 4.2, RegisteredAt: now,
		},
	})

	s, ok := r.Get("s1")
	require.True(t, ok)
	assert.True(t, s.TotalAwarded.Equal(money.Zero))

	r.Apply(event.Event{
		EventID: newTestEventID(t), Type: event.TypeTenderAwarded,
		Payload: event.TenderAwardedPayload{TenderID: "t1", SupplierID: "s1", ContractID: "c1", Value: money.NewFromInt(50000), AwardedAt: now},
	})

	s, _ = r.Get("s1")
	assert.True(t, s.TotalAwarded.Equal(money.NewFromInt(50000)))
	assert.Equal(t, 1, s.ContractCount)

	totals := r.AwardedTotals()
	assert.True(t, totals["s1"].Equal(money.NewFromInt(50000)))
	assert.Len(t, r.All(), 1)
}
