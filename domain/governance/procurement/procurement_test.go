package procurement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/projection"
	kernelerrors "github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/errors"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

func supplier(id string, maxValue money.Amount, certs []string, years int, reputation float64, awarded money.Amount) projection.Supplier {
	return projection.Supplier{
		SupplierID: id, MaxContractValue: maxValue, Certifications: certs,
		YearsInBusiness: years, ReputationScore: reputation, TotalAwarded: awarded,
	}
}

func TestFeasibleSet_FiltersOnAllGates(t *testing.T) {
	minYears := 3
	minRep := 4.0
	req := Requirements{
		EstimatedValue:       money.NewFromInt(100000),
		RequiredCapabilities: []string{"ISO9001"},
		MinYearsExperience:   &minYears,
		MinReputation:        &minRep,
	}

	suppliers := []projection.Supplier{
		supplier("s-ok", money.NewFromInt(200000), []string{"ISO9001", "SOC2"}, 5, 4.5, money.Zero),
		supplier("s-too-small", money.NewFromInt(50000), []string{"ISO9001"}, 5, 4.5, money.Zero),
		supplier("s-no-cert", money.NewFromInt(200000), []string{"SOC2"}, 5, 4.5, money.Zero),
		supplier("s-too-new", money.NewFromInt(200000), []string{"ISO9001"}, 1, 4.5, money.Zero),
		supplier("s-low-rep", money.NewFromInt(200000), []string{"ISO9001"}, 5, 2.0, money.Zero),
	}

	feasible := FeasibleSet(suppliers, req)
	require.Len(t, feasible, 1)
	assert.Equal(t, "s-ok", feasible[0].SupplierID)
}

func TestSelect_EmptyFeasibleSetIsError(t *testing.T) {
	_, err := Select(Rotation, "t1", nil, "seed")
	require.Error(t, err)
	assert.Equal(t, kernelerrors.ErrCodeNoFeasibleSupplier, kernelerrors.Code(err))
}

func TestSelect_Rotation(t *testing.T) {
	feasible := []projection.Supplier{
		supplier("b", money.Zero, nil, 0, 0, money.NewFromInt(500)),
		supplier("a", money.Zero, nil, 0, 0, money.NewFromInt(100)),
		supplier("c", money.Zero, nil, 0, 0, money.NewFromInt(100)),
	}
	id, err := Select(Rotation, "t1", feasible, "")
	require.NoError(t, err)
	assert.Equal(t, "a", id, "least awarded, tie broken lexicographically")
}

func TestSelect_RandomIsReproducible(t *testing.T) {
	feasible := []projection.Supplier{
		supplier("s1", money.Zero, nil, 0, 0, money.Zero),
		supplier("s2", money.Zero, nil, 0, 0, money.Zero),
	}
	id1, err := Select(Random, "t1", feasible, "tender-42")
	require.NoError(t, err)
	id2, err := Select(Random, "t1", feasible, "tender-42")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestSelect_HybridRestrictsToNearMinimum(t *testing.T) {
	feasible := []projection.Supplier{
		supplier("near", money.Zero, nil, 0, 0, money.NewFromInt(105)),
		supplier("min", money.Zero, nil, 0, 0, money.NewFromInt(100)),
		supplier("far", money.Zero, nil, 0, 0, money.NewFromInt(500)),
	}
	id, err := Select(Hybrid, "t1", feasible, "seed-x")
	require.NoError(t, err)
	assert.Contains(t, []string{"near", "min"}, id)
}

func TestSelect_UnknownMechanism(t *testing.T) {
	feasible := []projection.Supplier{supplier("s1", money.Zero, nil, 0, 0, money.Zero)}
	_, err := Select("NOPE", "t1", feasible, "")
	require.Error(t, err)
}
