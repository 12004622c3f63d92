// Package procurement implements the kernel's feasibility gate
// pipeline and selection mechanisms (spec §4.7). Selection never
// scores suppliers; it only filters to a feasible set and then picks
// deterministically within it.
package procurement

import (
	"crypto/sha256"
	"math/big"
	"sort"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/projection"
	kernelerrors "github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/errors"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

// Mechanism selects among a feasible set.
type Mechanism string

const (
	Rotation Mechanism = "ROTATION"
	Random   Mechanism = "RANDOM"
	Hybrid   Mechanism = "HYBRID"
)

// Requirements describes the gates a tender imposes on candidate suppliers.
type Requirements struct {
	EstimatedValue       money.Amount
	RequiredCapabilities []string
	MinYearsExperience   *int
	MinReputation        *float64
}

// FeasibleSet applies the binary gate pipeline — capacity,
// certification, experience, reputation — to every supplier, in that
// order, and returns those that pass all of them (spec §4.7).
func FeasibleSet(suppliers []projection.Supplier, req Requirements) []projection.Supplier {
	var feasible []projection.Supplier
	for _, s := range suppliers {
		if !passesCapacity(s, req) {
			continue
		}
		if !passesCertification(s, req) {
			continue
		}
		if !passesExperience(s, req) {
			continue
		}
		if !passesReputation(s, req) {
			continue
		}
		feasible = append(feasible, s)
	}
	return feasible
}

func passesCapacity(s projection.Supplier, req Requirements) bool {
	return s.MaxContractValue.GreaterThanOrEqual(req.EstimatedValue)
}

func passesCertification(s projection.Supplier, req Requirements) bool {
	have := make(map[string]bool, len(s.Certifications))
	for _, c := range s.Certifications {
		have[c] = true
	}
	for _, required := range req.RequiredCapabilities {
		if !have[required] {
			return false
		}
	}
	return true
}

func passesExperience(s projection.Supplier, req Requirements) bool {
	if req.MinYearsExperience == nil {
		return true
	}
	return s.YearsInBusiness >= *req.MinYearsExperience
}

func passesReputation(s projection.Supplier, req Requirements) bool {
	if req.MinReputation == nil {
		return true
	}
	return s.ReputationScore >= *req.MinReputation
}

// Select runs the named mechanism over a feasible set, given the
// awarded totals needed by ROTATION/HYBRID and a seed string needed by
// RANDOM/HYBRID (spec §4.7). An empty feasible set is always a
// NoFeasibleSupplier error, never delegated to the mechanism.
func Select(mechanism Mechanism, tenderID string, feasible []projection.Supplier, seed string) (string, error) {
	if len(feasible) == 0 {
		return "", kernelerrors.NoFeasibleSupplier(tenderID)
	}

	switch mechanism {
	case Rotation:
		return selectRotation(feasible), nil
	case Random:
		return selectRandom(feasible, seed), nil
	case Hybrid:
		return selectHybrid(feasible, seed), nil
	default:
		return "", kernelerrors.NoFeasibleSupplier(tenderID)
	}
}

// selectRotation picks the supplier with the least total_value_awarded,
// ties broken lexicographically by supplier_id.
func selectRotation(feasible []projection.Supplier) string {
	sorted := sortedByID(feasible)
	best := sorted[0]
	for _, s := range sorted[1:] {
		if s.TotalAwarded.LessThan(best.TotalAwarded) {
			best = s
		}
	}
	return best.SupplierID
}

// selectRandom sorts the feasible set by supplier_id, hashes the seed
// with SHA-256, and indexes modulo n, so that the same seed and
// feasible set always reproduce the same award (spec §4.7).
func selectRandom(feasible []projection.Supplier, seed string) string {
	sorted := sortedByID(feasible)
	sum := sha256.Sum256([]byte(seed))
	h := new(big.Int).SetBytes(sum[:])
	n := big.NewInt(int64(len(sorted)))
	index := new(big.Int).Mod(h, n).Int64()
	return sorted[index].SupplierID
}

// selectHybrid restricts the feasible set to suppliers whose
// total_value_awarded is within 10% of the minimum awarded in the
// feasible set, then applies RANDOM over that restricted set.
func selectHybrid(feasible []projection.Supplier, seed string) string {
	sorted := sortedByID(feasible)
	minAwarded := sorted[0].TotalAwarded
	for _, s := range sorted[1:] {
		if s.TotalAwarded.LessThan(minAwarded) {
			minAwarded = s.TotalAwarded
		}
	}
	ceiling := minAwarded.Mul(money.FromFloat(1.1))

	var restricted []projection.Supplier
	for _, s := range sorted {
		if s.TotalAwarded.LessThanOrEqual(ceiling) {
			restricted = append(restricted, s)
		}
	}
	return selectRandom(restricted, seed)
}

func sortedByID(suppliers []projection.Supplier) []projection.Supplier {
	sorted := make([]projection.Supplier, len(suppliers))
	copy(sorted, suppliers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].SupplierID < sorted[j].SupplierID
	})
	return sorted
}
