package projection

import (
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/stats"
)

// RiskLevel mirrors the 0/1/2 encoding exposed to the external metrics
// sink (spec: "risk level encoded as 0/1/2").
type RiskLevel int

const (
	RiskNone RiskLevel = 0
	RiskWarn RiskLevel = 1
	RiskHalt RiskLevel = 2
)

// FreedomHealth is the on-demand synthesis of concentration metrics
// and overdue-review counts into a single risk label (spec §5: "not
// stored"). It is never projected from events directly; Compute folds
// the other projections' current state on every call.
type FreedomHealth struct {
	DelegationGini     float64
	SupplierGini       float64
	MaxInDegree        int
	OverdueReviewCount int
	RiskLevel          RiskLevel
}

// Compute synthesizes a FreedomHealth snapshot from the live
// projections, as of now.
func Compute(graph *DelegationGraph, suppliers *SupplierRegistry, laws *LawRegistry, p policy.SafetyPolicy, now time.Time) FreedomHealth {
	inDegrees := graph.InDegrees(now)
	values := make([]float64, 0, len(inDegrees))
	maxInDegree := 0
	for _, d := range inDegrees {
		values = append(values, float64(d))
		if d > maxInDegree {
			maxInDegree = d
		}
	}
	delegationGini := stats.Gini(values)

	totals := suppliers.AwardedTotals()
	supplierValues := make([]float64, 0, len(totals))
	for _, t := range totals {
		f, _ := t.Float64()
		supplierValues = append(supplierValues, f)
	}
	supplierGini := stats.Gini(supplierValues)

	overdue := len(laws.OverdueCheckpoints(now))

	risk := RiskNone
	switch {
	case delegationGini >= p.DelegationGiniHalt || maxInDegree >= p.DelegationInDegreeHalt || supplierGini >= p.SupplierGiniHalt:
		risk = RiskHalt
	case delegationGini >= p.DelegationGiniWarn || maxInDegree >= p.DelegationInDegreeWarn || supplierGini >= p.SupplierGiniWarn || overdue > 0:
		risk = RiskWarn
	}

	return FreedomHealth{
		DelegationGini:     delegationGini,
		SupplierGini:       supplierGini,
		MaxInDegree:        maxInDegree,
		OverdueReviewCount: overdue,
		RiskLevel:          risk,
	}
}
