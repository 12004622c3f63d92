// Package invariant holds the kernel's pure validation functions
// (spec §4.3): no I/O, no clock access beyond an explicit `now`
// argument, and no event-log dependency. Command handlers call these
// before building new events; a failure here is always a
// *errors.KernelError with the VAL_ prefix.
package invariant

import (
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
	kernelerrors "github.com/symbolic-labs-pub/freedom-that-lasts/infrastructure/errors"
	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

// TTLBound validates a delegation's requested TTL against the policy
// ceiling (spec §4.3: ttl_days ∈ [1, max_delegation_ttl_days]).
func TTLBound(ttlDays int, p policy.SafetyPolicy) error {
	if ttlDays < 1 || ttlDays > p.MaxDelegationTTLDays {
		return kernelerrors.TTLExceedsMaximum(ttlDays, p.MaxDelegationTTLDays)
	}
	return nil
}

// WouldCreateCycle reports whether adding an edge from→to to the given
// active-delegation adjacency would create a cycle in the
// decision-right graph (spec §4.3). edges maps an actor to the actors
// it has currently delegated to.
func WouldCreateCycle(edges map[string][]string, from, to string) bool {
	if from == to {
		return true
	}
	// A cycle forms iff `to` can already reach `from` without the new edge.
	visited := make(map[string]bool)
	var dfs func(node string) bool
	dfs = func(node string) bool {
		if node == from {
			return true
		}
		if visited[node] {
			return false
		}
		visited[node] = true
		for _, next := range edges[node] {
			if dfs(next) {
				return true
			}
		}
		return false
	}
	return dfs(to)
}

// CheckAcyclic validates a proposed from→to edge and returns a
// structured error naming the cycle participants if it would close one.
func CheckAcyclic(edges map[string][]string, from, to string) error {
	if WouldCreateCycle(edges, from, to) {
		return kernelerrors.DelegationCycleDetected(from, to)
	}
	return nil
}

// CheckpointsMonotonic validates a law's checkpoint schedule is a
// finite, non-empty, strictly increasing sequence of positive integers
// (spec §2, §4.3).
func CheckpointsMonotonic(checkpoints []int) error {
	if len(checkpoints) == 0 {
		return kernelerrors.CheckpointScheduleInvalid("checkpoint schedule must be non-empty")
	}
	prev := 0
	for _, c := range checkpoints {
		if c <= 0 {
			return kernelerrors.CheckpointScheduleInvalid("checkpoint days must be positive")
		}
		if c <= prev {
			return kernelerrors.CheckpointScheduleInvalid("checkpoint days must be strictly increasing")
		}
		prev = c
	}
	return nil
}

// LawStatusTransition validates a proposed Law lifecycle transition
// (spec §2).
func LawStatusTransition(from, to policy.LawStatus) error {
	if !policy.IsLegalLawTransition(from, to) {
		return kernelerrors.IllegalStatusTransition("law", string(from), string(to))
	}
	return nil
}

// FlexStepSize validates a single budget item adjustment against its
// flex-class ceiling (spec §4.3): |Δ|/allocated ≤ ceiling. A zero-base
// item may never be adjusted by division, and cutting an item to zero
// while it has spend is always rejected regardless of class.
func FlexStepSize(itemID string, delta, allocated money.Amount, class policy.FlexClass, p policy.SafetyPolicy) error {
	ceiling, ok := p.FlexCeiling(class)
	if !ok {
		return kernelerrors.CheckpointScheduleInvalid("unknown flex class " + string(class))
	}
	ceilingAmount := money.FromFloat(ceiling)
	if allocated.IsZero() {
		return kernelerrors.FlexStepSizeViolation(itemID, "undefined", ceilingAmount.String())
	}
	ratio := money.StepRatio(delta, allocated)
	if ratio.GreaterThan(ceilingAmount) {
		return kernelerrors.FlexStepSizeViolation(itemID, ratio.String(), ceilingAmount.String())
	}
	return nil
}

// ZeroSumBatch validates that an AdjustAllocation batch's changes sum
// to exactly zero (spec §4.3, STRICT budget_balance_mode).
func ZeroSumBatch(budgetID string, changes []money.Amount, mode policy.BudgetBalanceMode) error {
	if mode != policy.BudgetBalanceStrict {
		return nil
	}
	if !money.SumZero(changes) {
		return kernelerrors.BudgetBalanceViolation(budgetID)
	}
	return nil
}

// AllocationFloor validates that a new allocated amount never falls
// below the item's already-spent amount (spec §4.3).
func AllocationFloor(itemID string, newAllocated, spent money.Amount) error {
	if newAllocated.LessThan(spent) {
		return kernelerrors.AllocationBelowSpending(itemID)
	}
	return nil
}

// BudgetTotalImmutable validates that an adjustment batch does not
// change the budget's fixed total (spec §2: budget_total is set at
// creation and never mutated by AdjustAllocation, only redistributed).
func BudgetTotalImmutable(changes []money.Amount) error {
	if !money.SumZero(changes) {
		return kernelerrors.CheckpointScheduleInvalid("adjustment batch would change the immutable budget total")
	}
	return nil
}

// CheckpointScheduleTime validates next_checkpoint_at is strictly
// after activated_at, the invariant tick replay must never violate
// (spec §9: "For all laws in ACTIVE, next_checkpoint_at > activated_at").
func CheckpointScheduleTime(activatedAt, nextCheckpointAt time.Time) error {
	if !nextCheckpointAt.After(activatedAt) {
		return kernelerrors.CheckpointScheduleInvalid("next_checkpoint_at must be after activated_at")
	}
	return nil
}
