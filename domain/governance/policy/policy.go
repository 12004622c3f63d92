// Package policy holds the kernel's SafetyPolicy (spec §4.7): the
// single immutable configuration value threaded through every command
// handler, invariant check, and tick rule. There is no global mutable
// configuration; a policy is always an explicit function argument.
package policy

// FlexClass identifies a budget item's allowed per-adjustment step size.
type FlexClass string

const (
	FlexCritical     FlexClass = "CRITICAL"
	FlexImportant    FlexClass = "IMPORTANT"
	FlexAspirational FlexClass = "ASPIRATIONAL"
)

// BudgetBalanceMode selects how AdjustAllocation batches are checked
// for zero-sum. STRICT is the only mode the kernel implements today.
type BudgetBalanceMode string

const (
	BudgetBalanceStrict BudgetBalanceMode = "STRICT"
)

// Reversibility classifies how readily a law can be undone.
type Reversibility string

const (
	Reversible     Reversibility = "REVERSIBLE"
	SemiReversible Reversibility = "SEMI_REVERSIBLE"
	Irreversible   Reversibility = "IRREVERSIBLE"
)

// SafetyPolicy is the kernel's immutable configuration record. Every
// field here is read, never mutated, by invariant and tick code.
type SafetyPolicy struct {
	MaxDelegationTTLDays int

	DelegationGiniWarn float64
	DelegationGiniHalt float64

	DelegationInDegreeWarn int
	DelegationInDegreeHalt int

	BudgetFlexLimits map[FlexClass]float64
	BudgetBalanceMode BudgetBalanceMode

	SupplierGiniWarn float64
	SupplierGiniHalt float64

	// CheckpointDefaults maps a law's reversibility class to the
	// checkpoint schedule (days from activation) CreateLaw falls back
	// to when the caller does not supply one. All three classes use
	// the same schedule today: the source's stricter-schedule-for-
	// IRREVERSIBLE plan was never finalized, so this kernel preserves
	// uniform treatment rather than silently inventing a stricter one
	// (see the Open Question this resolves, recorded in DESIGN.md).
	CheckpointDefaults map[Reversibility][]int
}

// Default returns the kernel's out-of-the-box policy.
func Default() SafetyPolicy {
	return SafetyPolicy{
		MaxDelegationTTLDays: 365,

		DelegationGiniWarn: 0.6,
		DelegationGiniHalt: 0.8,

		DelegationInDegreeWarn: 500,
		DelegationInDegreeHalt: 1000,

		BudgetFlexLimits: map[FlexClass]float64{
			FlexCritical:     0.05,
			FlexImportant:    0.15,
			FlexAspirational: 0.50,
		},
		BudgetBalanceMode: BudgetBalanceStrict,

		SupplierGiniWarn: 0.3,
		SupplierGiniHalt: 0.5,

		CheckpointDefaults: map[Reversibility][]int{
			Reversible:     {30, 90, 180, 365},
			SemiReversible: {30, 90, 180, 365},
			Irreversible:   {30, 90, 180, 365},
		},
	}
}

// FlexCeiling returns the step-size ceiling for a flex class, and
// whether the class was recognized.
func (p SafetyPolicy) FlexCeiling(class FlexClass) (float64, bool) {
	ceiling, ok := p.BudgetFlexLimits[class]
	return ceiling, ok
}

// LawStatus mirrors the Law aggregate's lifecycle states (spec §2),
// kept here because policy-level validation (status transitions) and
// invariant code both need it without importing the aggregate package.
type LawStatus string

const (
	LawDraft    LawStatus = "DRAFT"
	LawActive   LawStatus = "ACTIVE"
	LawReview   LawStatus = "REVIEW"
	LawSunset   LawStatus = "SUNSET"
	LawArchived LawStatus = "ARCHIVED"
)

// legalLawTransitions enumerates the Law lifecycle's allowed edges
// (spec §2): DRAFT → ACTIVE → REVIEW → (ACTIVE | SUNSET); SUNSET → ARCHIVED.
var legalLawTransitions = map[LawStatus]map[LawStatus]bool{
	LawDraft:  {LawActive: true},
	LawActive: {LawReview: true},
	LawReview: {LawActive: true, LawSunset: true},
	LawSunset: {LawArchived: true},
}

// IsLegalLawTransition reports whether moving a law from `from` to `to`
// is allowed by the lifecycle state machine.
func IsLegalLawTransition(from, to LawStatus) bool {
	return legalLawTransitions[from][to]
}

// ReversibilityFromString validates a raw reversibility string.
func ReversibilityFromString(s string) (Reversibility, bool) {
	switch Reversibility(s) {
	case Reversible, SemiReversible, Irreversible:
		return Reversibility(s), true
	default:
		return "", false
	}
}

// StreamID builds the synthetic stream id reflex events for a given
// system-level check are appended under (spec §4.6).
func StreamID(name string) string {
	return "system:" + name
}

// Known synthetic tick-engine stream names.
const (
	StreamDelegationGini = "delegation_gini"
	StreamSupplierGini   = "supplier_gini"
	StreamTick           = "tick"
)
