// Package event defines the kernel's event envelope and the full
// tagged-variant catalogue of event types (spec §3, §9). Every domain
// package emits and projects these event types; no aggregate is
// touched except through them.
package event

import (
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/ids"
)

// StreamType identifies which aggregate kind owns a stream.
type StreamType string

const (
	StreamWorkspace  StreamType = "workspace"
	StreamLaw        StreamType = "law"
	StreamDelegation StreamType = "delegation"
	StreamBudget     StreamType = "budget"
	StreamTender     StreamType = "tender"
	StreamSupplier   StreamType = "supplier"
	StreamSystem     StreamType = "system"
)

// Type is the tagged discriminant for event payloads. Replay must
// treat an unrecognized Type as fatal, never a no-op (spec §9).
type Type string

const (
	TypeWorkspaceCreated  Type = "WorkspaceCreated"
	TypeWorkspaceArchived Type = "WorkspaceArchived"

	TypeDecisionRightDelegated Type = "DecisionRightDelegated"
	TypeDelegationRevoked      Type = "DelegationRevoked"
	TypeDelegationExpired      Type = "DelegationExpired"

	TypeLawCreated          Type = "LawCreated"
	TypeLawActivated        Type = "LawActivated"
	TypeLawReviewTriggered  Type = "LawReviewTriggered"
	TypeLawReviewCompleted  Type = "LawReviewCompleted"

	TypeBudgetCreated      Type = "BudgetCreated"
	TypeBudgetActivated    Type = "BudgetActivated"
	TypeAllocationAdjusted Type = "AllocationAdjusted"
	TypeExpenditureApproved Type = "ExpenditureApproved"
	TypeExpenditureRejected Type = "ExpenditureRejected"
	TypeBudgetClosed       Type = "BudgetClosed"

	TypeTenderCreated  Type = "TenderCreated"
	TypeTenderOpened   Type = "TenderOpened"
	TypeSupplierRegistered Type = "SupplierRegistered"
	TypeTenderAwarded  Type = "TenderAwarded"
	TypeTenderClosed   Type = "TenderClosed"

	// Reflex event types, emitted only by the tick engine (spec §4.6).
	TypeDelegationConcentrationWarning  Type = "DelegationConcentrationWarning"
	TypeDelegationConcentrationHalt     Type = "DelegationConcentrationHalt"
	TypeTransparencyEscalated           Type = "TransparencyEscalated"
	TypeBudgetBalanceViolationDetected  Type = "BudgetBalanceViolationDetected"
	TypeBudgetOverspendDetected         Type = "BudgetOverspendDetected"
	TypeSupplierConcentrationWarning    Type = "SupplierConcentrationWarning"
	TypeSupplierConcentrationHalt       Type = "SupplierConcentrationHalt"
)

// Event is the immutable, append-only envelope persisted by the log
// (spec §3). Payload holds one of the typed structs in payloads.go,
// selected by Type.
type Event struct {
	EventID    ids.EventID
	StreamID   string
	StreamType StreamType
	Version    int64
	CommandID  string
	Type       Type
	OccurredAt time.Time
	ActorID    string
	Payload    any
}
