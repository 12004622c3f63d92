package event

import (
	"time"

	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

// --- Workspace -------------------------------------------------------

type WorkspaceCreatedPayload struct {
	WorkspaceID        string
	Name               string
	ParentWorkspaceID  string
	Scope              map[string]string
	CreatedAt          time.Time
}

type WorkspaceArchivedPayload struct {
	WorkspaceID string
	ArchivedAt  time.Time
}

// --- Delegation --------------------------------------------------------

type DecisionRightDelegatedPayload struct {
	DelegationID string
	WorkspaceID  string
	FromActor    string
	ToActor      string
	TTLDays      int
	CreatedAt    time.Time
	ExpiresAt    time.Time
	Visibility   string
}

type DelegationRevokedPayload struct {
	DelegationID string
	RevokedAt    time.Time
}

type DelegationExpiredPayload struct {
	DelegationID string
	ExpiredAt    time.Time
}

// --- Law -----------------------------------------------------------

type LawCreatedPayload struct {
	LawID         string
	WorkspaceID   string
	Title         string
	Scope         map[string]string
	Reversibility string
	Checkpoints   []int
	Params        map[string]string
	CreatedAt     time.Time
}

type LawActivatedPayload struct {
	LawID            string
	ActivatedAt      time.Time
	NextCheckpointAt time.Time
}

type LawReviewTriggeredPayload struct {
	LawID           string
	CheckpointIndex int
	TriggeredAt     time.Time
}

type LawReviewCompletedPayload struct {
	LawID            string
	Outcome          string
	NewStatus        string
	CheckpointIndex  int
	NextCheckpointAt *time.Time
	CompletedAt      time.Time
}

// --- Budget --------------------------------------------------------

type BudgetItemSnapshot struct {
	ItemID          string
	Name            string
	AllocatedAmount money.Amount
	FlexClass       string
	Category        string
}

type BudgetCreatedPayload struct {
	BudgetID    string
	LawID       string
	FiscalYear  int
	Items       []BudgetItemSnapshot
	BudgetTotal money.Amount
	CreatedAt   time.Time
}

type BudgetActivatedPayload struct {
	BudgetID    string
	ActivatedAt time.Time
}

type Adjustment struct {
	ItemID       string
	ChangeAmount money.Amount
}

type AllocationAdjustedPayload struct {
	BudgetID    string
	Adjustments []Adjustment
	AdjustedAt  time.Time
}

type ExpenditureApprovedPayload struct {
	BudgetID   string
	ItemID     string
	Amount     money.Amount
	ApprovedAt time.Time
}

type ExpenditureRejectedPayload struct {
	BudgetID   string
	ItemID     string
	Amount     money.Amount
	GateName   string
	RejectedAt time.Time
}

type BudgetClosedPayload struct {
	BudgetID string
	ClosedAt time.Time
}

// --- Procurement -----------------------------------------------------

type SupplierRegisteredPayload struct {
	SupplierID       string
	Name             string
	Type             string
	MaxContractValue money.Amount
	Certifications   []string
	YearsInBusiness  int
	ReputationScore  float64
	RegisteredAt     time.Time
}

type TenderCreatedPayload struct {
	TenderID             string
	LawID                string
	Title                string
	EstimatedValue       money.Amount
	RequiredCapabilities []string
	MinYearsExperience   *int
	MinReputation        *float64
	SelectionMechanism   string
	CreatedAt            time.Time
}

type TenderOpenedPayload struct {
	TenderID string
	Seed     string
	OpenedAt time.Time
}

type TenderAwardedPayload struct {
	TenderID    string
	SupplierID  string
	ContractID  string
	Value       money.Amount
	FeasibleSet []string
	Seed        string
	AwardedAt   time.Time
}

type TenderClosedPayload struct {
	TenderID string
	ClosedAt time.Time
}

// --- Reflex (tick-engine emitted) -------------------------------------

type DelegationConcentrationWarningPayload struct {
	Gini          float64
	MaxInDegree   int
	MaxActorID    string
	ObservedAt    time.Time
}

type DelegationConcentrationHaltPayload struct {
	Gini        float64
	MaxInDegree int
	MaxActorID  string
	ObservedAt  time.Time
}

type TransparencyEscalatedPayload struct {
	Reason     string
	ObservedAt time.Time
}

type BudgetBalanceViolationDetectedPayload struct {
	BudgetID   string
	Expected   money.Amount
	Actual     money.Amount
	ObservedAt time.Time
}

type BudgetOverspendDetectedPayload struct {
	BudgetID   string
	ItemID     string
	Allocated  money.Amount
	Spent      money.Amount
	ObservedAt time.Time
}

type SupplierConcentrationWarningPayload struct {
	Gini       float64
	ObservedAt time.Time
}

type SupplierConcentrationHaltPayload struct {
	Gini       float64
	ObservedAt time.Time
}
