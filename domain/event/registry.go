package event

// NewPayload returns a pointer to a zero-valued payload struct for t,
// used by eventlog implementations to unmarshal stored JSON into the
// concrete type before handing the Event to a projection. An
// unrecognized Type returns nil: callers must treat that as fatal
// corruption, never a skippable event (spec §9).
func NewPayload(t Type) any {
	switch t {
	case TypeWorkspaceCreated:
		return &WorkspaceCreatedPayload{}
	case TypeWorkspaceArchived:
		return &WorkspaceArchivedPayload{}
	case TypeDecisionRightDelegated:
		return &DecisionRightDelegatedPayload{}
	case TypeDelegationRevoked:
		return &DelegationRevokedPayload{}
	case TypeDelegationExpired:
		return &DelegationExpiredPayload{}
	case TypeLawCreated:
		return &LawCreatedPayload{}
	case TypeLawActivated:
		return &LawActivatedPayload{}
	case TypeLawReviewTriggered:
		return &LawReviewTriggeredPayload{}
	case TypeLawReviewCompleted:
		return &LawReviewCompletedPayload{}
	case TypeBudgetCreated:
		return &BudgetCreatedPayload{}
	case TypeBudgetActivated:
		return &BudgetActivatedPayload{}
	case TypeAllocationAdjusted:
		return &AllocationAdjustedPayload{}
	case TypeExpenditureApproved:
		return &ExpenditureApprovedPayload{}
	case TypeExpenditureRejected:
		return &ExpenditureRejectedPayload{}
	case TypeBudgetClosed:
		return &BudgetClosedPayload{}
	case TypeTenderCreated:
		return &TenderCreatedPayload{}
	case TypeTenderOpened:
		return &TenderOpenedPayload{}
	case TypeSupplierRegistered:
		return &SupplierRegisteredPayload{}
	case TypeTenderAwarded:
		return &TenderAwardedPayload{}
	case TypeTenderClosed:
		return &TenderClosedPayload{}
	case TypeDelegationConcentrationWarning:
		return &DelegationConcentrationWarningPayload{}
	case TypeDelegationConcentrationHalt:
		return &DelegationConcentrationHaltPayload{}
	case TypeTransparencyEscalated:
		return &TransparencyEscalatedPayload{}
	case TypeBudgetBalanceViolationDetected:
		return &BudgetBalanceViolationDetectedPayload{}
	case TypeBudgetOverspendDetected:
		return &BudgetOverspendDetectedPayload{}
	case TypeSupplierConcentrationWarning:
		return &SupplierConcentrationWarningPayload{}
	case TypeSupplierConcentrationHalt:
		return &SupplierConcentrationHaltPayload{}
	default:
		return nil
	}
}
