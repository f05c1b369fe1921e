package booking

// CoverageType classifies how much of a franchise amount a loyalty
// subscription balance absorbs.
type CoverageType string

const (
	CoverageFull    CoverageType = "full"
	CoveragePartial CoverageType = "partial"
	CoverageNone    CoverageType = "none"
)

// SubscriptionCoverageCheck is the snapshot of subscription coverage for one
// franchise amount. It reflects a live balance and is only valid for the
// immediate deposit decision.
//
// Invariants (guaranteed by the ledger, preserved by ReduceCoverage):
// CoveredCents + UncoveredCents == DepositRequiredCents and
// CoveredCents <= AvailableCents.
type SubscriptionCoverageCheck struct {
	HasCoverage          bool         `json:"has_coverage"`
	CoverageType         CoverageType `json:"coverage_type"`
	Reason               string       `json:"reason,omitempty"`
	SubscriptionID       string       `json:"subscription_id,omitempty"`
	AvailableCents       int64        `json:"available_cents"`
	CoveredCents         int64        `json:"covered_cents"`
	UncoveredCents       int64        `json:"uncovered_cents"`
	DepositRequiredCents int64        `json:"deposit_required_cents"`
}

// NoCoverage builds the conservative "renter pays full deposit" check used
// whenever the ledger is unreachable, errors, or the caller is unauthenticated.
func NoCoverage(franchiseAmountCents int64, reason string) SubscriptionCoverageCheck {
	return SubscriptionCoverageCheck{
		HasCoverage:          false,
		CoverageType:         CoverageNone,
		Reason:               reason,
		AvailableCents:       0,
		CoveredCents:         0,
		UncoveredCents:       franchiseAmountCents,
		DepositRequiredCents: franchiseAmountCents,
	}
}

// ReduceCoverage turns the outcome of a ledger call into a usable coverage
// check. Any error or nil result degrades to NoCoverage: checkout must never
// fail because the ledger is down; worst case the renter pays in full.
func ReduceCoverage(franchiseAmountCents int64, check *SubscriptionCoverageCheck, err error) SubscriptionCoverageCheck {
	if err != nil {
		return NoCoverage(franchiseAmountCents, "error")
	}
	if check == nil {
		return NoCoverage(franchiseAmountCents, "no_record")
	}
	return *check
}

// DepositCoverageType labels the outcome of the deposit orchestration.
type DepositCoverageType string

const (
	DepositCoverageFull    DepositCoverageType = "full_subscription"
	DepositCoveragePartial DepositCoverageType = "partial_subscription"
	DepositCoverageNone    DepositCoverageType = "none"
)

// DepositWithSubscriptionResult is the final deposit decision for a booking.
// Across all branches depositRequired + coveredBySubscription equals the
// standard franchise (modulo the ledger's own cents rounding).
type DepositWithSubscriptionResult struct {
	DepositRequiredUsd       float64             `json:"deposit_required_usd"`
	CoveredBySubscriptionUsd float64             `json:"covered_by_subscription_usd"`
	FranchiseUsd             float64             `json:"franchise_usd"`
	CoverageType             DepositCoverageType `json:"coverage_type"`
	SubscriptionBalanceUsd   float64             `json:"subscription_balance_usd,omitempty"`
	SubscriptionID           string              `json:"subscription_id,omitempty"`
}

// ResolveDeposit applies the coverage waterfall to the franchise for a
// booking. Deterministic given the coverage check.
func ResolveDeposit(franchise FranchiseInfo, coverage SubscriptionCoverageCheck) DepositWithSubscriptionResult {
	result := DepositWithSubscriptionResult{
		FranchiseUsd: franchise.StandardDeductibleUsd,
	}

	if !coverage.HasCoverage || coverage.CoverageType == CoverageNone {
		result.DepositRequiredUsd = franchise.StandardDeductibleUsd
		result.CoverageType = DepositCoverageNone
		return result
	}

	result.SubscriptionBalanceUsd = float64(coverage.AvailableCents) / 100
	result.SubscriptionID = coverage.SubscriptionID

	if coverage.CoverageType == CoverageFull {
		result.CoveredBySubscriptionUsd = franchise.StandardDeductibleUsd
		result.CoverageType = DepositCoverageFull
		return result
	}

	result.DepositRequiredUsd = float64(coverage.UncoveredCents) / 100
	result.CoveredBySubscriptionUsd = float64(coverage.CoveredCents) / 100
	result.CoverageType = DepositCoveragePartial
	return result
}
